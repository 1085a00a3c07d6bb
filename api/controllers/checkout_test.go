package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/kickzhub/storefront-backend/api/middleware"
	checkoutsvc "github.com/kickzhub/storefront-backend/internal/checkout"
	reconcilesvc "github.com/kickzhub/storefront-backend/internal/reconcile"
	"github.com/kickzhub/storefront-backend/pkg/enums"
	pkgerrors "github.com/kickzhub/storefront-backend/pkg/errors"
	"github.com/kickzhub/storefront-backend/pkg/orderapi"
	"github.com/kickzhub/storefront-backend/pkg/types"
	"github.com/kickzhub/storefront-backend/pkg/vnpay"
)

type stubCheckout struct {
	methods []enums.PaymentMethod
	order   *orderapi.Order
	init    *vnpay.PaymentInit
	err     error
	lastIn  checkoutsvc.SubmitInput
}

func (s *stubCheckout) PaymentOptions(ctx context.Context, userID uuid.UUID) ([]enums.PaymentMethod, error) {
	return s.methods, s.err
}

func (s *stubCheckout) SubmitCOD(ctx context.Context, userID uuid.UUID, input checkoutsvc.SubmitInput) (*orderapi.Order, error) {
	s.lastIn = input
	return s.order, s.err
}

func (s *stubCheckout) SubmitGateway(ctx context.Context, userID uuid.UUID, input checkoutsvc.SubmitInput) (*vnpay.PaymentInit, error) {
	s.lastIn = input
	return s.init, s.err
}

type stubAddresses struct {
	addresses []types.ShippingAddress
	owned     bool
	err       error
}

func (s *stubAddresses) List(ctx context.Context, userID uuid.UUID) ([]types.ShippingAddress, error) {
	return s.addresses, s.err
}

func (s *stubAddresses) BelongsToUser(ctx context.Context, userID uuid.UUID, addressID string) (bool, error) {
	return s.owned, s.err
}

type stubReconciler struct {
	result *reconcilesvc.Result
	err    error
	last   vnpay.Callback
}

func (s *stubReconciler) Reconcile(ctx context.Context, userID uuid.UUID, callback vnpay.Callback) (*reconcilesvc.Result, error) {
	s.last = callback
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.New()))
}

func TestCheckoutOptions(t *testing.T) {
	svc := &stubCheckout{methods: []enums.PaymentMethod{enums.PaymentMethodGateway, enums.PaymentMethodCOD}}
	handler := CheckoutOptions(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/checkout/options", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			PaymentMethods []string `json:"paymentMethods"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.PaymentMethods) != 2 {
		t.Fatalf("unexpected methods %+v", envelope.Data.PaymentMethods)
	}
}

func TestSubmitCODSuccess(t *testing.T) {
	svc := &stubCheckout{order: &orderapi.Order{OrderID: "ord-1"}}
	handler := SubmitCOD(svc, &stubAddresses{owned: true}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/checkout", `{"shippingAddressId":"addr-1"}`))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastIn.ShippingAddressID != "addr-1" {
		t.Fatalf("unexpected input %+v", svc.lastIn)
	}
}

func TestSubmitCODRejectsForeignAddress(t *testing.T) {
	svc := &stubCheckout{order: &orderapi.Order{OrderID: "ord-1"}}
	handler := SubmitCOD(svc, &stubAddresses{owned: false}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/checkout", `{"shippingAddressId":"addr-9"}`))

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestSubmitCODRequiresAddress(t *testing.T) {
	handler := SubmitCOD(&stubCheckout{}, &stubAddresses{owned: true}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/checkout", `{}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSubmitGatewayReturnsPaymentURL(t *testing.T) {
	svc := &stubCheckout{init: &vnpay.PaymentInit{PaymentURL: "https://pay.example/session"}}
	handler := SubmitGateway(svc, &stubAddresses{owned: true}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/checkout/gateway", `{"shippingAddressId":"addr-1"}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data vnpay.PaymentInit `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.PaymentURL != "https://pay.example/session" {
		t.Fatalf("unexpected payment url %q", envelope.Data.PaymentURL)
	}
}

func TestPaymentReturnForwardsCallback(t *testing.T) {
	rec := &stubReconciler{result: &reconcilesvc.Result{OrderID: "ord-3"}}
	handler := PaymentReturn(rec, nil)

	target := "/api/v1/payment/return?vnp_ResponseCode=00&vnp_TransactionStatus=00&vnp_TxnRef=txn-5"
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, target, ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !rec.last.Succeeded() || rec.last.TxnRef != "txn-5" {
		t.Fatalf("unexpected callback %+v", rec.last)
	}
}

func TestPaymentReturnFailedPayment(t *testing.T) {
	rec := &stubReconciler{err: pkgerrors.New(pkgerrors.CodePaymentFailed, "payment was not completed")}
	handler := PaymentReturn(rec, nil)

	target := "/api/v1/payment/return?vnp_ResponseCode=24&vnp_TransactionStatus=02"
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, target, ""))

	if resp.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402 got %d", resp.Code)
	}
}

func TestPaymentReturnRequiresShopper(t *testing.T) {
	handler := PaymentReturn(&stubReconciler{result: &reconcilesvc.Result{}}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/payment/return", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
