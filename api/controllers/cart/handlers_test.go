package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kickzhub/storefront-backend/api/middleware"
	cartsvc "github.com/kickzhub/storefront-backend/internal/cart"
	"github.com/kickzhub/storefront-backend/pkg/enums"
	pkgerrors "github.com/kickzhub/storefront-backend/pkg/errors"
	"github.com/kickzhub/storefront-backend/pkg/storeapi"
	"github.com/shopspring/decimal"
)

type stubCartService struct {
	snapshot *cartsvc.Snapshot
	err      error
	lastLine cartsvc.Line
	lastQty  int
}

func (s *stubCartService) Get(ctx context.Context, userID uuid.UUID) (*cartsvc.Snapshot, error) {
	return s.snapshot, s.err
}

func (s *stubCartService) AddLine(ctx context.Context, userID uuid.UUID, line cartsvc.Line) (*cartsvc.Snapshot, error) {
	s.lastLine = line
	return s.snapshot, s.err
}

func (s *stubCartService) SetQuantity(ctx context.Context, userID uuid.UUID, productID uuid.UUID, quantity int) (*cartsvc.Snapshot, error) {
	s.lastQty = quantity
	return s.snapshot, s.err
}

func (s *stubCartService) RemoveLine(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (*cartsvc.Snapshot, error) {
	return s.snapshot, s.err
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.err
}

func (s *stubCartService) ApplyDiscount(ctx context.Context, userID uuid.UUID, discount cartsvc.AppliedDiscount) (*cartsvc.Snapshot, error) {
	return s.snapshot, s.err
}

func (s *stubCartService) RemoveDiscount(ctx context.Context, userID uuid.UUID) (*cartsvc.Snapshot, error) {
	return s.snapshot, s.err
}

type stubPromotions struct {
	promo *storeapi.Promotion
	err   error
}

func (s *stubPromotions) List(ctx context.Context) ([]storeapi.Promotion, error) {
	if s.promo == nil {
		return nil, s.err
	}
	return []storeapi.Promotion{*s.promo}, s.err
}

func (s *stubPromotions) Find(ctx context.Context, promotionID string) (*storeapi.Promotion, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.promo, nil
}

func testSnapshot() *cartsvc.Snapshot {
	amount := decimal.NewFromInt(180)
	return &cartsvc.Snapshot{
		Lines: []cartsvc.Line{{
			ProductID:   uuid.New(),
			Name:        "Blazer Mid",
			ProductType: enums.ProductTypePhysical,
			UnitPrice:   amount,
			Quantity:    1,
		}},
		Subtotal: amount,
		Total:    amount,
	}
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

func TestFetchSuccess(t *testing.T) {
	snapshot := testSnapshot()
	handler := Fetch(&stubCartService{snapshot: snapshot}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cartsvc.Snapshot `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Lines) != 1 || envelope.Data.Lines[0].Name != "Blazer Mid" {
		t.Fatalf("unexpected snapshot %+v", envelope.Data)
	}
}

func TestFetchWithoutShopperContext(t *testing.T) {
	handler := Fetch(&stubCartService{snapshot: testSnapshot()}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAddItemSuccess(t *testing.T) {
	svc := &stubCartService{snapshot: testSnapshot()}
	handler := AddItem(svc, nil)

	productID := uuid.New()
	body := fmt.Sprintf(`{"productId":%q,"name":"Blazer Mid","productType":"PHYSICAL","unitPrice":"180","quantity":2}`, productID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastLine.ProductID != productID || svc.lastLine.Quantity != 2 {
		t.Fatalf("unexpected line %+v", svc.lastLine)
	}
	if svc.lastLine.ProductType != enums.ProductTypePhysical {
		t.Fatalf("unexpected product type %q", svc.lastLine.ProductType)
	}
}

func TestAddItemRejectsUnknownProductType(t *testing.T) {
	handler := AddItem(&stubCartService{snapshot: testSnapshot()}, nil)

	body := fmt.Sprintf(`{"productId":%q,"name":"Thing","productType":"VINYL","quantity":1}`, uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAddItemRejectsUnknownFields(t *testing.T) {
	handler := AddItem(&stubCartService{snapshot: testSnapshot()}, nil)

	body := fmt.Sprintf(`{"productId":%q,"name":"Thing","productType":"PHYSICAL","quantity":1,"discount":99}`, uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateItemValidatesQuantity(t *testing.T) {
	handler := UpdateItem(&stubCartService{snapshot: testSnapshot()}, nil)

	router := chi.NewRouter()
	router.Put("/api/v1/cart/items/{productId}", handler)

	req := authedRequest(http.MethodPut, "/api/v1/cart/items/"+uuid.NewString(), `{"quantity":0}`)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateItemSuccess(t *testing.T) {
	svc := &stubCartService{snapshot: testSnapshot()}
	router := chi.NewRouter()
	router.Put("/api/v1/cart/items/{productId}", UpdateItem(svc, nil))

	req := authedRequest(http.MethodPut, "/api/v1/cart/items/"+uuid.NewString(), `{"quantity":4}`)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastQty != 4 {
		t.Fatalf("expected quantity 4 forwarded, got %d", svc.lastQty)
	}
}

func TestRemoveItemInvalidProductID(t *testing.T) {
	router := chi.NewRouter()
	router.Delete("/api/v1/cart/items/{productId}", RemoveItem(&stubCartService{snapshot: testSnapshot()}, nil))

	req := authedRequest(http.MethodDelete, "/api/v1/cart/items/not-a-uuid", "")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestApplyPromotionUnknownPromotion(t *testing.T) {
	handler := ApplyPromotion(
		&stubCartService{snapshot: testSnapshot()},
		&stubPromotions{err: pkgerrors.New(pkgerrors.CodeNotFound, "promotion not found")},
		nil,
	)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/promotion", `{"promotionId":"promo-9"}`))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestApplyPromotionSuccess(t *testing.T) {
	promo := &storeapi.Promotion{
		ID:            "promo-1",
		Name:          "Spring Sale",
		DiscountType:  enums.DiscountTypePercent,
		DiscountValue: decimal.NewFromInt(10),
	}
	handler := ApplyPromotion(&stubCartService{snapshot: testSnapshot()}, &stubPromotions{promo: promo}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/promotion", `{"promotionId":"promo-1"}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}
