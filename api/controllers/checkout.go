package controllers

import (
	"net"
	"net/http"

	"github.com/google/uuid"

	"github.com/kickzhub/storefront-backend/api/middleware"
	"github.com/kickzhub/storefront-backend/api/responses"
	"github.com/kickzhub/storefront-backend/api/validators"
	"github.com/kickzhub/storefront-backend/internal/address"
	checkoutsvc "github.com/kickzhub/storefront-backend/internal/checkout"
	pkgerrors "github.com/kickzhub/storefront-backend/pkg/errors"
	"github.com/kickzhub/storefront-backend/pkg/logger"
)

// CheckoutRequest carries the shopper's order submission.
type CheckoutRequest struct {
	ShippingAddressID string `json:"shippingAddressId" validate:"required"`
}

// CheckoutOptions lists the payment methods the current cart is
// eligible for.
func CheckoutOptions(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := shopperFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		methods, err := svc.PaymentOptions(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"paymentMethods": methods})
	}
}

// SubmitCOD places a cash-on-delivery order from the current cart.
func SubmitCOD(svc checkoutsvc.Service, addresses address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, payload, err := decodeCheckout(r, addresses)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.SubmitCOD(r.Context(), userID, checkoutsvc.SubmitInput{
			ShippingAddressID: payload.ShippingAddressID,
			ClientIP:          clientIP(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// SubmitGateway stages the cart as a checkout draft and opens a
// payment session, returning the gateway redirect URL.
func SubmitGateway(svc checkoutsvc.Service, addresses address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, payload, err := decodeCheckout(r, addresses)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		init, err := svc.SubmitGateway(r.Context(), userID, checkoutsvc.SubmitInput{
			ShippingAddressID: payload.ShippingAddressID,
			ClientIP:          clientIP(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, init)
	}
}

func decodeCheckout(r *http.Request, addresses address.Service) (uuid.UUID, *CheckoutRequest, error) {
	userID, err := shopperFromContext(r)
	if err != nil {
		return uuid.Nil, nil, err
	}

	var payload CheckoutRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return uuid.Nil, nil, err
	}

	owned, err := addresses.BelongsToUser(r.Context(), userID, payload.ShippingAddressID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if !owned {
		return uuid.Nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "shipping address does not belong to the shopper")
	}
	return userID, &payload, nil
}

func shopperFromContext(r *http.Request) (uuid.UUID, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "shopper context missing")
	}
	return userID, nil
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
