package controllers

import (
	"net/http"

	"github.com/kickzhub/storefront-backend/api/responses"
	reconcilesvc "github.com/kickzhub/storefront-backend/internal/reconcile"
	"github.com/kickzhub/storefront-backend/pkg/logger"
	"github.com/kickzhub/storefront-backend/pkg/vnpay"
)

// PaymentReturn is the gateway redirect target. It settles the staged
// checkout draft against the callback's outcome.
func PaymentReturn(svc reconcilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := shopperFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		callback := vnpay.ParseCallback(r.URL.Query())
		result, err := svc.Reconcile(r.Context(), userID, callback)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"orderId":  result.OrderID,
			"replayed": result.Replayed,
		})
	}
}
