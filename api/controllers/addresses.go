package controllers

import (
	"net/http"

	"github.com/kickzhub/storefront-backend/api/responses"
	addresssvc "github.com/kickzhub/storefront-backend/internal/address"
	"github.com/kickzhub/storefront-backend/pkg/logger"
)

// ListAddresses returns the shopper's saved shipping addresses.
func ListAddresses(svc addresssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := shopperFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		addresses, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, addresses)
	}
}
