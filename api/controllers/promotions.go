package controllers

import (
	"net/http"

	"github.com/kickzhub/storefront-backend/api/responses"
	promotionsvc "github.com/kickzhub/storefront-backend/internal/promotions"
	"github.com/kickzhub/storefront-backend/pkg/logger"
)

// ListPromotions exposes the catalog's active promotions.
func ListPromotions(svc promotionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promos, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, promos)
	}
}
