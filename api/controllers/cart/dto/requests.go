package cartdto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddItemRequest adds a product to the cart. Quantity may be zero or
// negative, which leaves the cart unchanged; the caller still gets the
// current snapshot back.
type AddItemRequest struct {
	ProductID   uuid.UUID       `json:"productId" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Brand       string          `json:"brand"`
	ImageURL    string          `json:"imageUrl"`
	ProductType string          `json:"productType" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
}

// UpdateItemRequest replaces the quantity of an existing line.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// ApplyPromotionRequest attaches a promotion to the cart.
type ApplyPromotionRequest struct {
	PromotionID string `json:"promotionId" validate:"required"`
}
