package cart

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kickzhub/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Line is one product entry in a shopper's cart. Lines are keyed by
// product id, so a product appears at most once with an aggregate
// quantity.
type Line struct {
	ProductID   uuid.UUID         `json:"productId"`
	Name        string            `json:"name"`
	Brand       string            `json:"brand,omitempty"`
	ImageURL    string            `json:"imageUrl,omitempty"`
	ProductType enums.ProductType `json:"productType"`
	UnitPrice   decimal.Decimal   `json:"unitPrice"`
	Quantity    int               `json:"quantity"`
}

// LineTotal is the line's unit price multiplied by its quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// AppliedDiscount is the promotion snapshot attached to a cart. The
// promotion's terms are frozen at apply time so a later catalog change
// cannot silently reprice an open cart.
type AppliedDiscount struct {
	PromotionID  string             `json:"promotionId"`
	Name         string             `json:"name"`
	DiscountType enums.DiscountType `json:"discountType"`
	Value        decimal.Decimal    `json:"value"`
}

// Snapshot is the full derived view of a cart: its lines, the applied
// discount if any, and the totals computed from them.
type Snapshot struct {
	Lines          []Line           `json:"lines"`
	Discount       *AppliedDiscount `json:"discount,omitempty"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	DiscountAmount decimal.Decimal  `json:"discountAmount"`
	Total          decimal.Decimal  `json:"total"`
}

// IsEmpty reports whether the cart has no lines.
func (s *Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

// HasDigitalLine reports whether any line is a digital product.
// Digital-only delivery rules hang off this, most notably cash on
// delivery eligibility.
func (s *Snapshot) HasDigitalLine() bool {
	for _, line := range s.Lines {
		if line.ProductType.IsDigital() {
			return true
		}
	}
	return false
}

func linesKey(userID uuid.UUID) string {
	return fmt.Sprintf("cart:%s:lines", userID)
}

func discountKey(userID uuid.UUID) string {
	return fmt.Sprintf("cart:%s:discount", userID)
}

func totalKey(userID uuid.UUID) string {
	return fmt.Sprintf("cart:%s:total", userID)
}
