package promotions

import (
	"github.com/kickzhub/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeDiscount returns the amount a promotion takes off the given
// subtotal. Percent promotions scale with the subtotal, fixed-amount
// promotions subtract a flat value. The result is always clamped to
// [0, subtotal] so a discounted total can never go negative.
func ComputeDiscount(discountType enums.DiscountType, value, subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.Sign() <= 0 || value.Sign() <= 0 {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch discountType {
	case enums.DiscountTypePercent:
		amount = subtotal.Mul(value).Div(hundred)
	case enums.DiscountTypeFixedAmount:
		amount = value
	default:
		return decimal.Zero
	}

	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}
