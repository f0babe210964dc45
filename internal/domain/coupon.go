package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType matches the WooCommerce coupon discount types we support
type DiscountType string

const (
	DiscountPercent   DiscountType = "percent"
	DiscountFixedCart DiscountType = "fixed_cart"
)

// Coupon is a discount code as validated against the store
type Coupon struct {
	Code         string          `json:"code"`
	Amount       decimal.Decimal `json:"amount"`
	DiscountType DiscountType    `json:"discount_type"`
	ExpiresAt    *time.Time      `json:"expiresAt,omitempty"`
}

// Expired reports whether the coupon is past its expiry date
func (c Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// DiscountFor returns the discount the coupon yields on the given cart total,
// capped at the total itself
func (c Coupon) DiscountFor(total decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch c.DiscountType {
	case DiscountPercent:
		d = total.Mul(c.Amount).Div(decimal.NewFromInt(100))
	case DiscountFixedCart:
		d = c.Amount
	default:
		return decimal.Zero
	}
	if d.GreaterThan(total) {
		return total
	}
	return d
}
