// Package pricing derives cart totals from line items and an optional coupon.
package pricing

import (
	"math"

	"bihar-bazaar/internal/model"

	"github.com/shopspring/decimal"
)

// Policy holds the shipping rules. Amounts are in minor currency units.
type Policy struct {
	FreeShippingThreshold int64
	FlatShippingFee       int64
	// ChargeShippingOnEmptyCart applies the flat fee to a zero subtotal.
	ChargeShippingOnEmptyCart bool
}

// Calculator computes totals under a fixed policy.
type Calculator struct {
	policy Policy
}

// NewCalculator creates a calculator for the given policy.
func NewCalculator(policy Policy) *Calculator {
	return &Calculator{policy: policy}
}

// Policy returns the policy in effect.
func (c *Calculator) Policy() Policy {
	return c.policy
}

// Calculate returns subtotal, shipping, discount and total for items.
// Shipping is decided on the subtotal before discount.
func (c *Calculator) Calculate(items []model.CartItem, coupon *model.Coupon) model.Totals {
	subtotal := Subtotal(items)
	shipping := c.Shipping(subtotal)

	var discount int64
	if coupon != nil {
		discount = Discount(subtotal, coupon.DiscountPercent)
	}

	totals := model.Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal - discount + shipping,
	}
	if coupon != nil {
		applied := *coupon
		totals.Coupon = &applied
	}
	return totals
}

// Shipping returns the fee charged for a subtotal.
func (c *Calculator) Shipping(subtotal int64) int64 {
	if subtotal == 0 && !c.policy.ChargeShippingOnEmptyCart {
		return 0
	}
	if subtotal > c.policy.FreeShippingThreshold {
		return 0
	}
	return c.policy.FlatShippingFee
}

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// Subtotal sums unit price times quantity over items. A sum beyond
// math.MaxInt64 saturates rather than wrapping negative.
func Subtotal(items []model.CartItem) int64 {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(decimal.NewFromInt(item.LineTotal()))
	}
	if sum.GreaterThan(maxAmount) {
		return math.MaxInt64
	}
	return sum.IntPart()
}

// Discount returns round(subtotal * percent / 100), rounding half away from zero.
func Discount(subtotal int64, percent int) int64 {
	if percent <= 0 || subtotal == 0 {
		return 0
	}
	return decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromInt(int64(percent))).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}
