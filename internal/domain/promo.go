package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed_amount"
)

type PromoCode struct {
	ID        int64           `json:"id"`
	Code      string          `json:"code"`
	Kind      DiscountKind    `json:"kind"`
	Value     decimal.Decimal `json:"value"`
	TimesUsed int             `json:"times_used"`
	Active    bool            `json:"active"`
	Status    EntityStatus    `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	DeletedAt *time.Time      `json:"deleted_at,omitempty"`
}

var oneHundred = decimal.NewFromInt(100)

// Discount computes the amount taken off an order with the given line total
// and delivery fee. The result is never negative and never exceeds
// lineTotal + deliveryFee, so the order total cannot go below zero.
func (p *PromoCode) Discount(lineTotal, deliveryFee decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch p.Kind {
	case DiscountPercentage:
		discount = lineTotal.Mul(p.Value).Div(oneHundred)
	case DiscountFixed:
		discount = p.Value
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	if cap := lineTotal.Add(deliveryFee); discount.GreaterThan(cap) {
		return cap
	}
	return discount
}
