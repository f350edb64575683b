package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPromoCodeDiscount(t *testing.T) {
	cases := []struct {
		name        string
		kind        DiscountKind
		value       string
		lineTotal   string
		deliveryFee string
		want        string
	}{
		{"ten percent", DiscountPercentage, "10", "200", "20", "20"},
		{"percentage ignores delivery fee", DiscountPercentage, "50", "100", "30", "50"},
		{"fixed amount", DiscountFixed, "15", "200", "0", "15"},
		{"fixed capped at order value", DiscountFixed, "500", "100", "20", "120"},
		{"hundred percent", DiscountPercentage, "100", "80", "0", "80"},
		{"negative value clamped", DiscountFixed, "-5", "100", "0", "0"},
		{"fractional percentage", DiscountPercentage, "12.5", "80", "0", "10"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			promo := &PromoCode{
				Kind:  tc.kind,
				Value: decimal.RequireFromString(tc.value),
			}
			got := promo.Discount(
				decimal.RequireFromString(tc.lineTotal),
				decimal.RequireFromString(tc.deliveryFee),
			)
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Errorf("expected discount %s, got %s", tc.want, got)
			}
			if got.IsNegative() {
				t.Errorf("discount must never be negative, got %s", got)
			}
		})
	}

	t.Run("unknown kind yields no discount", func(t *testing.T) {
		promo := &PromoCode{Kind: DiscountKind("loyalty"), Value: decimal.NewFromInt(10)}
		if got := promo.Discount(decimal.NewFromInt(100), decimal.Zero); !got.IsZero() {
			t.Errorf("expected zero discount, got %s", got)
		}
	})
}

func TestErrorKinds(t *testing.T) {
	err := NotFoundf("product size %d not found", 42)
	if err.Error() != "product size 42 not found" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if !IsKind(err, KindNotFound) {
		t.Error("expected not-found kind")
	}
	if IsKind(err, KindConflict) {
		t.Error("kind mismatch should not match")
	}

	if _, ok := KindOf(nil); ok {
		t.Error("nil error should have no kind")
	}
}
