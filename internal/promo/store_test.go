package promo

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fishmarket/backend/internal/domain"
)

func TestCreateRequestValidate(t *testing.T) {
	cases := []struct {
		name    string
		req     CreateRequest
		wantErr bool
	}{
		{"valid percentage", CreateRequest{Code: "SUMMER10", Kind: domain.DiscountPercentage, Value: decimal.NewFromInt(10)}, false},
		{"valid fixed", CreateRequest{Code: "FLAT50", Kind: domain.DiscountFixed, Value: decimal.NewFromInt(50)}, false},
		{"missing code", CreateRequest{Kind: domain.DiscountFixed, Value: decimal.NewFromInt(5)}, true},
		{"unknown kind", CreateRequest{Code: "X", Kind: "loyalty", Value: decimal.NewFromInt(5)}, true},
		{"zero value", CreateRequest{Code: "X", Kind: domain.DiscountFixed, Value: decimal.Zero}, true},
		{"negative value", CreateRequest{Code: "X", Kind: domain.DiscountFixed, Value: decimal.NewFromInt(-5)}, true},
		{"percentage above hundred", CreateRequest{Code: "X", Kind: domain.DiscountPercentage, Value: decimal.NewFromInt(150)}, true},
		{"percentage of exactly hundred", CreateRequest{Code: "X", Kind: domain.DiscountPercentage, Value: decimal.NewFromInt(100)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !domain.IsKind(err, domain.KindValidation) {
					t.Errorf("expected validation kind, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
