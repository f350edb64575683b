package orders

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fishmarket/backend/internal/domain"
)

func validSubmit() SubmitRequest {
	return SubmitRequest{
		UserID:       "user-1",
		DeliveryType: domain.DeliveryHome,
		Lines:        []SubmitLine{{ProductSizeID: 1, Quantity: 2}},
		Address:      &domain.Address{Governorate: "Cairo", Area: "Maadi", Street: "Road 9"},
		PaymentRef:   "pay-1",
		DeliveryFee:  decimal.NewFromInt(5),
	}
}

func TestSubmitRequestValidate(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		if err := validSubmit().validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("pickup needs no address or payment", func(t *testing.T) {
		req := validSubmit()
		req.DeliveryType = domain.DeliveryPickup
		req.Address = nil
		req.PaymentRef = ""
		if err := req.validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	cases := []struct {
		name   string
		mutate func(*SubmitRequest)
	}{
		{"missing user", func(r *SubmitRequest) { r.UserID = "" }},
		{"unknown delivery type", func(r *SubmitRequest) { r.DeliveryType = "drone" }},
		{"no lines", func(r *SubmitRequest) { r.Lines = nil }},
		{"zero quantity", func(r *SubmitRequest) { r.Lines[0].Quantity = 0 }},
		{"negative quantity", func(r *SubmitRequest) { r.Lines[0].Quantity = -1 }},
		{"bad size id", func(r *SubmitRequest) { r.Lines[0].ProductSizeID = 0 }},
		{"home delivery without address", func(r *SubmitRequest) { r.Address = nil }},
		{"home delivery without payment", func(r *SubmitRequest) { r.PaymentRef = "" }},
		{"negative delivery fee", func(r *SubmitRequest) { r.DeliveryFee = decimal.NewFromInt(-1) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validSubmit()
			tc.mutate(&req)

			err := req.validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !domain.IsKind(err, domain.KindValidation) {
				t.Errorf("expected validation kind, got %v", err)
			}
		})
	}
}
