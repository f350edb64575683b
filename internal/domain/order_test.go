package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNextStatus(t *testing.T) {
	cases := []struct {
		name     string
		action   Action
		current  OrderStatus
		delivery DeliveryType
		want     OrderStatus
		wantErr  bool
	}{
		{"cancel pending", ActionCancel, OrderStatusPending, DeliveryHome, OrderStatusCancelled, false},
		{"cancel confirmed rejected", ActionCancel, OrderStatusConfirmed, DeliveryHome, "", true},
		{"cancel delivered rejected", ActionCancel, OrderStatusDelivered, DeliveryHome, "", true},
		{"confirm home delivery", ActionConfirm, OrderStatusPending, DeliveryHome, OrderStatusConfirmed, false},
		{"confirm pickup", ActionConfirm, OrderStatusPending, DeliveryPickup, OrderStatusAwaitingCustomer, false},
		{"confirm twice rejected", ActionConfirm, OrderStatusConfirmed, DeliveryHome, "", true},
		{"reject pending", ActionReject, OrderStatusPending, DeliveryHome, OrderStatusRejected, false},
		{"reject cancelled rejected", ActionReject, OrderStatusCancelled, DeliveryHome, "", true},
		{"out for delivery from confirmed", ActionOutForDelivery, OrderStatusConfirmed, DeliveryHome, OrderStatusOutForDelivery, false},
		{"out for delivery from pending rejected", ActionOutForDelivery, OrderStatusPending, DeliveryHome, "", true},
		{"deliver from out for delivery", ActionDeliver, OrderStatusOutForDelivery, DeliveryHome, OrderStatusDelivered, false},
		{"deliver from awaiting customer", ActionDeliver, OrderStatusAwaitingCustomer, DeliveryPickup, OrderStatusDelivered, false},
		{"deliver from pending rejected", ActionDeliver, OrderStatusPending, DeliveryHome, "", true},
		{"deliver twice rejected", ActionDeliver, OrderStatusDelivered, DeliveryHome, "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NextStatus(tc.action, tc.current, tc.delivery)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got status %q", got)
				}
				if !IsKind(err, KindConflict) {
					t.Errorf("expected conflict error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected status %q, got %q", tc.want, got)
			}
		})
	}

	t.Run("no action succeeds from a terminal status", func(t *testing.T) {
		actions := []Action{ActionCancel, ActionConfirm, ActionReject, ActionOutForDelivery, ActionDeliver}
		for _, terminal := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled, OrderStatusRejected} {
			for _, action := range actions {
				if _, err := NextStatus(action, terminal, DeliveryHome); err == nil {
					t.Errorf("action %q unexpectedly allowed from %q", action, terminal)
				}
			}
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := NextStatus(Action("ship"), OrderStatusPending, DeliveryHome)
		if !IsKind(err, KindValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestOrderStatusTerminal(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled, OrderStatusRejected} {
		if !s.Terminal() {
			t.Errorf("expected %q to be terminal", s)
		}
	}
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusAwaitingCustomer, OrderStatusOutForDelivery} {
		if s.Terminal() {
			t.Errorf("expected %q to not be terminal", s)
		}
	}
}

func TestOrderLineTotal(t *testing.T) {
	order := &Order{
		Lines: []OrderLine{
			{ProductSizeID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
			{ProductSizeID: 2, Quantity: 3, UnitPrice: decimal.RequireFromString("4.50")},
		},
	}

	want := decimal.RequireFromString("33.5")
	if got := order.LineTotal(); !got.Equal(want) {
		t.Errorf("expected line total %s, got %s", want, got)
	}
}
