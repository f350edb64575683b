package worker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fishmarket/backend/internal/domain"
)

func testEvent() domain.OrderCreatedEvent {
	return domain.OrderCreatedEvent{
		OrderID:      "ord-1",
		UserID:       "u-42",
		DeliveryType: domain.DeliveryPickup,
		Total:        decimal.RequireFromString("120.50"),
		Lines: []domain.OrderLine{
			{ProductSizeID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("60.25")},
		},
		Timestamp: time.Now(),
	}
}

func TestNotificationHandler_Handle(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("sends confirmation email", func(t *testing.T) {
		var got map[string]string
		emailServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/send" {
				t.Errorf("expected /send, got %s", r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Fatalf("failed to decode email request: %v", err)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer emailServer.Close()

		handler := NewNotificationHandler(emailServer.URL, emailServer.Client(), logger)

		payload, _ := json.Marshal(testEvent())
		if err := handler.Handle(context.Background(), payload); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got["to"] != "u-42@example.com" {
			t.Errorf("unexpected recipient: %s", got["to"])
		}
		if got["order_id"] != "ord-1" {
			t.Errorf("unexpected order_id: %s", got["order_id"])
		}
	})

	t.Run("fails on malformed payload", func(t *testing.T) {
		handler := NewNotificationHandler("http://unused", http.DefaultClient, logger)

		if err := handler.Handle(context.Background(), []byte("not json")); err == nil {
			t.Error("expected error for malformed payload")
		}
	})

	t.Run("fails when email service errors", func(t *testing.T) {
		emailServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer emailServer.Close()

		handler := NewNotificationHandler(emailServer.URL, emailServer.Client(), logger)

		payload, _ := json.Marshal(testEvent())
		if err := handler.Handle(context.Background(), payload); err == nil {
			t.Error("expected error when email service fails")
		}
	})
}
