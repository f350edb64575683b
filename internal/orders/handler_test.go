package orders

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestHandler() *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(NewEngine(nil, nil, nil, nil, logger), logger)
}

func TestHandler_HandleSubmit_Validation(t *testing.T) {
	t.Run("rejects missing identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		newTestHandler().HandleSubmit(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("rejects manager submissions", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{}`))
		req.Header.Set("X-User-ID", "user-1")
		req.Header.Set("X-User-Role", "manager")
		rec := httptest.NewRecorder()

		newTestHandler().HandleSubmit(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{not json`))
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()

		newTestHandler().HandleSubmit(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("rejects empty line list", func(t *testing.T) {
		body := `{"delivery_type": "pickup", "lines": []}`
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()

		newTestHandler().HandleSubmit(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["error"] != "order must contain at least one line" {
			t.Errorf("unexpected error message: %s", resp["error"])
		}
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		body := `{"delivery_type": "pickup", "lines": [{"product_size_id": 1, "quantity": 0}]}`
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()

		newTestHandler().HandleSubmit(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("rejects home delivery without address", func(t *testing.T) {
		body := `{"delivery_type": "home_delivery", "payment_ref": "pay-1", "lines": [{"product_size_id": 1, "quantity": 2}]}`
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()

		newTestHandler().HandleSubmit(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("rejects home delivery without payment reference", func(t *testing.T) {
		body := `{"delivery_type": "home_delivery", "address": {"street": "x"}, "lines": [{"product_size_id": 1, "quantity": 2}]}`
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()

		newTestHandler().HandleSubmit(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandler_Transitions_RequireRole(t *testing.T) {
	handler := newTestHandler()

	endpoints := map[string]http.HandlerFunc{
		"confirm":          handler.HandleConfirm,
		"reject":           handler.HandleReject,
		"out-for-delivery": handler.HandleOutForDelivery,
		"delivered":        handler.HandleDelivered,
	}

	for name, fn := range endpoints {
		t.Run(name+" without role", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/orders/abc/"+name, nil)
			req.SetPathValue("id", "abc")
			req.Header.Set("X-User-ID", "user-1")
			rec := httptest.NewRecorder()

			fn(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", rec.Code)
			}
		})
	}
}

func TestHandler_HandleCancel_RequiresIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/orders/abc/cancel", nil)
	req.SetPathValue("id", "abc")
	rec := httptest.NewRecorder()

	newTestHandler().HandleCancel(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestHandler_HandleList_RequiresRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()

	newTestHandler().HandleList(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}
