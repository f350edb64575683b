package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandler_HandleAPI(t *testing.T) {
	t.Run("proxies GET with query string", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/orders" {
				t.Errorf("expected /orders, got %s", r.URL.Path)
			}
			if r.URL.RawQuery != "limit=5" {
				t.Errorf("expected limit=5, got %s", r.URL.RawQuery)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"orders":[]}`))
		}))
		defer backend.Close()

		handler := NewHandler(
			NewServiceProxy(backend.URL, backend.Client()),
			nil,
			discardLogger(),
		)

		req := httptest.NewRequest(http.MethodGet, "/orders?limit=5", nil)
		rec := httptest.NewRecorder()

		handler.HandleAPI(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if rec.Header().Get("Content-Type") != "application/json" {
			t.Errorf("expected application/json, got %s", rec.Header().Get("Content-Type"))
		}
		if rec.Body.String() != `{"orders":[]}` {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("forwards identity headers and body on POST", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-User-ID") != "u-42" {
				t.Errorf("expected X-User-ID u-42, got %s", r.Header.Get("X-User-ID"))
			}
			if r.Header.Get("X-User-Role") != "customer" {
				t.Errorf("expected X-User-Role customer, got %s", r.Header.Get("X-User-Role"))
			}
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"delivery_type":"pickup"}` {
				t.Errorf("unexpected body: %s", body)
			}
			w.WriteHeader(http.StatusCreated)
		}))
		defer backend.Close()

		handler := NewHandler(
			NewServiceProxy(backend.URL, backend.Client()),
			nil,
			discardLogger(),
		)

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"delivery_type":"pickup"}`))
		req.Header.Set("X-User-ID", "u-42")
		req.Header.Set("X-User-Role", "customer")
		rec := httptest.NewRecorder()

		handler.HandleAPI(rec, req)

		if rec.Code != http.StatusCreated {
			t.Errorf("expected status 201, got %d", rec.Code)
		}
	})

	t.Run("preserves downstream error status", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"order not found"}`))
		}))
		defer backend.Close()

		handler := NewHandler(
			NewServiceProxy(backend.URL, backend.Client()),
			nil,
			discardLogger(),
		)

		req := httptest.NewRequest(http.MethodGet, "/orders/unknown", nil)
		rec := httptest.NewRecorder()

		handler.HandleAPI(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("returns 502 when backend unavailable", func(t *testing.T) {
		handler := NewHandler(
			NewServiceProxy("http://localhost:99999", &http.Client{}),
			nil,
			discardLogger(),
		)

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		rec := httptest.NewRecorder()

		handler.HandleAPI(rec, req)

		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected status 502, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["error"] != "service unavailable" {
			t.Errorf("expected 'service unavailable', got %s", resp["error"])
		}
	})

	t.Run("rate limits per client", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer backend.Close()

		handler := NewHandler(
			NewServiceProxy(backend.URL, backend.Client()),
			NewClientLimiter(1, 2),
			discardLogger(),
		)

		codes := make([]int, 0, 3)
		for range 3 {
			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			req.Header.Set("X-User-ID", "u-1")
			rec := httptest.NewRecorder()
			handler.HandleAPI(rec, req)
			codes = append(codes, rec.Code)
		}

		if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
			t.Errorf("expected first two requests to pass, got %v", codes)
		}
		if codes[2] != http.StatusTooManyRequests {
			t.Errorf("expected third request to be limited, got %d", codes[2])
		}

		// a different client has its own bucket
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set("X-User-ID", "u-2")
		rec := httptest.NewRecorder()
		handler.HandleAPI(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("expected fresh client to pass, got %d", rec.Code)
		}
	})
}
