package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
)

type Handler struct {
	apiProxy *ServiceProxy
	limiter  *ClientLimiter
	logger   *slog.Logger
}

func NewHandler(apiProxy *ServiceProxy, limiter *ClientLimiter, logger *slog.Logger) *Handler {
	return &Handler{
		apiProxy: apiProxy,
		limiter:  limiter,
		logger:   logger,
	}
}

func (h *Handler) HandleAPI(w http.ResponseWriter, r *http.Request) {
	key := clientKey(r)
	if h.limiter != nil && !h.limiter.Allow(key) {
		h.logger.Warn("rate limit exceeded", "client", key, "path", r.URL.Path)
		h.writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	h.proxyRequest(w, r, h.apiProxy, r.URL.Path)
}

// clientKey identifies a caller for rate limiting. Authenticated callers
// are keyed by user ID so a shared NAT address does not pool their quota.
func clientKey(r *http.Request) string {
	if userID := r.Header.Get("X-User-ID"); userID != "" {
		return userID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *Handler) proxyRequest(w http.ResponseWriter, r *http.Request, proxy *ServiceProxy, path string) {
	resp, err := proxy.ForwardRequest(r.Context(), r, path)
	if err != nil {
		h.logger.Error("failed to forward request", "error", err, "path", path)
		h.writeError(w, http.StatusBadGateway, "service unavailable")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	w.WriteHeader(resp.StatusCode)

	h.logger.Info("request proxied", "method", r.Method, "path", path, "status", resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Error("failed to copy response body", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}
