// Package web carries the JSON response and identity helpers shared by the
// api service's handlers.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fishmarket/backend/internal/domain"
)

func JSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func Message(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	JSON(w, logger, status, map[string]string{"error": message})
}

// Error maps domain error kinds onto status codes. Anything without a kind is
// an infrastructure fault: it is logged with detail and answered opaquely.
func Error(w http.ResponseWriter, logger *slog.Logger, err error) {
	kind, ok := domain.KindOf(err)
	if !ok {
		logger.Error("internal error", "error", err)
		Message(w, logger, http.StatusInternalServerError, "internal server error")
		return
	}

	status := http.StatusInternalServerError
	switch kind {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindUnauthorized:
		status = http.StatusUnauthorized
	}

	Message(w, logger, status, err.Error())
}

// Identity is the caller identity injected by the gateway after
// authentication. Handlers trust these headers; the gateway strips them from
// external requests.
type Identity struct {
	UserID string
	Role   string
}

func IdentityFrom(r *http.Request) Identity {
	return Identity{
		UserID: r.Header.Get("X-User-ID"),
		Role:   r.Header.Get("X-User-Role"),
	}
}

func (id Identity) Privileged() bool {
	return id.Role == "manager" || id.Role == "admin"
}
