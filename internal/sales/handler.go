package sales

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fishmarket/backend/internal/web"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if !h.requireManager(w, r) {
		return
	}

	total, err := h.store.Summary(r.Context())
	if err != nil {
		web.Error(w, h.logger, err)
		return
	}

	web.JSON(w, h.logger, http.StatusOK, map[string]any{"total": total})
}

func (h *Handler) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	if !h.requireManager(w, r) {
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		web.Message(w, h.logger, http.StatusBadRequest, "year query parameter is required")
		return
	}

	months, err := h.store.Monthly(r.Context(), year)
	if err != nil {
		web.Error(w, h.logger, err)
		return
	}

	web.JSON(w, h.logger, http.StatusOK, months)
}

func (h *Handler) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	if !h.requireManager(w, r) {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.store.TopProducts(r.Context(), limit)
	if err != nil {
		web.Error(w, h.logger, err)
		return
	}

	web.JSON(w, h.logger, http.StatusOK, records)
}

func (h *Handler) requireManager(w http.ResponseWriter, r *http.Request) bool {
	if !web.IdentityFrom(r).Privileged() {
		web.Message(w, h.logger, http.StatusUnauthorized, "manager role required")
		return false
	}
	return true
}
