package promo

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/fishmarket/backend/internal/domain"
	"github.com/fishmarket/backend/internal/web"
)

// Handler exposes promo code management. Every route is manager-only.
type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

type createRequest struct {
	Code  string              `json:"code"`
	Kind  domain.DiscountKind `json:"kind"`
	Value decimal.Decimal     `json:"value"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !h.requireManager(w, r) {
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Message(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	promo, err := h.store.Create(r.Context(), CreateRequest{Code: req.Code, Kind: req.Kind, Value: req.Value})
	if err != nil {
		web.Error(w, h.logger, err)
		return
	}

	h.logger.Info("promo code created", "promo_id", promo.ID, "code", promo.Code, "kind", promo.Kind)
	web.JSON(w, h.logger, http.StatusCreated, promo)
}

type updateRequest struct {
	Value  *decimal.Decimal `json:"value,omitempty"`
	Active *bool            `json:"active,omitempty"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if !h.requireManager(w, r) {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Message(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.Update(r.Context(), id, UpdateRequest{Value: req.Value, Active: req.Active}); err != nil {
		web.Error(w, h.logger, err)
		return
	}

	web.JSON(w, h.logger, http.StatusOK, map[string]int64{"id": id})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !h.requireManager(w, r) {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		web.Error(w, h.logger, err)
		return
	}

	h.logger.Info("promo code deleted", "promo_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if !h.requireManager(w, r) {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	promo, err := h.store.Get(r.Context(), id)
	if err != nil {
		web.Error(w, h.logger, err)
		return
	}

	web.JSON(w, h.logger, http.StatusOK, promo)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !h.requireManager(w, r) {
		return
	}

	promos, err := h.store.List(r.Context())
	if err != nil {
		web.Error(w, h.logger, err)
		return
	}

	web.JSON(w, h.logger, http.StatusOK, promos)
}

func (h *Handler) requireManager(w http.ResponseWriter, r *http.Request) bool {
	if !web.IdentityFrom(r).Privileged() {
		web.Message(w, h.logger, http.StatusUnauthorized, "manager role required")
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		web.Message(w, h.logger, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
