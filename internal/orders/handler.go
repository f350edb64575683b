package orders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/fishmarket/backend/internal/domain"
	"github.com/fishmarket/backend/internal/web"
)

type Handler struct {
	engine *Engine
	logger *slog.Logger
}

func NewHandler(engine *Engine, logger *slog.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

type submitRequest struct {
	DeliveryType domain.DeliveryType `json:"delivery_type"`
	Lines        []SubmitLine        `json:"lines"`
	Address      *domain.Address     `json:"address,omitempty"`
	PaymentRef   string              `json:"payment_ref,omitempty"`
	PromoCode    string              `json:"promo_code,omitempty"`
	DeliveryFee  decimal.Decimal     `json:"delivery_fee"`
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	identity := web.IdentityFrom(r)
	if identity.UserID == "" {
		web.Message(w, h.logger, http.StatusUnauthorized, "missing user identity")
		return
	}
	if identity.Privileged() {
		web.Message(w, h.logger, http.StatusBadRequest, "managers and admins cannot submit orders")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Message(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.engine.Submit(r.Context(), SubmitRequest{
		UserID:       identity.UserID,
		DeliveryType: req.DeliveryType,
		Lines:        req.Lines,
		Address:      req.Address,
		PaymentRef:   req.PaymentRef,
		PromoCode:    req.PromoCode,
		DeliveryFee:  req.DeliveryFee,
	})
	if err != nil {
		web.Error(w, h.logger, err)
		return
	}

	web.JSON(w, h.logger, http.StatusCreated, order)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		web.Message(w, h.logger, http.StatusBadRequest, "missing order id")
		return
	}

	identity := web.IdentityFrom(r)
	order, err := h.engine.Get(r.Context(), id, identity.UserID, identity.Privileged())
	if err != nil {
		web.Error(w, h.logger, err)
		return
	}

	web.JSON(w, h.logger, http.StatusOK, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity := web.IdentityFrom(r)
	if !identity.Privileged() {
		web.Message(w, h.logger, http.StatusUnauthorized, "manager role required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	page, err := h.engine.List(r.Context(), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		web.Error(w, h.logger, err)
		return
	}

	web.JSON(w, h.logger, http.StatusOK, page)
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	identity := web.IdentityFrom(r)
	if identity.UserID == "" {
		web.Message(w, h.logger, http.StatusUnauthorized, "missing user identity")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	page, err := h.engine.ListByUser(r.Context(), identity.UserID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		web.Error(w, h.logger, err)
		return
	}

	web.JSON(w, h.logger, http.StatusOK, page)
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	identity := web.IdentityFrom(r)
	if identity.UserID == "" {
		web.Message(w, h.logger, http.StatusUnauthorized, "missing user identity")
		return
	}

	if err := h.engine.Cancel(r.Context(), id, identity.UserID); err != nil {
		web.Error(w, h.logger, err)
		return
	}

	h.logger.Info("order cancelled", "order_id", id, "user_id", identity.UserID)
	web.JSON(w, h.logger, http.StatusOK, map[string]string{"status": string(domain.OrderStatusCancelled)})
}

// HandleConfirm and the transitions below are manager/admin operations.
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.engine.Confirm)
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.engine.Reject)
}

func (h *Handler) HandleOutForDelivery(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.engine.MarkOutForDelivery)
}

func (h *Handler) HandleDelivered(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.engine.MarkDelivered)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, orderID string) error) {
	id := r.PathValue("id")
	if id == "" {
		web.Message(w, h.logger, http.StatusBadRequest, "missing order id")
		return
	}

	identity := web.IdentityFrom(r)
	if !identity.Privileged() {
		web.Message(w, h.logger, http.StatusUnauthorized, "manager role required")
		return
	}

	if err := apply(r.Context(), id); err != nil {
		web.Error(w, h.logger, err)
		return
	}

	web.JSON(w, h.logger, http.StatusOK, map[string]string{"order_id": id})
}
