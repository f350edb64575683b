package orders

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fishmarket/backend/internal/catalog"
	"github.com/fishmarket/backend/internal/database"
	"github.com/fishmarket/backend/internal/domain"
	"github.com/fishmarket/backend/internal/messaging"
	"github.com/fishmarket/backend/internal/promo"
)

// Engine owns the order lifecycle: submission, status transitions and the
// sales ledger. All collaborators are passed in explicitly; the engine holds
// no global state.
type Engine struct {
	db       *sql.DB
	catalog  *catalog.Store
	promos   *promo.Store
	producer *messaging.Producer
	logger   *slog.Logger
}

func NewEngine(db *sql.DB, catalogStore *catalog.Store, promoStore *promo.Store, producer *messaging.Producer, logger *slog.Logger) *Engine {
	return &Engine{
		db:       db,
		catalog:  catalogStore,
		promos:   promoStore,
		producer: producer,
		logger:   logger,
	}
}

type SubmitLine struct {
	ProductSizeID int64 `json:"product_size_id"`
	Quantity      int   `json:"quantity"`
}

type SubmitRequest struct {
	UserID       string
	DeliveryType domain.DeliveryType
	Lines        []SubmitLine
	Address      *domain.Address
	PaymentRef   string
	PromoCode    string
	DeliveryFee  decimal.Decimal
}

// validate covers everything checkable without I/O. It runs before the
// transaction opens, so malformed requests never touch the database.
func (r SubmitRequest) validate() error {
	if r.UserID == "" {
		return domain.Validationf("user id is required")
	}
	if r.DeliveryType != domain.DeliveryPickup && r.DeliveryType != domain.DeliveryHome {
		return domain.Validationf("unknown delivery type %q", r.DeliveryType)
	}
	if len(r.Lines) == 0 {
		return domain.Validationf("order must contain at least one line")
	}
	for _, line := range r.Lines {
		if line.ProductSizeID <= 0 {
			return domain.Validationf("invalid product size id %d", line.ProductSizeID)
		}
		if line.Quantity <= 0 {
			return domain.Validationf("quantity for size %d must be greater than zero", line.ProductSizeID)
		}
	}
	if r.DeliveryType != domain.DeliveryPickup {
		if r.Address == nil {
			return domain.Validationf("address is required for home delivery")
		}
		if r.PaymentRef == "" {
			return domain.Validationf("payment reference is required for home delivery")
		}
	}
	if r.DeliveryFee.IsNegative() {
		return domain.Validationf("delivery fee must not be negative")
	}
	return nil
}

// Submit validates the cart, snapshots unit prices, takes stock, applies the
// promo code and persists the order atomically. On success it fires a
// best-effort order.created event; a publish failure never rolls the order
// back.
func (e *Engine) Submit(ctx context.Context, req SubmitRequest) (*domain.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	sizeIDs := make([]int64, 0, len(req.Lines))
	for _, line := range req.Lines {
		sizeIDs = append(sizeIDs, line.ProductSizeID)
	}

	order := &domain.Order{
		ID:           uuid.New().String(),
		UserID:       req.UserID,
		DeliveryType: req.DeliveryType,
		Address:      req.Address,
		PaymentRef:   req.PaymentRef,
		PromoCode:    req.PromoCode,
		DeliveryFee:  req.DeliveryFee,
		Status:       domain.OrderStatusPending,
		CreatedAt:    time.Now().UTC(),
	}

	err := database.WithRetry(ctx, e.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		order.Lines = order.Lines[:0]

		sizes, err := e.catalog.ResolveSizes(ctx, tx, sizeIDs)
		if err != nil {
			return err
		}

		productIDs := make(map[int64]int64, len(req.Lines))
		for _, line := range req.Lines {
			size, ok := sizes[line.ProductSizeID]
			if !ok {
				return domain.NotFoundf("product size %d not found", line.ProductSizeID)
			}
			productIDs[line.ProductSizeID] = size.ProductID
			order.Lines = append(order.Lines, domain.OrderLine{
				ProductSizeID: line.ProductSizeID,
				Quantity:      line.Quantity,
				UnitPrice:     size.Price,
			})
		}

		for _, line := range req.Lines {
			if err := e.catalog.ReduceStock(ctx, tx, line.ProductSizeID, line.Quantity); err != nil {
				return err
			}
		}

		lineTotal := order.LineTotal()
		order.Discount = decimal.Zero
		if req.PromoCode != "" {
			code, err := e.promos.Redeem(ctx, tx, req.PromoCode)
			if err != nil {
				return err
			}
			order.Discount = code.Discount(lineTotal, req.DeliveryFee)
		}
		order.Total = lineTotal.Add(req.DeliveryFee).Sub(order.Discount)

		return insertOrder(ctx, tx, order, productIDs)
	})
	if err != nil {
		return nil, err
	}

	e.publishCreated(ctx, order)

	e.logger.Info("order submitted",
		"order_id", order.ID, "user_id", order.UserID, "total", order.Total, "lines", len(order.Lines))
	return order, nil
}

func (e *Engine) publishCreated(ctx context.Context, order *domain.Order) {
	if e.producer == nil {
		return
	}

	event := domain.OrderCreatedEvent{
		OrderID:      order.ID,
		UserID:       order.UserID,
		DeliveryType: order.DeliveryType,
		Total:        order.Total,
		Lines:        order.Lines,
		Timestamp:    order.CreatedAt,
	}
	if err := e.producer.Publish(ctx, order.ID, event); err != nil {
		e.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
	}
}

// Cancel moves a pending order to cancelled and returns its stock. Only the
// owning user may cancel; anyone else sees not-found.
func (e *Engine) Cancel(ctx context.Context, orderID, userID string) error {
	if userID == "" {
		return domain.Unauthorizedf("user id is required")
	}
	return e.transition(ctx, orderID, domain.ActionCancel, userID)
}

// Confirm accepts a pending order: home deliveries become confirmed, pickups
// await the customer.
func (e *Engine) Confirm(ctx context.Context, orderID string) error {
	return e.transition(ctx, orderID, domain.ActionConfirm, "")
}

// Reject declines a pending order and returns its stock.
func (e *Engine) Reject(ctx context.Context, orderID string) error {
	return e.transition(ctx, orderID, domain.ActionReject, "")
}

func (e *Engine) MarkOutForDelivery(ctx context.Context, orderID string) error {
	return e.transition(ctx, orderID, domain.ActionOutForDelivery, "")
}

// MarkDelivered completes the order and folds its lines into the per-product
// sales ledger; the ledger update and the status change commit together.
func (e *Engine) MarkDelivered(ctx context.Context, orderID string) error {
	return e.transition(ctx, orderID, domain.ActionDeliver, "")
}

func (e *Engine) transition(ctx context.Context, orderID string, action domain.Action, ownerID string) error {
	err := database.WithRetry(ctx, e.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		row, err := lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}

		// Existence is hidden from non-owners, matching the read path.
		if ownerID != "" && row.userID != ownerID {
			return domain.NotFoundf("order %s not found", orderID)
		}

		next, err := domain.NextStatus(action, row.status, row.deliveryType)
		if err != nil {
			return err
		}

		var deliveredAt *time.Time
		if next == domain.OrderStatusDelivered {
			now := time.Now().UTC()
			deliveredAt = &now
		}

		if err := setStatus(ctx, tx, orderID, next, deliveredAt); err != nil {
			return err
		}

		switch next {
		case domain.OrderStatusCancelled, domain.OrderStatusRejected:
			return e.restoreStock(ctx, tx, orderID)
		case domain.OrderStatusDelivered:
			return recordSales(ctx, tx, orderID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.Info("order transitioned", "order_id", orderID, "action", action)
	return nil
}

// restoreStock puts the order's quantities back on their sizes, mirroring
// the per-size decrement taken at submission. Sizes removed from the catalog
// since then have no row left; that stock is gone with them.
func (e *Engine) restoreStock(ctx context.Context, tx *sql.Tx, orderID string) error {
	lines, err := lineQuantities(ctx, tx, orderID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := e.catalog.RestoreStock(ctx, tx, line.ProductSizeID, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the full order. Requesters other than the owner must be
// privileged; unauthorized requesters get not-found rather than forbidden so
// order ids cannot be probed.
func (e *Engine) Get(ctx context.Context, orderID, requesterID string, privileged bool) (*domain.Order, error) {
	order, err := getOrder(ctx, e.db, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID && !privileged {
		return nil, domain.NotFoundf("order %s not found", orderID)
	}
	return order, nil
}

// List pages through all orders, newest first.
func (e *Engine) List(ctx context.Context, cursor string, limit int) (*database.CursorPage, error) {
	return listOrders(ctx, e.db, "", cursor, limit)
}

// ListByUser pages through one user's orders.
func (e *Engine) ListByUser(ctx context.Context, userID, cursor string, limit int) (*database.CursorPage, error) {
	if userID == "" {
		return nil, domain.Validationf("user id is required")
	}
	return listOrders(ctx, e.db, userID, cursor, limit)
}
