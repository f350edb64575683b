package orders

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fishmarket/backend/internal/database"
	"github.com/fishmarket/backend/internal/domain"
)

// insertOrder writes the order header and all of its lines. It must run
// inside the submission transaction so the order is all-or-nothing.
func insertOrder(ctx context.Context, tx *sql.Tx, order *domain.Order, productIDs map[int64]int64) error {
	var address domain.Address
	if order.Address != nil {
		address = *order.Address
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, delivery_type, status,
			addr_governorate, addr_area, addr_street, addr_building, addr_floor, addr_apartment,
			payment_ref, promo_code, discount, delivery_fee, total,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
	`,
		order.ID, order.UserID, order.DeliveryType, order.Status,
		address.Governorate, address.Area, address.Street, address.Building, address.Floor, address.Apartment,
		order.PaymentRef, order.PromoCode, order.Discount, order.DeliveryFee, order.Total,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, line := range order.Lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, product_size_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
		`, order.ID, line.ProductSizeID, productIDs[line.ProductSizeID], line.Quantity, line.UnitPrice)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	return nil
}

type orderRow struct {
	id           string
	userID       string
	deliveryType domain.DeliveryType
	status       domain.OrderStatus
}

// lockOrder loads the order row under FOR UPDATE, serializing concurrent
// transitions on the same order.
func lockOrder(ctx context.Context, tx *sql.Tx, orderID string) (*orderRow, error) {
	row := &orderRow{}
	err := tx.QueryRowContext(ctx, `
		SELECT id, user_id, delivery_type, status
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, orderID).Scan(&row.id, &row.userID, &row.deliveryType, &row.status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFoundf("order %s not found", orderID)
		}
		return nil, fmt.Errorf("lock order: %w", err)
	}
	return row, nil
}

func setStatus(ctx context.Context, tx *sql.Tx, orderID string, status domain.OrderStatus, deliveredAt *time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $2, delivered_at = COALESCE($3, delivered_at), updated_at = NOW()
		WHERE id = $1
	`, orderID, status, deliveredAt)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

// recordSales folds the order's lines into the per-product sales ledger. The
// aggregation and upsert happen in one statement inside the delivery
// transaction, so the ledger and the status change commit together.
func recordSales(ctx context.Context, tx *sql.Tx, orderID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO product_sales (product_id, quantity_sold, revenue)
		SELECT product_id, SUM(quantity), SUM(quantity * unit_price)
		FROM order_lines
		WHERE order_id = $1
		GROUP BY product_id
		ON CONFLICT (product_id) DO UPDATE
		SET quantity_sold = product_sales.quantity_sold + EXCLUDED.quantity_sold,
		    revenue = product_sales.revenue + EXCLUDED.revenue
	`, orderID)
	if err != nil {
		return fmt.Errorf("record sales: %w", err)
	}
	return nil
}

// lineQuantities loads the per-size quantities of an order, used to put
// stock back when the order is cancelled or rejected.
func lineQuantities(ctx context.Context, q database.Querier, orderID string) ([]domain.OrderLine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT product_size_id, quantity
		FROM order_lines
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load line quantities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ProductSizeID, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan line quantity: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

func getOrder(ctx context.Context, q database.Querier, orderID string) (*domain.Order, error) {
	order := &domain.Order{}
	address := domain.Address{}

	err := q.QueryRowContext(ctx, `
		SELECT id, user_id, delivery_type, status,
			addr_governorate, addr_area, addr_street, addr_building, addr_floor, addr_apartment,
			payment_ref, promo_code, discount, delivery_fee, total, created_at, delivered_at
		FROM orders
		WHERE id = $1
	`, orderID).Scan(
		&order.ID, &order.UserID, &order.DeliveryType, &order.Status,
		&address.Governorate, &address.Area, &address.Street, &address.Building, &address.Floor, &address.Apartment,
		&order.PaymentRef, &order.PromoCode, &order.Discount, &order.DeliveryFee, &order.Total,
		&order.CreatedAt, &order.DeliveredAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFoundf("order %s not found", orderID)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if order.DeliveryType == domain.DeliveryHome {
		order.Address = &address
	}

	rows, err := q.QueryContext(ctx, `
		SELECT product_size_id, quantity, unit_price
		FROM order_lines
		WHERE order_id = $1
		ORDER BY product_size_id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order lines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ProductSizeID, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}

	return order, rows.Err()
}

// listOrders returns a page of order overviews (no lines), newest first,
// optionally restricted to one user.
func listOrders(ctx context.Context, q database.Querier, userID, cursor string, limit int) (*database.CursorPage, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	after, err := database.DecodeCursor(cursor)
	if err != nil {
		return nil, domain.Validationf("invalid cursor")
	}

	// The keyset predicate only appears when a cursor was supplied; the id
	// column is a uuid and the zero cursor has nothing comparable to bind.
	query := `
		SELECT id, user_id, delivery_type, status, discount, delivery_fee, total, created_at, delivered_at
		FROM orders
		WHERE ($1 = '' OR user_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	args := []any{userID, limit + 1}
	if !after.Zero() {
		query = `
			SELECT id, user_id, delivery_type, status, discount, delivery_fee, total, created_at, delivered_at
			FROM orders
			WHERE ($1 = '' OR user_id = $1)
			  AND (created_at, id) < ($2, $3)
			ORDER BY created_at DESC, id DESC
			LIMIT $4
		`
		args = []any{userID, after.CreatedAt, after.ID, limit + 1}
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	orders := []domain.Order{}
	for rows.Next() {
		var order domain.Order
		err := rows.Scan(
			&order.ID, &order.UserID, &order.DeliveryType, &order.Status,
			&order.Discount, &order.DeliveryFee, &order.Total,
			&order.CreatedAt, &order.DeliveredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var next string
	if hasMore {
		last := orders[len(orders)-1]
		next = database.EncodeCursor(database.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &database.CursorPage{Items: orders, NextCursor: next, HasMore: hasMore}, nil
}
