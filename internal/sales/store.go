package sales

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fishmarket/backend/internal/domain"
)

// Store answers read-only questions about delivered revenue. The ledger it
// reads is written by the order engine when an order is marked delivered.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Summary is the total value of all delivered orders.
func (s *Store) Summary(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total), 0)
		FROM orders
		WHERE status = 'delivered'
	`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sales summary: %w", err)
	}
	return total, nil
}

// Monthly returns one bucket per month of the given year, zero-filled for
// months without deliveries.
func (s *Store) Monthly(ctx context.Context, year int) ([]domain.MonthlySales, error) {
	if year < 2000 || year > 2100 {
		return nil, domain.Validationf("invalid year %d", year)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT EXTRACT(MONTH FROM delivered_at)::int AS month, SUM(total)
		FROM orders
		WHERE status = 'delivered'
		  AND delivered_at >= $1 AND delivered_at < $2
		GROUP BY month
	`, time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return nil, fmt.Errorf("monthly sales: %w", err)
	}
	defer func() { _ = rows.Close() }()

	totals := make(map[int]decimal.Decimal)
	for rows.Next() {
		var month int
		var total decimal.Decimal
		if err := rows.Scan(&month, &total); err != nil {
			return nil, fmt.Errorf("scan monthly sales: %w", err)
		}
		totals[month] = total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	months := make([]domain.MonthlySales, 0, 12)
	for m := time.January; m <= time.December; m++ {
		total, ok := totals[int(m)]
		if !ok {
			total = decimal.Zero
		}
		months = append(months, domain.MonthlySales{Month: m.String()[:3], Total: total})
	}

	return months, nil
}

// TopProducts lists the best sellers from the per-product ledger.
func (s *Store) TopProducts(ctx context.Context, limit int) ([]domain.SalesRecord, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, quantity_sold, revenue
		FROM product_sales
		ORDER BY revenue DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []domain.SalesRecord{}
	for rows.Next() {
		var record domain.SalesRecord
		if err := rows.Scan(&record.ProductID, &record.QuantitySold, &record.Revenue); err != nil {
			return nil, fmt.Errorf("scan sales record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
