package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityStatus replaces boolean soft-delete flags: rows are either active or
// deleted-at-a-point-in-time, and default reads only see active rows.
type EntityStatus string

const (
	StatusActive  EntityStatus = "active"
	StatusDeleted EntityStatus = "deleted"
)

type Category struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Status    EntityStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	DeletedAt *time.Time   `json:"deleted_at,omitempty"`
}

type Product struct {
	ID          int64         `json:"id"`
	CategoryID  int64         `json:"category_id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      EntityStatus  `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	DeletedAt   *time.Time    `json:"deleted_at,omitempty"`
	Sizes       []ProductSize `json:"sizes,omitempty"`
}

// ProductSize is the orderable unit: one size of one product, with its own
// price and stock. Order lines reference sizes, never products directly.
type ProductSize struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"product_id"`
	Label         string          `json:"label"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
}
