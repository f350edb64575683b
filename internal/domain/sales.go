package domain

import "github.com/shopspring/decimal"

// SalesRecord is the per-product sales ledger row. Counters only ever grow:
// they are bumped once per delivered order covering the product.
type SalesRecord struct {
	ProductID    int64           `json:"product_id"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type MonthlySales struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}
