package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderCreatedEvent struct {
	OrderID      string          `json:"order_id"`
	UserID       string          `json:"user_id"`
	DeliveryType DeliveryType    `json:"delivery_type"`
	Total        decimal.Decimal `json:"total"`
	Lines        []OrderLine     `json:"lines"`
	Timestamp    time.Time       `json:"timestamp"`
}
