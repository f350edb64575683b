package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "pending"
	OrderStatusConfirmed        OrderStatus = "confirmed"
	OrderStatusAwaitingCustomer OrderStatus = "awaiting_customer"
	OrderStatusOutForDelivery   OrderStatus = "out_for_delivery"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusCancelled        OrderStatus = "cancelled"
	OrderStatusRejected         OrderStatus = "rejected"
)

func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusRejected:
		return true
	}
	return false
}

type DeliveryType string

const (
	DeliveryPickup DeliveryType = "pickup"
	DeliveryHome   DeliveryType = "home_delivery"
)

type Address struct {
	Governorate string `json:"governorate"`
	Area        string `json:"area"`
	Street      string `json:"street"`
	Building    string `json:"building"`
	Floor       string `json:"floor"`
	Apartment   string `json:"apartment"`
}

type OrderLine struct {
	ProductSizeID int64           `json:"product_size_id"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	DeliveryType DeliveryType    `json:"delivery_type"`
	Address      *Address        `json:"address,omitempty"`
	PaymentRef   string          `json:"payment_ref,omitempty"`
	PromoCode    string          `json:"promo_code,omitempty"`
	Discount     decimal.Decimal `json:"discount"`
	DeliveryFee  decimal.Decimal `json:"delivery_fee"`
	Total        decimal.Decimal `json:"total"`
	Status       OrderStatus     `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	DeliveredAt  *time.Time      `json:"delivered_at,omitempty"`
	Lines        []OrderLine     `json:"lines"`
}

// LineTotal is the sum of line subtotals at the snapshotted unit prices.
func (o *Order) LineTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Action is an order lifecycle step requested by a caller. Which actions are
// valid depends only on the order's current status (and, for Confirm, on the
// delivery type).
type Action string

const (
	ActionCancel         Action = "cancel"
	ActionConfirm        Action = "confirm"
	ActionReject         Action = "reject"
	ActionOutForDelivery Action = "out_for_delivery"
	ActionDeliver        Action = "deliver"
)

var allowedFrom = map[Action][]OrderStatus{
	ActionCancel:         {OrderStatusPending},
	ActionConfirm:        {OrderStatusPending},
	ActionReject:         {OrderStatusPending},
	ActionOutForDelivery: {OrderStatusConfirmed},
	ActionDeliver:        {OrderStatusOutForDelivery, OrderStatusAwaitingCustomer},
}

// NextStatus applies action to an order in status current and returns the
// resulting status. A disallowed transition returns a Conflict error naming
// the current status; the request is never silently ignored.
func NextStatus(action Action, current OrderStatus, delivery DeliveryType) (OrderStatus, error) {
	allowed, ok := allowedFrom[action]
	if !ok {
		return "", Validationf("unknown order action %q", action)
	}

	permitted := false
	for _, s := range allowed {
		if s == current {
			permitted = true
			break
		}
	}
	if !permitted {
		return "", Conflictf("order in status %q does not allow %q", current, action)
	}

	switch action {
	case ActionCancel:
		return OrderStatusCancelled, nil
	case ActionConfirm:
		if delivery == DeliveryPickup {
			return OrderStatusAwaitingCustomer, nil
		}
		return OrderStatusConfirmed, nil
	case ActionReject:
		return OrderStatusRejected, nil
	case ActionOutForDelivery:
		return OrderStatusOutForDelivery, nil
	default:
		return OrderStatusDelivered, nil
	}
}
