package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a buy or sell instruction for bond fractions. Price is nil for
// market orders. Orders are never deleted, only status-transitioned.
type Order struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	BondID         string           `json:"bond_id"`
	Side           OrderSide        `json:"side"`
	Type           OrderType        `json:"type"`
	Quantity       int              `json:"quantity"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	FilledQuantity int              `json:"filled_quantity"`
	Status         OrderStatus      `json:"status"`
	TotalValue     decimal.Decimal  `json:"total_value"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// RemainingQuantity is the unfilled portion of the order.
func (o *Order) RemainingQuantity() int {
	return o.Quantity - o.FilledQuantity
}

// IsOpen reports whether the order can still rest on the book or match.
func (o *Order) IsOpen() bool {
	return (o.Status == StatusPending || o.Status == StatusPartial) && o.FilledQuantity < o.Quantity
}
