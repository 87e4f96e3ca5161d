package models

type OrderSide string
type OrderType string
type OrderStatus string
type SettlementStatus string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"

	TypeLimit  OrderType = "limit"
	TypeMarket OrderType = "market"

	StatusPending   OrderStatus = "pending"
	StatusPartial   OrderStatus = "partial"
	StatusFilled    OrderStatus = "filled"
	StatusCancelled OrderStatus = "cancelled"

	SettlementPending SettlementStatus = "pending"
	SettlementSettled SettlementStatus = "settled"
)

// Opposite returns the counterparty side for matching.
func (s OrderSide) Opposite() OrderSide {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// StatusForFill derives order status from fill progress.
func StatusForFill(filled, quantity int) OrderStatus {
	switch {
	case filled >= quantity:
		return StatusFilled
	case filled > 0:
		return StatusPartial
	default:
		return StatusPending
	}
}
