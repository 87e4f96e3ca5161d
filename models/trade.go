package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade records one execution between a buy order and a sell order.
// Immutable once created except for the settlement status transition.
type Trade struct {
	ID               string           `json:"id"`
	BuyOrderID       string           `json:"buy_order_id"`
	SellOrderID      string           `json:"sell_order_id"`
	BondID           string           `json:"bond_id"`
	Quantity         int              `json:"quantity"`
	Price            decimal.Decimal  `json:"price"`
	TotalValue       decimal.Decimal  `json:"total_value"`
	BuyerID          string           `json:"buyer_id"`
	SellerID         string           `json:"seller_id"`
	SettlementStatus SettlementStatus `json:"settlement_status"`
	CreatedAt        time.Time        `json:"created_at"`
	SettledAt        *time.Time       `json:"settled_at,omitempty"`
}
