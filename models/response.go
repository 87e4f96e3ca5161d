package models

import "github.com/shopspring/decimal"

type PlaceOrderResponse struct {
	Order  *Order  `json:"order"`
	Trades []Trade `json:"trades,omitempty"`
}

type CancelOrderResponse struct {
	Order   *Order `json:"order"`
	Message string `json:"message"`
}

type OrderStatusResponse struct {
	OrderID           string      `json:"order_id"`
	Status            OrderStatus `json:"status"`
	ExecutedQuantity  int         `json:"executed_quantity"`
	RemainingQuantity int         `json:"remaining_quantity"`
}

type OrderBookEntry struct {
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	OrderCount int             `json:"order_count"`
}

type OrderBookResponse struct {
	BondID string           `json:"bond_id"`
	Bids   []OrderBookEntry `json:"bids"`
	Asks   []OrderBookEntry `json:"asks"`
}

// HoldingView is a holding enriched with marks from the bond's last price.
type HoldingView struct {
	Holding
	CurrentValue  decimal.Decimal `json:"current_value"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
}

type PortfolioResponse struct {
	Holdings []HoldingView `json:"holdings"`
	Account  *Account      `json:"account"`
}
