package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is a user's position in one bond. ReservedQuantity covers open
// sell orders so the same fractions cannot be sold twice. AveragePrice is
// the cost-weighted mean of all buy fills.
type Holding struct {
	UserID           string          `json:"user_id"`
	BondID           string          `json:"bond_id"`
	Quantity         int             `json:"quantity"`
	ReservedQuantity int             `json:"reserved_quantity"`
	AveragePrice     decimal.Decimal `json:"average_price"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AvailableQuantity is the portion not reserved by open sell orders.
func (h *Holding) AvailableQuantity() int {
	return h.Quantity - h.ReservedQuantity
}
