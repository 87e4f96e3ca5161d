package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a user's cash. ReservedBalance covers open limit buy
// orders so the same cash cannot back two orders at once.
type Account struct {
	UserID          string          `json:"user_id"`
	CashBalance     decimal.Decimal `json:"cash_balance"`
	ReservedBalance decimal.Decimal `json:"reserved_balance"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AvailableBalance is cash not reserved by open buy orders.
func (a *Account) AvailableBalance() decimal.Decimal {
	return a.CashBalance.Sub(a.ReservedBalance)
}
