package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bond is a tradable corporate bond. CurrentPrice and CurrentYield are
// republished after every trade; everything else is fixed at listing time.
type Bond struct {
	ID            string          `json:"id"`
	ISIN          string          `json:"isin"`
	Issuer        string          `json:"issuer"`
	Name          string          `json:"name"`
	CouponRate    decimal.Decimal `json:"coupon_rate"`
	FaceValue     decimal.Decimal `json:"face_value"`
	MaturityDate  time.Time       `json:"maturity_date"`
	Rating        string          `json:"rating"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	CurrentYield  decimal.Decimal `json:"current_yield"`
	MinInvestment decimal.Decimal `json:"min_investment"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
