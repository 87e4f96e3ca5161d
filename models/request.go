package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PlaceOrderRequest struct {
	UserID   string           `json:"user_id" validate:"required"`
	BondID   string           `json:"bond_id" validate:"required"`
	Side     OrderSide        `json:"side" validate:"required,oneof=buy sell"`
	Type     OrderType        `json:"type" validate:"required,oneof=limit market"`
	Quantity int              `json:"quantity" validate:"required,gt=0"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

type CancelOrderRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type CreateBondRequest struct {
	ISIN          string           `json:"isin" validate:"required"`
	Issuer        string           `json:"issuer" validate:"required"`
	Name          string           `json:"name" validate:"required"`
	CouponRate    decimal.Decimal  `json:"coupon_rate"`
	FaceValue     decimal.Decimal  `json:"face_value"`
	MaturityDate  time.Time        `json:"maturity_date" validate:"required"`
	Rating        string           `json:"rating" validate:"required"`
	CurrentPrice  *decimal.Decimal `json:"current_price,omitempty"`
	MinInvestment *decimal.Decimal `json:"min_investment,omitempty"`
}

type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}
