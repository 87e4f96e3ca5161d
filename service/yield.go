package service

import (
	"github.com/shopspring/decimal"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/models"
)

var hundred = decimal.NewFromInt(100)

// YieldFunc recomputes a bond's published yield after a trade at price.
// Prices are quoted per 100 face value.
type YieldFunc func(bond *models.Bond, price decimal.Decimal) decimal.Decimal

// ConstantCouponYield is the default: current yield as the bond's annual
// coupon over the clean price, in percent. A real yield-to-maturity curve
// can be plugged in via the engine's YieldFunc.
func ConstantCouponYield(bond *models.Bond, price decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	return bond.CouponRate.Mul(hundred).DivRound(price, 4)
}
