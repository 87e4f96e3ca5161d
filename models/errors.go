package models

import "errors"

// Sentinel errors for domain-level failures. The handler layer maps these
// to HTTP status codes; everything else surfaces as an internal error.
var (
	ErrBondNotFound         = errors.New("bond_not_found")
	ErrBondInactive         = errors.New("bond_inactive")
	ErrUserNotFound         = errors.New("user_not_found")
	ErrOrderNotFound        = errors.New("order_not_found")
	ErrNotOrderOwner        = errors.New("not_order_owner")
	ErrOrderNotCancellable  = errors.New("order_not_cancellable")
	ErrInsufficientFunds    = errors.New("insufficient_funds")
	ErrInsufficientHoldings = errors.New("insufficient_holdings")
	ErrNoLiquidity          = errors.New("no_liquidity")
	ErrPriceRequired        = errors.New("price_required")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
)
