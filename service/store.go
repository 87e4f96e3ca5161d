package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/models"
)

// Store is the persistence collaborator the engine and order service
// depend on. Implementations live in the repository package (PostgreSQL)
// and repository/memory (in-process, for demo mode and tests).
type Store interface {
	GetBond(ctx context.Context, bondID string) (*models.Bond, error)
	ListBonds(ctx context.Context) ([]models.Bond, error)
	CreateBond(ctx context.Context, bond *models.Bond) error

	GetUser(ctx context.Context, userID string) (*models.User, error)
	// CreateUser creates the user together with a funded cash account.
	CreateUser(ctx context.Context, user *models.User, initialCash decimal.Decimal) error

	GetAccount(ctx context.Context, userID string) (*models.Account, error)
	GetHolding(ctx context.Context, userID, bondID string) (*models.Holding, error)
	GetUserHoldings(ctx context.Context, userID string) ([]models.Holding, error)

	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	GetUserOrders(ctx context.Context, userID string) ([]models.Order, error)
	// GetOpenOrders returns pending and partial orders for one bond side in
	// price-time priority.
	GetOpenOrders(ctx context.Context, bondID string, side models.OrderSide) ([]models.Order, error)

	ListRecentTrades(ctx context.Context, bondID string, limit int) ([]models.Trade, error)
	ListUserTrades(ctx context.Context, userID string) ([]models.Trade, error)

	// WithinTx runs fn inside one serializable transaction. If fn returns an
	// error every write it issued is rolled back.
	WithinTx(ctx context.Context, fn func(tx TxStore) error) error
}

// TxStore is the mutation surface available inside one transaction. One
// trade's settlement (both order fill updates, the trade row, holding and
// cash movements, and the bond price republish) is exactly one such
// transaction.
type TxStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	UpdateOrderFill(ctx context.Context, orderID string, filled int, status models.OrderStatus) error
	InsertTrade(ctx context.Context, trade *models.Trade) error

	// UpsertHolding applies a fill to a holding. Positive qtyDelta adds
	// fractions at price and recomputes the cost-weighted average; negative
	// qtyDelta removes fractions at the stored average cost and releases the
	// matching sell reservation.
	UpsertHolding(ctx context.Context, userID, bondID string, qtyDelta int, price decimal.Decimal) error
	AdjustHoldingReservation(ctx context.Context, userID, bondID string, delta int) error

	// AdjustCashBalance atomically moves cash and reserved balance by the
	// given deltas. Store-level atomic increments are what make concurrent
	// settlement for different bonds safe for a shared account.
	AdjustCashBalance(ctx context.Context, userID string, cashDelta, reservedDelta decimal.Decimal) error

	UpdateBondPrice(ctx context.Context, bondID string, price, yieldValue decimal.Decimal) error
}
