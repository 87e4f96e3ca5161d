package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/db/postgres/providers"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/models"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/service"
)

// PostgresStore implements service.Store over PostgreSQL. Reads run on the
// pooled connection; settlement mutations run inside one serializable
// transaction per trade via WithinTx.
type PostgresStore struct {
	DBHelper *providers.DBHelper

	bonds    BondRepository
	orders   OrderRepository
	trades   TradeRepository
	holdings HoldingRepository
	accounts AccountRepository
	users    UserRepository
}

func NewPostgresStore(db *providers.DBHelper) *PostgresStore {
	return &PostgresStore{DBHelper: db}
}

var _ service.Store = (*PostgresStore)(nil)

func (s *PostgresStore) GetBond(ctx context.Context, bondID string) (*models.Bond, error) {
	return s.bonds.GetBond(ctx, s.DBHelper.PostgresClient, bondID)
}

func (s *PostgresStore) ListBonds(ctx context.Context) ([]models.Bond, error) {
	return s.bonds.ListBonds(ctx, s.DBHelper.PostgresClient)
}

func (s *PostgresStore) CreateBond(ctx context.Context, bond *models.Bond) error {
	return s.bonds.CreateBond(ctx, s.DBHelper.PostgresClient, bond)
}

func (s *PostgresStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetUser(ctx, s.DBHelper.PostgresClient, userID)
}

// CreateUser inserts the user and opens their funded account in one
// transaction.
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User, initialCash decimal.Decimal) error {
	tx, err := s.DBHelper.PostgresClient.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := s.users.CreateUser(ctx, tx, user); err != nil {
		tx.Rollback()
		return err
	}
	if err := s.accounts.CreateAccount(ctx, tx, user.ID, initialCash); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	return s.accounts.GetAccount(ctx, s.DBHelper.PostgresClient, userID)
}

func (s *PostgresStore) GetHolding(ctx context.Context, userID, bondID string) (*models.Holding, error) {
	return s.holdings.GetHolding(ctx, s.DBHelper.PostgresClient, userID, bondID)
}

func (s *PostgresStore) GetUserHoldings(ctx context.Context, userID string) ([]models.Holding, error) {
	return s.holdings.GetUserHoldings(ctx, s.DBHelper.PostgresClient, userID)
}

func (s *PostgresStore) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.orders.GetOrderByID(ctx, s.DBHelper.PostgresClient, orderID)
}

func (s *PostgresStore) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orders.GetUserOrders(ctx, s.DBHelper.PostgresClient, userID)
}

func (s *PostgresStore) GetOpenOrders(ctx context.Context, bondID string, side models.OrderSide) ([]models.Order, error) {
	return s.orders.FetchOpenOrders(ctx, s.DBHelper.PostgresClient, bondID, side)
}

func (s *PostgresStore) ListRecentTrades(ctx context.Context, bondID string, limit int) ([]models.Trade, error) {
	return s.trades.ListRecentTrades(ctx, s.DBHelper.PostgresClient, bondID, limit)
}

func (s *PostgresStore) ListUserTrades(ctx context.Context, userID string) ([]models.Trade, error) {
	return s.trades.ListUserTrades(ctx, s.DBHelper.PostgresClient, userID)
}

// WithinTx runs fn inside one serializable transaction and rolls back
// every write if fn fails.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx service.TxStore) error) error {
	tx, err := s.DBHelper.PostgresClient.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&txStore{tx: tx, s: s}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore binds the repositories to one open transaction.
type txStore struct {
	tx *sql.Tx
	s  *PostgresStore
}

var _ service.TxStore = (*txStore)(nil)

func (t *txStore) CreateOrder(ctx context.Context, order *models.Order) error {
	return t.s.orders.CreateOrder(ctx, t.tx, order)
}

func (t *txStore) UpdateOrderFill(ctx context.Context, orderID string, filled int, status models.OrderStatus) error {
	return t.s.orders.UpdateOrderFill(ctx, t.tx, orderID, filled, status)
}

func (t *txStore) InsertTrade(ctx context.Context, trade *models.Trade) error {
	return t.s.trades.InsertTrade(ctx, t.tx, trade)
}

func (t *txStore) UpsertHolding(ctx context.Context, userID, bondID string, qtyDelta int, price decimal.Decimal) error {
	return t.s.holdings.ApplyFill(ctx, t.tx, userID, bondID, qtyDelta, price)
}

func (t *txStore) AdjustHoldingReservation(ctx context.Context, userID, bondID string, delta int) error {
	return t.s.holdings.AdjustReservation(ctx, t.tx, userID, bondID, delta)
}

func (t *txStore) AdjustCashBalance(ctx context.Context, userID string, cashDelta, reservedDelta decimal.Decimal) error {
	return t.s.accounts.AdjustBalance(ctx, t.tx, userID, cashDelta, reservedDelta)
}

func (t *txStore) UpdateBondPrice(ctx context.Context, bondID string, price, yieldValue decimal.Decimal) error {
	return t.s.bonds.UpdateBondPrice(ctx, t.tx, bondID, price, yieldValue)
}
