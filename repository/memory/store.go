// Package memory provides an in-process Store used in demo mode and in
// tests. It mirrors the PostgreSQL store's semantics, including all-or-
// nothing transactions.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/models"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/service"
)

type Store struct {
	mu       sync.Mutex
	bonds    map[string]*models.Bond
	users    map[string]*models.User
	accounts map[string]*models.Account
	orders   map[string]*models.Order
	holdings map[string]*models.Holding // key userID|bondID
	trades   []*models.Trade
}

var _ service.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		bonds:    make(map[string]*models.Bond),
		users:    make(map[string]*models.User),
		accounts: make(map[string]*models.Account),
		orders:   make(map[string]*models.Order),
		holdings: make(map[string]*models.Holding),
	}
}

func holdingKey(userID, bondID string) string { return userID + "|" + bondID }

func (s *Store) GetBond(ctx context.Context, bondID string) (*models.Bond, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bonds[bondID]
	if !ok {
		return nil, models.ErrBondNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *Store) ListBonds(ctx context.Context) ([]models.Bond, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var bonds []models.Bond
	for _, b := range s.bonds {
		if b.IsActive {
			bonds = append(bonds, *b)
		}
	}
	sort.Slice(bonds, func(i, j int) bool {
		if bonds[i].Issuer != bonds[j].Issuer {
			return bonds[i].Issuer < bonds[j].Issuer
		}
		return bonds[i].Name < bonds[j].Name
	})
	return bonds, nil
}

func (s *Store) CreateBond(ctx context.Context, bond *models.Bond) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *bond
	s.bonds[bond.ID] = &cp
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User, initialCash decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *user
	s.users[user.ID] = &cp
	now := time.Now().UTC()
	s.accounts[user.ID] = &models.Account{
		UserID:          user.ID,
		CashBalance:     initialCash,
		ReservedBalance: decimal.Zero,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[userID]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Store) GetHolding(ctx context.Context, userID, bondID string) (*models.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holdings[holdingKey(userID, bondID)]
	if !ok {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

func (s *Store) GetUserHoldings(ctx context.Context, userID string) ([]models.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var holdings []models.Holding
	for _, h := range s.holdings {
		if h.UserID == userID && h.Quantity > 0 {
			holdings = append(holdings, *h)
		}
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].BondID < holdings[j].BondID })
	return holdings, nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	cp := copyOrder(o)
	return cp, nil
}

func (s *Store) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []models.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			orders = append(orders, *copyOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (s *Store) GetOpenOrders(ctx context.Context, bondID string, side models.OrderSide) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []models.Order
	for _, o := range s.orders {
		if o.BondID == bondID && o.Side == side && o.IsOpen() && o.Price != nil {
			orders = append(orders, *copyOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if c := a.Price.Cmp(*b.Price); c != 0 {
			if side == models.SideBuy {
				return c > 0
			}
			return c < 0
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return orders, nil
}

func (s *Store) ListRecentTrades(ctx context.Context, bondID string, limit int) ([]models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var trades []models.Trade
	for i := len(s.trades) - 1; i >= 0 && len(trades) < limit; i-- {
		t := s.trades[i]
		if bondID == "" || t.BondID == bondID {
			trades = append(trades, *t)
		}
	}
	return trades, nil
}

func (s *Store) ListUserTrades(ctx context.Context, userID string) ([]models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var trades []models.Trade
	for i := len(s.trades) - 1; i >= 0; i-- {
		t := s.trades[i]
		if t.BuyerID == userID || t.SellerID == userID {
			trades = append(trades, *t)
		}
	}
	return trades, nil
}

// WithinTx snapshots the mutable state, runs fn under the store lock, and
// restores the snapshot if fn fails. That gives the same all-or-nothing
// behavior as the serializable SQL transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx service.TxStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&txStore{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshotState struct {
	bonds    map[string]*models.Bond
	accounts map[string]*models.Account
	orders   map[string]*models.Order
	holdings map[string]*models.Holding
	trades   []*models.Trade
}

func (s *Store) snapshot() snapshotState {
	snap := snapshotState{
		bonds:    make(map[string]*models.Bond, len(s.bonds)),
		accounts: make(map[string]*models.Account, len(s.accounts)),
		orders:   make(map[string]*models.Order, len(s.orders)),
		holdings: make(map[string]*models.Holding, len(s.holdings)),
		trades:   s.trades[:len(s.trades):len(s.trades)],
	}
	for k, v := range s.bonds {
		cp := *v
		snap.bonds[k] = &cp
	}
	for k, v := range s.accounts {
		cp := *v
		snap.accounts[k] = &cp
	}
	for k, v := range s.orders {
		snap.orders[k] = copyOrder(v)
	}
	for k, v := range s.holdings {
		cp := *v
		snap.holdings[k] = &cp
	}
	return snap
}

func (s *Store) restore(snap snapshotState) {
	s.bonds = snap.bonds
	s.accounts = snap.accounts
	s.orders = snap.orders
	s.holdings = snap.holdings
	s.trades = snap.trades
}

func copyOrder(o *models.Order) *models.Order {
	cp := *o
	if o.Price != nil {
		p := *o.Price
		cp.Price = &p
	}
	return &cp
}

// txStore mutates the store directly; the caller already holds the lock
// and rolls back via snapshot restore.
type txStore struct {
	s *Store
}

var _ service.TxStore = (*txStore)(nil)

func (t *txStore) CreateOrder(ctx context.Context, order *models.Order) error {
	t.s.orders[order.ID] = copyOrder(order)
	return nil
}

func (t *txStore) UpdateOrderFill(ctx context.Context, orderID string, filled int, status models.OrderStatus) error {
	o, ok := t.s.orders[orderID]
	if !ok {
		return models.ErrOrderNotFound
	}
	o.FilledQuantity = filled
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (t *txStore) InsertTrade(ctx context.Context, trade *models.Trade) error {
	cp := *trade
	t.s.trades = append(t.s.trades, &cp)
	return nil
}

func (t *txStore) UpsertHolding(ctx context.Context, userID, bondID string, qtyDelta int, price decimal.Decimal) error {
	key := holdingKey(userID, bondID)
	h, ok := t.s.holdings[key]
	now := time.Now().UTC()

	if !ok {
		if qtyDelta < 0 {
			return models.ErrInsufficientHoldings
		}
		qty := decimal.NewFromInt(int64(qtyDelta))
		t.s.holdings[key] = &models.Holding{
			UserID:       userID,
			BondID:       bondID,
			Quantity:     qtyDelta,
			AveragePrice: price,
			TotalCost:    price.Mul(qty),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return nil
	}

	newQty := h.Quantity + qtyDelta
	if newQty < 0 {
		return models.ErrInsufficientHoldings
	}
	if qtyDelta > 0 {
		h.TotalCost = h.TotalCost.Add(price.Mul(decimal.NewFromInt(int64(qtyDelta))))
		if newQty > 0 {
			h.AveragePrice = h.TotalCost.DivRound(decimal.NewFromInt(int64(newQty)), 4)
		}
	} else {
		h.TotalCost = h.AveragePrice.Mul(decimal.NewFromInt(int64(newQty)))
		h.ReservedQuantity += qtyDelta
		if h.ReservedQuantity < 0 {
			h.ReservedQuantity = 0
		}
	}
	h.Quantity = newQty
	h.UpdatedAt = now
	return nil
}

func (t *txStore) AdjustHoldingReservation(ctx context.Context, userID, bondID string, delta int) error {
	h, ok := t.s.holdings[holdingKey(userID, bondID)]
	if !ok {
		return models.ErrInsufficientHoldings
	}
	h.ReservedQuantity += delta
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (t *txStore) AdjustCashBalance(ctx context.Context, userID string, cashDelta, reservedDelta decimal.Decimal) error {
	a, ok := t.s.accounts[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	a.CashBalance = a.CashBalance.Add(cashDelta)
	a.ReservedBalance = a.ReservedBalance.Add(reservedDelta)
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (t *txStore) UpdateBondPrice(ctx context.Context, bondID string, price, yieldValue decimal.Decimal) error {
	b, ok := t.s.bonds[bondID]
	if !ok {
		return models.ErrBondNotFound
	}
	b.CurrentPrice = price
	b.CurrentYield = yieldValue
	b.UpdatedAt = time.Now().UTC()
	return nil
}
