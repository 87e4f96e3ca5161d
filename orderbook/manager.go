package orderbook

import (
	"context"
	"fmt"
	"sync"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/models"
)

// LoadFunc fetches the open orders for a bond from the authoritative
// store, sorted any way; the book re-sorts on insert.
type LoadFunc func(ctx context.Context, bondID string, side models.OrderSide) ([]models.Order, error)

// Manager is a thread-safe map of bond id to Book. A book is hydrated
// from the store the first time its bond is touched, so resting liquidity
// survives restarts.
type Manager struct {
	mu    sync.RWMutex
	books map[string]*Book
	load  LoadFunc
}

// NewManager creates a Manager hydrating new books through load.
func NewManager(load LoadFunc) *Manager {
	return &Manager{
		books: make(map[string]*Book),
		load:  load,
	}
}

// Get returns the book for a bond, hydrating it on first access.
func (m *Manager) Get(ctx context.Context, bondID string) (*Book, error) {
	m.mu.RLock()
	book, ok := m.books[bondID]
	m.mu.RUnlock()
	if ok {
		return book, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Double-check after acquiring the write lock.
	if book, ok = m.books[bondID]; ok {
		return book, nil
	}

	book = NewBook(bondID)
	for _, side := range []models.OrderSide{models.SideBuy, models.SideSell} {
		orders, err := m.load(ctx, bondID, side)
		if err != nil {
			return nil, fmt.Errorf("hydrate order book for bond %s: %w", bondID, err)
		}
		for i := range orders {
			o := &orders[i]
			if !o.IsOpen() || o.Price == nil {
				continue
			}
			book.Insert(side, &Resting{
				OrderID:   o.ID,
				UserID:    o.UserID,
				Price:     *o.Price,
				Quantity:  o.Quantity,
				Remaining: o.RemainingQuantity(),
				CreatedAt: o.CreatedAt,
			})
		}
	}
	m.books[bondID] = book
	return book, nil
}
