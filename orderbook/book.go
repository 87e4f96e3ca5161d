package orderbook

import (
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/shopspring/decimal"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/models"
)

// Resting is the book's view of one open limit order. It references the
// authoritative order record by id; Remaining mirrors the persisted
// quantity minus filled quantity and is only mutated under the book lock.
type Resting struct {
	OrderID   string
	UserID    string
	Price     decimal.Decimal
	Quantity  int
	Remaining int
	CreatedAt time.Time
}

// FilledQuantity derives the fill counter the store keeps for this order.
func (r *Resting) FilledQuantity() int {
	return r.Quantity - r.Remaining
}

type entry struct {
	price     decimal.Decimal
	createdAt time.Time
	orderID   string
	order     *Resting
}

// bidLess orders the bid side: price descending, then arrival time
// ascending, then order id ascending. Min() is the best bid.
func bidLess(a, b entry) bool {
	if c := a.price.Cmp(b.price); c != 0 {
		return c > 0
	}
	if !a.createdAt.Equal(b.createdAt) {
		return a.createdAt.Before(b.createdAt)
	}
	return a.orderID < b.orderID
}

// askLess orders the ask side: price ascending, then arrival time
// ascending, then order id ascending. Min() is the best ask.
func askLess(a, b entry) bool {
	if c := a.price.Cmp(b.price); c != 0 {
		return c < 0
	}
	if !a.createdAt.Equal(b.createdAt) {
		return a.createdAt.Before(b.createdAt)
	}
	return a.orderID < b.orderID
}

// Book maintains the two sides of one bond's order book in price-time
// priority. Only open limit orders rest here; market orders never do.
//
// Mu serializes every matching pass, cancellation and snapshot for the
// bond. Callers outside this package must hold it around any sequence of
// book reads and writes that has to be consistent.
type Book struct {
	Mu sync.Mutex

	bondID string
	bids   *btree.BTreeG[entry]
	asks   *btree.BTreeG[entry]
	index  map[string]entry
}

// NewBook creates an empty book for the given bond.
func NewBook(bondID string) *Book {
	const degree = 32
	return &Book{
		bondID: bondID,
		bids:   btree.NewG(degree, bidLess),
		asks:   btree.NewG(degree, askLess),
		index:  make(map[string]entry),
	}
}

// BondID returns the bond this book belongs to.
func (b *Book) BondID() string {
	return b.bondID
}

// Insert places a resting order on the given side.
func (b *Book) Insert(side models.OrderSide, r *Resting) {
	e := entry{price: r.Price, createdAt: r.CreatedAt, orderID: r.OrderID, order: r}
	if side == models.SideBuy {
		b.bids.ReplaceOrInsert(e)
	} else {
		b.asks.ReplaceOrInsert(e)
	}
	b.index[r.OrderID] = e
}

// Remove deletes an order from the book by id. Unknown ids are a no-op.
func (b *Book) Remove(orderID string) {
	e, ok := b.index[orderID]
	if !ok {
		return
	}
	delete(b.index, orderID)
	// Delete is a no-op on the side the entry is not on.
	b.bids.Delete(e)
	b.asks.Delete(e)
}

// Get returns the resting order with the given id, if present.
func (b *Book) Get(orderID string) (*Resting, bool) {
	e, ok := b.index[orderID]
	if !ok {
		return nil, false
	}
	return e.order, true
}

// Reduce decrements a resting order's remaining quantity after a fill and
// removes it once exhausted.
func (b *Book) Reduce(orderID string, qty int) {
	e, ok := b.index[orderID]
	if !ok {
		return
	}
	e.order.Remaining -= qty
	if e.order.Remaining <= 0 {
		b.Remove(orderID)
	}
}

// BestEligible returns the highest-priority resting order on the given
// side, skipping orders owned by excludeUser. Self-trades are passed over
// rather than matched; worse-priced counterparties behind them stay
// reachable.
func (b *Book) BestEligible(side models.OrderSide, excludeUser string) (*Resting, bool) {
	var found *Resting
	b.tree(side).Ascend(func(e entry) bool {
		if e.order.UserID == excludeUser {
			return true
		}
		found = e.order
		return false
	})
	return found, found != nil
}

// SideLen returns the number of resting orders on one side.
func (b *Book) SideLen(side models.OrderSide) int {
	return b.tree(side).Len()
}

// Walk iterates one side in priority order. The callback returns false to
// stop.
func (b *Book) Walk(side models.OrderSide, fn func(*Resting) bool) {
	b.tree(side).Ascend(func(e entry) bool {
		return fn(e.order)
	})
}

// SimulateCost walks the given side in priority order and estimates the
// cost of filling qty fractions, skipping excludeUser's own orders. It
// returns the estimated cost and the quantity the book can actually fill.
func (b *Book) SimulateCost(side models.OrderSide, qty int, excludeUser string) (decimal.Decimal, int) {
	cost := decimal.Zero
	remaining := qty
	b.Walk(side, func(r *Resting) bool {
		if r.UserID == excludeUser {
			return true
		}
		fill := remaining
		if r.Remaining < fill {
			fill = r.Remaining
		}
		cost = cost.Add(r.Price.Mul(decimal.NewFromInt(int64(fill))))
		remaining -= fill
		return remaining > 0
	})
	return cost, qty - remaining
}

// Levels aggregates one side into at most n price levels in priority order.
func (b *Book) Levels(side models.OrderSide, n int) []models.OrderBookEntry {
	if n <= 0 {
		return nil
	}
	levels := make([]models.OrderBookEntry, 0, n)
	b.tree(side).Ascend(func(e entry) bool {
		if len(levels) > 0 && levels[len(levels)-1].Price.Equal(e.price) {
			levels[len(levels)-1].Quantity += e.order.Remaining
			levels[len(levels)-1].OrderCount++
			return true
		}
		if len(levels) >= n {
			return false
		}
		levels = append(levels, models.OrderBookEntry{
			Price:      e.price,
			Quantity:   e.order.Remaining,
			OrderCount: 1,
		})
		return true
	})
	return levels
}

func (b *Book) tree(side models.OrderSide) *btree.BTreeG[entry] {
	if side == models.SideBuy {
		return b.bids
	}
	return b.asks
}
