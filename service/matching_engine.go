package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/models"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/orderbook"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/publisher"
)

// MatchingEngine crosses incoming orders against resting liquidity and
// settles every resulting trade as one store transaction.
//
// All matching, cancellation and book mutation for a single bond runs
// under that bond's book lock, so two orders for the same bond can never
// interleave their matching passes. Orders for different bonds proceed in
// parallel; a shared account stays consistent because cash moves through
// the store's atomic increments. Events are published only after the lock
// is released.
type MatchingEngine struct {
	store  Store
	books  *orderbook.Manager
	pub    publisher.Publisher
	yield  YieldFunc
	logger *zap.Logger
}

func NewMatchingEngine(store Store, books *orderbook.Manager, pub publisher.Publisher, logger *zap.Logger) *MatchingEngine {
	return &MatchingEngine{
		store:  store,
		books:  books,
		pub:    pub,
		yield:  ConstantCouponYield,
		logger: logger,
	}
}

// SetYieldFunc swaps the yield recomputation applied on price republish.
func (e *MatchingEngine) SetYieldFunc(f YieldFunc) {
	e.yield = f
}

// SubmitOrder validates, persists and matches one incoming order. It
// returns the order in its final state and the trades executed during the
// pass. A settlement failure mid-pass stops matching: committed trades
// stand, the remainder does not rest, and the error is surfaced.
func (e *MatchingEngine) SubmitOrder(ctx context.Context, req *models.PlaceOrderRequest) (*models.Order, []models.Trade, error) {
	if req.Quantity <= 0 {
		return nil, nil, models.ErrInvalidQuantity
	}
	if req.Type == models.TypeLimit && (req.Price == nil || !req.Price.IsPositive()) {
		return nil, nil, models.ErrPriceRequired
	}

	bond, err := e.store.GetBond(ctx, req.BondID)
	if err != nil {
		return nil, nil, err
	}
	if !bond.IsActive {
		return nil, nil, models.ErrBondInactive
	}

	book, err := e.books.Get(ctx, req.BondID)
	if err != nil {
		return nil, nil, err
	}

	book.Mu.Lock()
	locked := true
	defer func() {
		if locked {
			book.Mu.Unlock()
		}
	}()

	opposite := req.Side.Opposite()

	// Market orders cannot execute against an empty opposite side.
	if req.Type == models.TypeMarket && book.SideLen(opposite) == 0 {
		return nil, nil, models.ErrNoLiquidity
	}

	reserve, err := e.checkEntryFunding(ctx, req, book, opposite)
	if err != nil {
		return nil, nil, err
	}

	order := newOrder(req)
	if err := e.store.WithinTx(ctx, func(tx TxStore) error {
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		if req.Side == models.SideBuy && req.Type == models.TypeLimit {
			return tx.AdjustCashBalance(ctx, req.UserID, decimal.Zero, reserve)
		}
		if req.Side == models.SideSell {
			return tx.AdjustHoldingReservation(ctx, req.UserID, req.BondID, req.Quantity)
		}
		return nil
	}); err != nil {
		return nil, nil, fmt.Errorf("persist incoming order: %w", err)
	}

	trades, matchErr := e.matchLocked(ctx, bond, book, order)

	if matchErr == nil && order.RemainingQuantity() > 0 {
		if order.Type == models.TypeLimit {
			book.Insert(order.Side, &orderbook.Resting{
				OrderID:   order.ID,
				UserID:    order.UserID,
				Price:     *order.Price,
				Quantity:  order.Quantity,
				Remaining: order.RemainingQuantity(),
				CreatedAt: order.CreatedAt,
			})
		} else {
			// Market remainders never rest; cancel what is left.
			matchErr = e.cancelMarketResidual(ctx, order)
		}
	}

	bookPayload := snapshotLocked(book)
	book.Mu.Unlock()
	locked = false

	for i := range trades {
		e.publishTrade(&trades[i])
	}
	if len(trades) > 0 || order.Type == models.TypeLimit {
		e.publishBook(order.BondID, bookPayload)
	}

	if matchErr != nil {
		return order, trades, matchErr
	}
	if order.Type == models.TypeMarket && order.FilledQuantity == 0 {
		return order, nil, models.ErrNoLiquidity
	}
	return order, trades, nil
}

// checkEntryFunding enforces the insufficient-funds and
// insufficient-holdings gates before any state is written, and returns the
// cash amount to reserve for limit buys.
func (e *MatchingEngine) checkEntryFunding(ctx context.Context, req *models.PlaceOrderRequest, book *orderbook.Book, opposite models.OrderSide) (decimal.Decimal, error) {
	if req.Side == models.SideBuy {
		account, err := e.store.GetAccount(ctx, req.UserID)
		if err != nil {
			return decimal.Zero, err
		}
		var required decimal.Decimal
		if req.Type == models.TypeLimit {
			required = req.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))
		} else {
			// Estimate the market order's cost against current liquidity.
			required, _ = book.SimulateCost(opposite, req.Quantity, req.UserID)
		}
		if account.AvailableBalance().LessThan(required) {
			return decimal.Zero, models.ErrInsufficientFunds
		}
		return required, nil
	}

	// Sell side: uncovered shorts are rejected.
	holding, err := e.store.GetHolding(ctx, req.UserID, req.BondID)
	if err != nil {
		return decimal.Zero, err
	}
	if holding == nil || holding.AvailableQuantity() < req.Quantity {
		return decimal.Zero, models.ErrInsufficientHoldings
	}
	return decimal.Zero, nil
}

// matchLocked runs the matching loop for one incoming order. The caller
// holds the book lock. The in-memory book is only mutated after the
// settlement transaction for a trade has committed.
func (e *MatchingEngine) matchLocked(ctx context.Context, bond *models.Bond, book *orderbook.Book, order *models.Order) ([]models.Trade, error) {
	var trades []models.Trade
	opposite := order.Side.Opposite()

	for order.RemainingQuantity() > 0 {
		resting, ok := book.BestEligible(opposite, order.UserID)
		if !ok {
			break
		}
		if order.Type == models.TypeLimit && !crosses(order.Side, *order.Price, resting.Price) {
			break
		}

		matchQty := order.RemainingQuantity()
		if resting.Remaining < matchQty {
			matchQty = resting.Remaining
		}
		if matchQty <= 0 {
			break
		}

		trade, err := e.settleTrade(ctx, bond, order, resting, matchQty)
		if err != nil {
			return trades, fmt.Errorf("settle trade for order %s: %w", order.ID, err)
		}

		order.FilledQuantity += matchQty
		order.Status = models.StatusForFill(order.FilledQuantity, order.Quantity)
		book.Reduce(resting.OrderID, matchQty)
		trades = append(trades, *trade)
	}

	return trades, nil
}

// settleTrade applies one trade atomically: both fill updates, the trade
// row, holding and cash movement on both sides, and the bond price
// republish. Nothing takes effect if any step fails.
func (e *MatchingEngine) settleTrade(ctx context.Context, bond *models.Bond, order *models.Order, resting *orderbook.Resting, qty int) (*models.Trade, error) {
	execPrice := resting.Price // maker price: the resting order always sets the trade price
	total := execPrice.Mul(decimal.NewFromInt(int64(qty)))
	now := time.Now().UTC()

	// Settlement is the same transaction that records the trade, so the
	// trade is born settled.
	trade := &models.Trade{
		ID:               uuid.NewString(),
		BondID:           order.BondID,
		Quantity:         qty,
		Price:            execPrice,
		TotalValue:       total,
		SettlementStatus: models.SettlementSettled,
		CreatedAt:        now,
		SettledAt:        &now,
	}

	// Cash released from the buyer's reservation: resting buys reserved at
	// their own limit price, incoming limit buys at theirs. Incoming market
	// buys reserve nothing.
	var buyerID, sellerID string
	var buyerReserveRelease decimal.Decimal
	if order.Side == models.SideBuy {
		trade.BuyOrderID = order.ID
		trade.SellOrderID = resting.OrderID
		buyerID, sellerID = order.UserID, resting.UserID
		if order.Type == models.TypeLimit {
			buyerReserveRelease = order.Price.Mul(decimal.NewFromInt(int64(qty)))
		}
	} else {
		trade.BuyOrderID = resting.OrderID
		trade.SellOrderID = order.ID
		buyerID, sellerID = resting.UserID, order.UserID
		buyerReserveRelease = resting.Price.Mul(decimal.NewFromInt(int64(qty)))
	}
	trade.BuyerID = buyerID
	trade.SellerID = sellerID

	restingFilled := resting.FilledQuantity() + qty
	restingStatus := models.StatusForFill(restingFilled, resting.Quantity)
	incomingFilled := order.FilledQuantity + qty
	incomingStatus := models.StatusForFill(incomingFilled, order.Quantity)

	err := e.store.WithinTx(ctx, func(tx TxStore) error {
		if err := tx.UpdateOrderFill(ctx, order.ID, incomingFilled, incomingStatus); err != nil {
			return err
		}
		if err := tx.UpdateOrderFill(ctx, resting.OrderID, restingFilled, restingStatus); err != nil {
			return err
		}
		if err := tx.InsertTrade(ctx, trade); err != nil {
			return err
		}
		if err := tx.UpsertHolding(ctx, buyerID, order.BondID, qty, execPrice); err != nil {
			return err
		}
		if err := tx.UpsertHolding(ctx, sellerID, order.BondID, -qty, execPrice); err != nil {
			return err
		}
		if err := tx.AdjustCashBalance(ctx, buyerID, total.Neg(), buyerReserveRelease.Neg()); err != nil {
			return err
		}
		if err := tx.AdjustCashBalance(ctx, sellerID, total, decimal.Zero); err != nil {
			return err
		}
		return tx.UpdateBondPrice(ctx, order.BondID, execPrice, e.yield(bond, execPrice))
	})
	if err != nil {
		return nil, err
	}
	return trade, nil
}

// cancelMarketResidual finalizes an incoming market order that could not
// fully fill. The unfilled remainder is cancelled, never rested.
func (e *MatchingEngine) cancelMarketResidual(ctx context.Context, order *models.Order) error {
	remaining := order.RemainingQuantity()
	status := models.StatusCancelled
	if order.FilledQuantity > 0 {
		status = models.StatusPartial
	}
	err := e.store.WithinTx(ctx, func(tx TxStore) error {
		if err := tx.UpdateOrderFill(ctx, order.ID, order.FilledQuantity, status); err != nil {
			return err
		}
		if order.Side == models.SideSell {
			return tx.AdjustHoldingReservation(ctx, order.UserID, order.BondID, -remaining)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cancel market remainder for order %s: %w", order.ID, err)
	}
	order.Status = status
	return nil
}

// CancelOrder cancels a resting order. It serializes on the bond's book
// lock so an order cannot be cancelled mid-match, releases the remaining
// reservation, and rejects orders that are already filled or cancelled.
func (e *MatchingEngine) CancelOrder(ctx context.Context, orderID, userID string) (*models.Order, error) {
	order, err := e.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, models.ErrNotOrderOwner
	}
	// Market orders never rest: they finalize in the submission pass and
	// their residual reservation is already released there.
	if order.Type == models.TypeMarket {
		return nil, models.ErrOrderNotCancellable
	}

	book, err := e.books.Get(ctx, order.BondID)
	if err != nil {
		return nil, err
	}

	book.Mu.Lock()
	locked := true
	defer func() {
		if locked {
			book.Mu.Unlock()
		}
	}()

	// Re-read under the lock: a concurrent match may have advanced the fill.
	order, err = e.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.StatusPending && order.Status != models.StatusPartial {
		return nil, models.ErrOrderNotCancellable
	}

	remaining := order.RemainingQuantity()
	if err := e.store.WithinTx(ctx, func(tx TxStore) error {
		if err := tx.UpdateOrderFill(ctx, order.ID, order.FilledQuantity, models.StatusCancelled); err != nil {
			return err
		}
		if order.Side == models.SideBuy && order.Type == models.TypeLimit {
			release := order.Price.Mul(decimal.NewFromInt(int64(remaining)))
			return tx.AdjustCashBalance(ctx, order.UserID, decimal.Zero, release.Neg())
		}
		if order.Side == models.SideSell {
			return tx.AdjustHoldingReservation(ctx, order.UserID, order.BondID, -remaining)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("cancel order %s: %w", orderID, err)
	}

	book.Remove(orderID)
	order.Status = models.StatusCancelled

	bookPayload := snapshotLocked(book)
	book.Mu.Unlock()
	locked = false

	e.publishBook(order.BondID, bookPayload)
	return order, nil
}

// Snapshot returns the aggregated book for display, consistent with any
// in-flight matching.
func (e *MatchingEngine) Snapshot(ctx context.Context, bondID string, depth int) (*models.OrderBookResponse, error) {
	book, err := e.books.Get(ctx, bondID)
	if err != nil {
		return nil, err
	}
	book.Mu.Lock()
	bids := book.Levels(models.SideBuy, depth)
	asks := book.Levels(models.SideSell, depth)
	book.Mu.Unlock()
	return &models.OrderBookResponse{BondID: bondID, Bids: bids, Asks: asks}, nil
}

// crosses reports whether an incoming limit order at limitPrice may trade
// against a resting order at restingPrice.
func crosses(side models.OrderSide, limitPrice, restingPrice decimal.Decimal) bool {
	if side == models.SideBuy {
		return restingPrice.LessThanOrEqual(limitPrice)
	}
	return restingPrice.GreaterThanOrEqual(limitPrice)
}

func newOrder(req *models.PlaceOrderRequest) *models.Order {
	now := time.Now().UTC()
	order := &models.Order{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		BondID:    req.BondID,
		Side:      req.Side,
		Type:      req.Type,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Type == models.TypeLimit {
		order.TotalValue = req.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))
	}
	return order
}

const snapshotDepth = 20

func snapshotLocked(book *orderbook.Book) publisher.BookPayload {
	return publisher.BookPayload{
		Bids: book.Levels(models.SideBuy, snapshotDepth),
		Asks: book.Levels(models.SideSell, snapshotDepth),
	}
}

func (e *MatchingEngine) publishTrade(trade *models.Trade) {
	e.publishAsync(publisher.Event{
		Type:   publisher.EventTradeExecuted,
		BondID: trade.BondID,
		Payload: publisher.TradePayload{
			TradeID:     trade.ID,
			BuyOrderID:  trade.BuyOrderID,
			SellOrderID: trade.SellOrderID,
			Price:       trade.Price,
			Quantity:    trade.Quantity,
			ExecutedAt:  trade.CreatedAt,
		},
		Timestamp: time.Now().UTC(),
	})
}

func (e *MatchingEngine) publishBook(bondID string, payload publisher.BookPayload) {
	e.publishAsync(publisher.Event{
		Type:      publisher.EventOrderBookChanged,
		BondID:    bondID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
}

// publishAsync delivers an event without blocking the caller. Publish
// failures are logged and never affect order processing.
func (e *MatchingEngine) publishAsync(event publisher.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.pub.Publish(ctx, event); err != nil {
			e.logger.Error("publish market event",
				zap.String("type", string(event.Type)),
				zap.String("bond_id", event.BondID),
				zap.Error(err),
			)
		}
	}()
}
