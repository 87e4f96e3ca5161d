package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/models"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/orderbook"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/publisher"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/repository/memory"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/service"
)

const testBond = "bond-acme-2030"

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type engineEnv struct {
	store  *memory.Store
	engine *service.MatchingEngine
	svc    *service.OrderService
}

func newEngineEnv(t *testing.T) *engineEnv {
	t.Helper()
	return newEngineEnvWithStore(t, memory.NewStore())
}

func newEngineEnvWithStore(t *testing.T, store service.Store) *engineEnv {
	t.Helper()
	logger := zap.NewNop()
	books := orderbook.NewManager(store.GetOpenOrders)
	engine := service.NewMatchingEngine(store, books, publisher.NewLogPublisher(logger), logger)
	svc := service.NewOrderService(store, engine, nil)

	mem, _ := store.(*memory.Store)
	return &engineEnv{store: mem, engine: engine, svc: svc}
}

func seedBond(t *testing.T, store service.Store, bondID string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, store.CreateBond(context.Background(), &models.Bond{
		ID:            bondID,
		ISIN:          "US0000000001",
		Issuer:        "ACME Corp",
		Name:          "ACME 8.5% 2030",
		CouponRate:    dec("8.5"),
		FaceValue:     dec("1000"),
		MaturityDate:  now.AddDate(4, 0, 0),
		Rating:        "AA",
		CurrentPrice:  dec("100"),
		CurrentYield:  dec("8.5"),
		MinInvestment: dec("10000"),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}))
}

func seedUser(t *testing.T, store service.Store, userID, cash string) {
	t.Helper()
	require.NoError(t, store.CreateUser(context.Background(), &models.User{
		ID:        userID,
		Email:     userID + "@example.com",
		FirstName: userID,
		LastName:  "Trader",
		CreatedAt: time.Now().UTC(),
	}, dec(cash)))
}

func grantHolding(t *testing.T, store service.Store, userID, bondID string, qty int, avgPrice string) {
	t.Helper()
	require.NoError(t, store.WithinTx(context.Background(), func(tx service.TxStore) error {
		return tx.UpsertHolding(context.Background(), userID, bondID, qty, dec(avgPrice))
	}))
}

func placeLimit(t *testing.T, env *engineEnv, userID string, side models.OrderSide, qty int, price string) *models.PlaceOrderResponse {
	t.Helper()
	resp, err := env.svc.PlaceOrder(context.Background(), &models.PlaceOrderRequest{
		UserID:   userID,
		BondID:   testBond,
		Side:     side,
		Type:     models.TypeLimit,
		Quantity: qty,
		Price:    decPtr(price),
	})
	require.NoError(t, err)
	return resp
}

func totalCash(t *testing.T, store service.Store, users ...string) decimal.Decimal {
	t.Helper()
	sum := decimal.Zero
	for _, u := range users {
		account, err := store.GetAccount(context.Background(), u)
		require.NoError(t, err)
		sum = sum.Add(account.CashBalance)
	}
	return sum
}

func TestLimitBuyRestsOnEmptyBook(t *testing.T) {
	env := newEngineEnv(t)
	seedBond(t, env.store, testBond)
	seedUser(t, env.store, "alice", "100000")

	resp := placeLimit(t, env, "alice", models.SideBuy, 10, "100")

	assert.Equal(t, models.StatusPending, resp.Order.Status)
	assert.Empty(t, resp.Trades)

	book, err := env.svc.GetOrderBook(context.Background(), testBond)
	require.NoError(t, err)
	require.Len(t, book.Bids, 1)
	assert.True(t, book.Bids[0].Price.Equal(dec("100")))
	assert.Equal(t, 10, book.Bids[0].Quantity)
	assert.Empty(t, book.Asks)

	account, err := env.store.GetAccount(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, account.ReservedBalance.Equal(dec("1000")), "limit buy reserves price*qty")
}

func TestFullFillAtMakerPrice(t *testing.T) {
	env := newEngineEnv(t)
	seedBond(t, env.store, testBond)
	seedUser(t, env.store, "alice", "100000")
	seedUser(t, env.store, "bob", "100000")
	grantHolding(t, env.store, "bob", testBond, 50, "95")

	placeLimit(t, env, "alice", models.SideBuy, 10, "100")
	resp := placeLimit(t, env, "bob", models.SideSell, 10, "100")

	require.Len(t, resp.Trades, 1)
	trade := resp.Trades[0]
	assert.Equal(t, 10, trade.Quantity)
	assert.True(t, trade.Price.Equal(dec("100")), "execution at the resting order's price")
	assert.Equal(t, "alice", trade.BuyerID)
	assert.Equal(t, "bob", trade.SellerID)
	assert.Equal(t, models.StatusFilled, resp.Order.Status)

	buyerAccount, err := env.store.GetAccount(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, buyerAccount.CashBalance.Equal(dec("99000")))
	assert.True(t, buyerAccount.ReservedBalance.IsZero(), "reservation fully released on fill")

	sellerAccount, err := env.store.GetAccount(context.Background(), "bob")
	require.NoError(t, err)
	assert.True(t, sellerAccount.CashBalance.Equal(dec("101000")))

	buyerHolding, err := env.store.GetHolding(context.Background(), "alice", testBond)
	require.NoError(t, err)
	require.NotNil(t, buyerHolding)
	assert.Equal(t, 10, buyerHolding.Quantity)
	assert.True(t, buyerHolding.AveragePrice.Equal(dec("100")))

	sellerHolding, err := env.store.GetHolding(context.Background(), "bob", testBond)
	require.NoError(t, err)
	require.NotNil(t, sellerHolding)
	assert.Equal(t, 40, sellerHolding.Quantity)
	assert.Equal(t, 0, sellerHolding.ReservedQuantity)

	// Last trade republishes the bond price and yield.
	bond, err := env.store.GetBond(context.Background(), testBond)
	require.NoError(t, err)
	assert.True(t, bond.CurrentPrice.Equal(dec("100")))
	assert.True(t, bond.CurrentYield.Equal(dec("8.5")))
}

func TestMarketBuyPartialFillNeverRests(t *testing.T) {
	env := newEngineEnv(t)
	seedBond(t, env.store, testBond)
	seedUser(t, env.store, "alice", "100000")
	seedUser(t, env.store, "bob", "100000")
	grantHolding(t, env.store, "bob", testBond, 50, "95")

	placeLimit(t, env, "bob", models.SideSell, 5, "100")

	resp, err := env.svc.PlaceOrder(context.Background(), &models.PlaceOrderRequest{
		UserID:   "alice",
		BondID:   testBond,
		Side:     models.SideBuy,
		Type:     models.TypeMarket,
		Quantity: 8,
	})
	require.NoError(t, err)
	require.Len(t, resp.Trades, 1)
	assert.Equal(t, 5, resp.Trades[0].Quantity)
	assert.True(t, resp.Trades[0].Price.Equal(dec("100")))

	assert.Equal(t, models.StatusPartial, resp.Order.Status)
	assert.Equal(t, 5, resp.Order.FilledQuantity)

	// The unfilled remainder is gone, not resting.
	book, err := env.svc.GetOrderBook(context.Background(), testBond)
	require.NoError(t, err)
	assert.Empty(t, book.Bids)
	assert.Empty(t, book.Asks)
}

func TestMarketOrderPriceBeatsTime(t *testing.T) {
	env := newEngineEnv(t)
	seedBond(t, env.store, testBond)
	seedUser(t, env.store, "alice", "100000")
	seedUser(t, env.store, "bob", "100000")
	seedUser(t, env.store, "carol", "100000")
	grantHolding(t, env.store, "bob", testBond, 50, "95")
	grantHolding(t, env.store, "carol", testBond, 50, "95")

	placeLimit(t, env, "bob", models.SideSell, 5, "100")
	placeLimit(t, env, "carol", models.SideSell, 5, "99")

	resp, err := env.svc.PlaceOrder(context.Background(), &models.PlaceOrderRequest{
		UserID:   "alice",
		BondID:   testBond,
		Side:     models.SideBuy,
		Type:     models.TypeMarket,
		Quantity: 5,
	})
	require.NoError(t, err)
	require.Len(t, resp.Trades, 1)
	assert.True(t, resp.Trades[0].Price.Equal(dec("99")), "the later but better-priced ask fills first")
	assert.Equal(t, "carol", resp.Trades[0].SellerID)
}

func TestLimitBuySweepsMultipleLevelsAndRests(t *testing.T) {
	env := newEngineEnv(t)
	seedBond(t, env.store, testBond)
	seedUser(t, env.store, "alice", "100000")
	seedUser(t, env.store, "bob", "100000")
	grantHolding(t, env.store, "bob", testBond, 50, "95")

	placeLimit(t, env, "bob", models.SideSell, 4, "99")
	placeLimit(t, env, "bob", models.SideSell, 3, "100")

	resp := placeLimit(t, env, "alice", models.SideBuy, 10, "100")

	require.Len(t, resp.Trades, 2)
	assert.True(t, resp.Trades[0].Price.Equal(dec("99")))
	assert.Equal(t, 4, resp.Trades[0].Quantity)
	assert.True(t, resp.Trades[1].Price.Equal(dec("100")))
	assert.Equal(t, 3, resp.Trades[1].Quantity)

	assert.Equal(t, models.StatusPartial, resp.Order.Status)
	assert.Equal(t, 7, resp.Order.FilledQuantity)

	book, err := env.svc.GetOrderBook(context.Background(), testBond)
	require.NoError(t, err)
	require.Len(t, book.Bids, 1)
	assert.Equal(t, 3, book.Bids[0].Quantity, "limit remainder rests at its own price")
	assert.Empty(t, book.Asks)
}

func TestMarketOrderNoLiquidityRejected(t *testing.T) {
	env := newEngineEnv(t)
	seedBond(t, env.store, testBond)
	seedUser(t, env.store, "alice", "100000")

	_, err := env.svc.PlaceOrder(context.Background(), &models.PlaceOrderRequest{
		UserID:   "alice",
		BondID:   testBond,
		Side:     models.SideBuy,
		Type:     models.TypeMarket,
		Quantity: 5,
	})
	assert.ErrorIs(t, err, models.ErrNoLiquidity)
}

func TestSelfTradeSkipped(t *testing.T) {
	env := newEngineEnv(t)
	seedBond(t, env.store, testBond)
	seedUser(t, env.store, "alice", "100000")
	seedUser(t, env.store, "bob", "100000")
	grantHolding(t, env.store, "alice", testBond, 50, "95")
	grantHolding(t, env.store, "bob", testBond, 50, "95")

	// Alice's own ask is the best price; Bob's sits behind it.
	placeLimit(t, env, "alice", models.SideSell, 5, "99")
	placeLimit(t, env, "bob", models.SideSell, 5, "100")

	resp := placeLimit(t, env, "alice", models.SideBuy, 5, "100")

	require.Len(t, resp.Trades, 1)
	assert.Equal(t, "bob", resp.Trades[0].SellerID, "own resting order is skipped, not matched")
	assert.True(t, resp.Trades[0].Price.Equal(dec("100")))

	// Alice's ask still rests untouched.
	book, err := env.svc.GetOrderBook(context.Background(), testBond)
	require.NoError(t, err)
	require.Len(t, book.Asks, 1)
	assert.True(t, book.Asks[0].Price.Equal(dec("99")))
	assert.Equal(t, 5, book.Asks[0].Quantity)
}

func TestWeightedAverageCost(t *testing.T) {
	env := newEngineEnv(t)
	seedBond(t, env.store, testBond)
	seedUser(t, env.store, "alice", "100000")
	seedUser(t, env.store, "bob", "100000")
	grantHolding(t, env.store, "bob", testBond, 50, "95")

	placeLimit(t, env, "bob", models.SideSell, 10, "100")
	placeLimit(t, env, "alice", models.SideBuy, 10, "100")
	placeLimit(t, env, "bob", models.SideSell, 10, "90")
	placeLimit(t, env, "alice", models.SideBuy, 10, "90")

	holding, err := env.store.GetHolding(context.Background(), "alice", testBond)
	require.NoError(t, err)
	require.NotNil(t, holding)
	assert.Equal(t, 20, holding.Quantity)
	assert.True(t, holding.AveragePrice.Equal(dec("95")), "got %s", holding.AveragePrice)
	assert.True(t, holding.TotalCost.Equal(dec("1900")))

	// Selling removes at average cost; the average itself is unchanged.
	placeLimit(t, env, "bob", models.SideBuy, 5, "110")
	placeLimit(t, env, "alice", models.SideSell, 5, "110")

	holding, err = env.store.GetHolding(context.Background(), "alice", testBond)
	require.NoError(t, err)
	assert.Equal(t, 15, holding.Quantity)
	assert.True(t, holding.AveragePrice.Equal(dec("95")))
	assert.True(t, holding.TotalCost.Equal(dec("1425")))
}

func TestCashConservation(t *testing.T) {
	env := newEngineEnv(t)
	seedBond(t, env.store, testBond)
	seedUser(t, env.store, "alice", "100000")
	seedUser(t, env.store, "bob", "100000")
	seedUser(t, env.store, "carol", "100000")
	grantHolding(t, env.store, "bob", testBond, 100, "95")
	grantHolding(t, env.store, "carol", testBond, 100, "95")

	before := totalCash(t, env.store, "alice", "bob", "carol")

	placeLimit(t, env, "bob", models.SideSell, 10, "101")
	placeLimit(t, env, "carol", models.SideSell, 15, "100")
	placeLimit(t, env, "alice", models.SideBuy, 20, "101")
	placeLimit(t, env, "carol", models.SideBuy, 5, "102")

	after := totalCash(t, env.store, "alice", "bob", "carol")
	assert.True(t, before.Equal(after), "cash only moves between accounts: %s != %s", before, after)
}

func TestInsufficientFundsRejected(t *testing.T) {
	env := newEngineEnv(t)
	seedBond(t, env.store, testBond)
	seedUser(t, env.store, "alice", "500")

	_, err := env.svc.PlaceOrder(context.Background(), &models.PlaceOrderRequest{
		UserID:   "alice",
		BondID:   testBond,
		Side:     models.SideBuy,
		Type:     models.TypeLimit,
		Quantity: 10,
		Price:    decPtr("100"),
	})
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	// Reserved cash from an open order counts against new orders too.
	seedUser(t, env.store, "bob", "1000")
	placeLimit(t, env, "bob", models.SideBuy, 9, "100")
	_, err = env.svc.PlaceOrder(context.Background(), &models.PlaceOrderRequest{
		UserID:   "bob",
		BondID:   testBond,
		Side:     models.SideBuy,
		Type:     models.TypeLimit,
		Quantity: 2,
		Price:    decPtr("100"),
	})
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)
}

func TestInsufficientHoldingsRejected(t *testing.T) {
	env := newEngineEnv(t)
	seedBond(t, env.store, testBond)
	seedUser(t, env.store, "alice", "100000")
	grantHolding(t, env.store, "alice", testBond, 5, "100")

	_, err := env.svc.PlaceOrder(context.Background(), &models.PlaceOrderRequest{
		UserID:   "alice",
		BondID:   testBond,
		Side:     models.SideSell,
		Type:     models.TypeLimit,
		Quantity: 10,
		Price:    decPtr("100"),
	})
	assert.ErrorIs(t, err, models.ErrInsufficientHoldings)

	// Fractions reserved by an open sell cannot back a second sell.
	placeLimit(t, env, "alice", models.SideSell, 4, "100")
	_, err = env.svc.PlaceOrder(context.Background(), &models.PlaceOrderRequest{
		UserID:   "alice",
		BondID:   testBond,
		Side:     models.SideSell,
		Type:     models.TypeLimit,
		Quantity: 2,
		Price:    decPtr("100"),
	})
	assert.ErrorIs(t, err, models.ErrInsufficientHoldings)
}

func TestLimitOrderRequiresPrice(t *testing.T) {
	env := newEngineEnv(t)
	seedBond(t, env.store, testBond)
	seedUser(t, env.store, "alice", "100000")

	_, err := env.svc.PlaceOrder(context.Background(), &models.PlaceOrderRequest{
		UserID:   "alice",
		BondID:   testBond,
		Side:     models.SideBuy,
		Type:     models.TypeLimit,
		Quantity: 10,
	})
	assert.ErrorIs(t, err, models.ErrPriceRequired)
}

func TestInactiveBondRejected(t *testing.T) {
	env := newEngineEnv(t)
	seedUser(t, env.store, "alice", "100000")
	now := time.Now().UTC()
	require.NoError(t, env.store.CreateBond(context.Background(), &models.Bond{
		ID: testBond, Issuer: "ACME", Name: "Delisted", IsActive: false,
		CreatedAt: now, UpdatedAt: now,
	}))

	_, err := env.svc.PlaceOrder(context.Background(), &models.PlaceOrderRequest{
		UserID:   "alice",
		BondID:   testBond,
		Side:     models.SideBuy,
		Type:     models.TypeLimit,
		Quantity: 1,
		Price:    decPtr("100"),
	})
	assert.ErrorIs(t, err, models.ErrBondInactive)
}

func TestCancelReleasesReservationExactlyOnce(t *testing.T) {
	env := newEngineEnv(t)
	seedBond(t, env.store, testBond)
	seedUser(t, env.store, "alice", "100000")

	resp := placeLimit(t, env, "alice", models.SideBuy, 10, "100")
	orderID := resp.Order.ID

	cancelResp, err := env.svc.CancelOrder(context.Background(), orderID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelResp.Order.Status)

	account, err := env.store.GetAccount(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, account.ReservedBalance.IsZero())
	assert.True(t, account.CashBalance.Equal(dec("100000")))

	book, err := env.svc.GetOrderBook(context.Background(), testBond)
	require.NoError(t, err)
	assert.Empty(t, book.Bids)

	// Cancelling again is an explicit rejection, not a silent no-op.
	_, err = env.svc.CancelOrder(context.Background(), orderID, "alice")
	assert.ErrorIs(t, err, models.ErrOrderNotCancellable)

	account, err = env.store.GetAccount(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, account.ReservedBalance.IsZero(), "no double release")
}

func TestCancelSellReleasesHoldingReservation(t *testing.T) {
	env := newEngineEnv(t)
	seedBond(t, env.store, testBond)
	seedUser(t, env.store, "alice", "100000")
	grantHolding(t, env.store, "alice", testBond, 10, "100")

	resp := placeLimit(t, env, "alice", models.SideSell, 6, "101")

	holding, err := env.store.GetHolding(context.Background(), "alice", testBond)
	require.NoError(t, err)
	assert.Equal(t, 6, holding.ReservedQuantity)

	_, err = env.svc.CancelOrder(context.Background(), resp.Order.ID, "alice")
	require.NoError(t, err)

	holding, err = env.store.GetHolding(context.Background(), "alice", testBond)
	require.NoError(t, err)
	assert.Equal(t, 0, holding.ReservedQuantity)
	assert.Equal(t, 10, holding.Quantity)
}

func TestCancelMarketOrderRejected(t *testing.T) {
	env := newEngineEnv(t)
	seedBond(t, env.store, testBond)
	seedUser(t, env.store, "alice", "100000")
	seedUser(t, env.store, "bob", "100000")
	grantHolding(t, env.store, "alice", testBond, 8, "100")

	placeLimit(t, env, "bob", models.SideBuy, 5, "100")

	resp, err := env.svc.PlaceOrder(context.Background(), &models.PlaceOrderRequest{
		UserID:   "alice",
		BondID:   testBond,
		Side:     models.SideSell,
		Type:     models.TypeMarket,
		Quantity: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPartial, resp.Order.Status)
	assert.Equal(t, 5, resp.Order.FilledQuantity)

	// The terminal market order already released its residual reservation;
	// cancelling it must be rejected, not release a second time.
	_, err = env.svc.CancelOrder(context.Background(), resp.Order.ID, "alice")
	assert.ErrorIs(t, err, models.ErrOrderNotCancellable)

	holding, err := env.store.GetHolding(context.Background(), "alice", testBond)
	require.NoError(t, err)
	assert.Equal(t, 3, holding.Quantity)
	assert.Equal(t, 0, holding.ReservedQuantity)
	assert.Equal(t, 3, holding.AvailableQuantity())

	// The remaining position cannot be oversold.
	_, err = env.svc.PlaceOrder(context.Background(), &models.PlaceOrderRequest{
		UserID:   "alice",
		BondID:   testBond,
		Side:     models.SideSell,
		Type:     models.TypeLimit,
		Quantity: 6,
		Price:    decPtr("100"),
	})
	assert.ErrorIs(t, err, models.ErrInsufficientHoldings)
}

func TestCancelRejectsNonOwnerAndFilled(t *testing.T) {
	env := newEngineEnv(t)
	seedBond(t, env.store, testBond)
	seedUser(t, env.store, "alice", "100000")
	seedUser(t, env.store, "bob", "100000")
	grantHolding(t, env.store, "bob", testBond, 50, "95")

	resp := placeLimit(t, env, "alice", models.SideBuy, 10, "100")

	_, err := env.svc.CancelOrder(context.Background(), resp.Order.ID, "bob")
	assert.ErrorIs(t, err, models.ErrNotOrderOwner)

	placeLimit(t, env, "bob", models.SideSell, 10, "100")

	_, err = env.svc.CancelOrder(context.Background(), resp.Order.ID, "alice")
	assert.ErrorIs(t, err, models.ErrOrderNotCancellable)
}

func TestBookSurvivesRestart(t *testing.T) {
	env := newEngineEnv(t)
	seedBond(t, env.store, testBond)
	seedUser(t, env.store, "alice", "100000")

	placeLimit(t, env, "alice", models.SideBuy, 10, "100")

	// A fresh engine over the same store rebuilds the book from open orders.
	restarted := newEngineEnvWithStore(t, env.store)
	book, err := restarted.svc.GetOrderBook(context.Background(), testBond)
	require.NoError(t, err)
	require.Len(t, book.Bids, 1)
	assert.Equal(t, 10, book.Bids[0].Quantity)
}

// failingStore passes transactions through until the allowance runs out,
// then fails every one after.
type failingStore struct {
	service.Store
	allow int
}

func (f *failingStore) WithinTx(ctx context.Context, fn func(tx service.TxStore) error) error {
	if f.allow <= 0 {
		return errors.New("storage offline")
	}
	f.allow--
	return f.Store.WithinTx(ctx, fn)
}

func TestSettlementFailureLeavesNoPartialState(t *testing.T) {
	mem := memory.NewStore()
	failing := &failingStore{Store: mem, allow: 100}
	env := newEngineEnvWithStore(t, failing)
	seedBond(t, mem, testBond)
	seedUser(t, mem, "alice", "100000")
	seedUser(t, mem, "bob", "100000")
	grantHolding(t, mem, "bob", testBond, 50, "95")

	placeLimit(t, env, "bob", models.SideSell, 10, "100")

	// Let the incoming order persist, then fail its settlement.
	failing.allow = 1
	_, err := env.svc.PlaceOrder(context.Background(), &models.PlaceOrderRequest{
		UserID:   "alice",
		BondID:   testBond,
		Side:     models.SideBuy,
		Type:     models.TypeLimit,
		Quantity: 10,
		Price:    decPtr("100"),
	})
	require.Error(t, err)

	// No trade settled: no cash moved, no holdings changed. The incoming
	// order itself was accepted, so its entry reservation stands and the
	// order remains cancellable.
	trades, terr := mem.ListRecentTrades(context.Background(), testBond, 10)
	require.NoError(t, terr)
	assert.Empty(t, trades)

	buyer, aerr := mem.GetAccount(context.Background(), "alice")
	require.NoError(t, aerr)
	assert.True(t, buyer.CashBalance.Equal(dec("100000")))
	assert.True(t, buyer.ReservedBalance.Equal(dec("1000")))

	holding, herr := mem.GetHolding(context.Background(), "alice", testBond)
	require.NoError(t, herr)
	assert.Nil(t, holding)

	seller, serr := mem.GetHolding(context.Background(), "bob", testBond)
	require.NoError(t, serr)
	assert.Equal(t, 50, seller.Quantity)
	assert.Equal(t, 10, seller.ReservedQuantity)

	sellerAccount, sa := mem.GetAccount(context.Background(), "bob")
	require.NoError(t, sa)
	assert.True(t, sellerAccount.CashBalance.Equal(dec("100000")))
}
