package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/cache"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/models"
)

const (
	recentTradesLimit = 50
	orderBookDepth    = 20

	cacheKeyBonds         = "bonds"
	cacheKeyBookPrefix    = "orderbook:"
	defaultInitialBalance = "1000000"
)

// OrderService is the order-entry and read surface over the matching
// engine and the store.
type OrderService struct {
	Store       Store
	Engine      *MatchingEngine
	Cache       *cache.Cache
	InitialCash decimal.Decimal
}

func NewOrderService(store Store, engine *MatchingEngine, readCache *cache.Cache) *OrderService {
	initial, _ := decimal.NewFromString(defaultInitialBalance)
	return &OrderService{
		Store:       store,
		Engine:      engine,
		Cache:       readCache,
		InitialCash: initial,
	}
}

// PlaceOrder submits one order through the engine and returns its final
// state plus any trades executed during the pass.
func (s *OrderService) PlaceOrder(ctx context.Context, req *models.PlaceOrderRequest) (*models.PlaceOrderResponse, error) {
	order, trades, err := s.Engine.SubmitOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	return &models.PlaceOrderResponse{Order: order, Trades: trades}, nil
}

func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID string) (*models.CancelOrderResponse, error) {
	order, err := s.Engine.CancelOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	return &models.CancelOrderResponse{
		Order:   order,
		Message: fmt.Sprintf("order %s cancelled", orderID),
	}, nil
}

func (s *OrderService) GetOrderStatus(ctx context.Context, orderID string) (*models.OrderStatusResponse, error) {
	order, err := s.Store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &models.OrderStatusResponse{
		OrderID:           order.ID,
		Status:            order.Status,
		ExecutedQuantity:  order.FilledQuantity,
		RemainingQuantity: order.RemainingQuantity(),
	}, nil
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.Store.GetUserOrders(ctx, userID)
}

// GetOrderBook returns the aggregated book snapshot, served from the TTL
// cache when fresh.
func (s *OrderService) GetOrderBook(ctx context.Context, bondID string) (*models.OrderBookResponse, error) {
	key := cacheKeyBookPrefix + bondID
	if s.Cache != nil {
		if v, ok := s.Cache.Get(key); ok {
			if resp, ok := v.(*models.OrderBookResponse); ok {
				return resp, nil
			}
		}
	}
	resp, err := s.Engine.Snapshot(ctx, bondID, orderBookDepth)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.Set(key, resp)
	}
	return resp, nil
}

func (s *OrderService) ListTrades(ctx context.Context, bondID string) ([]models.Trade, error) {
	return s.Store.ListRecentTrades(ctx, bondID, recentTradesLimit)
}

func (s *OrderService) ListUserTrades(ctx context.Context, userID string) ([]models.Trade, error) {
	return s.Store.ListUserTrades(ctx, userID)
}

func (s *OrderService) ListBonds(ctx context.Context) ([]models.Bond, error) {
	if s.Cache != nil {
		if v, ok := s.Cache.Get(cacheKeyBonds); ok {
			if bonds, ok := v.([]models.Bond); ok {
				return bonds, nil
			}
		}
	}
	bonds, err := s.Store.ListBonds(ctx)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.Set(cacheKeyBonds, bonds)
	}
	return bonds, nil
}

func (s *OrderService) GetBond(ctx context.Context, bondID string) (*models.Bond, error) {
	return s.Store.GetBond(ctx, bondID)
}

func (s *OrderService) CreateBond(ctx context.Context, req *models.CreateBondRequest) (*models.Bond, error) {
	now := time.Now().UTC()
	bond := &models.Bond{
		ID:           uuid.NewString(),
		ISIN:         req.ISIN,
		Issuer:       req.Issuer,
		Name:         req.Name,
		CouponRate:   req.CouponRate,
		FaceValue:    req.FaceValue,
		MaturityDate: req.MaturityDate,
		Rating:       req.Rating,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.CurrentPrice != nil {
		bond.CurrentPrice = *req.CurrentPrice
		bond.CurrentYield = ConstantCouponYield(bond, *req.CurrentPrice)
	}
	if req.MinInvestment != nil {
		bond.MinInvestment = *req.MinInvestment
	} else {
		bond.MinInvestment = decimal.NewFromInt(10000)
	}
	if err := s.Store.CreateBond(ctx, bond); err != nil {
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.Del(cacheKeyBonds)
	}
	return bond, nil
}

// CreateUser bootstraps a trader with a funded demo cash account.
func (s *OrderService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	user := &models.User{
		ID:        uuid.NewString(),
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.CreateUser(ctx, user, s.InitialCash); err != nil {
		return nil, err
	}
	return user, nil
}

// GetPortfolio returns the user's holdings marked at each bond's current
// price, together with the cash account.
func (s *OrderService) GetPortfolio(ctx context.Context, userID string) (*models.PortfolioResponse, error) {
	account, err := s.Store.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	holdings, err := s.Store.GetUserHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]models.HoldingView, 0, len(holdings))
	for _, h := range holdings {
		if h.Quantity == 0 {
			continue
		}
		view := models.HoldingView{Holding: h}
		if bond, err := s.Store.GetBond(ctx, h.BondID); err == nil {
			view.CurrentValue = bond.CurrentPrice.Mul(decimal.NewFromInt(int64(h.Quantity)))
			view.UnrealizedPnL = view.CurrentValue.Sub(h.TotalCost)
		}
		views = append(views, view)
	}

	return &models.PortfolioResponse{Holdings: views, Account: account}, nil
}
