package publisher

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/models"
)

type EventType string

const (
	EventTradeExecuted    EventType = "TRADE_EXECUTED"
	EventOrderBookChanged EventType = "ORDER_BOOK_CHANGED"
)

// Event is the notification handed to downstream fan-out after a match
// cycle. Publishing is observability, not correctness: a failed publish is
// logged and never rolls back or blocks a trade.
type Event struct {
	Type      EventType `json:"type"`
	BondID    string    `json:"bond_id"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

type TradePayload struct {
	TradeID     string          `json:"trade_id"`
	BuyOrderID  string          `json:"buy_order_id"`
	SellOrderID string          `json:"sell_order_id"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ExecutedAt  time.Time       `json:"executed_at"`
}

type BookPayload struct {
	Bids []models.OrderBookEntry `json:"bids"`
	Asks []models.OrderBookEntry `json:"asks"`
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to the log. Used when no broker is
// configured.
type LogPublisher struct {
	Logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{Logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.Logger.Info("market_event",
		zap.String("type", string(event.Type)),
		zap.String("bond_id", event.BondID),
		zap.Any("payload", event.Payload),
	)
	return nil
}
