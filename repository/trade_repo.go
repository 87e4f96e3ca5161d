package repository

import (
	"context"
	"database/sql"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/models"
)

type TradeRepository struct{}

const tradeColumns = `id, buy_order_id, sell_order_id, bond_id, quantity, price, total_value, buyer_id, seller_id, settlement_status, created_at, settled_at`

// InsertTrade saves one execution record.
func (r *TradeRepository) InsertTrade(ctx context.Context, q dbtx, trade *models.Trade) error {
	query := `
		INSERT INTO trades (` + tradeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := q.ExecContext(ctx, query,
		trade.ID, trade.BuyOrderID, trade.SellOrderID, trade.BondID,
		trade.Quantity, trade.Price, trade.TotalValue,
		trade.BuyerID, trade.SellerID, trade.SettlementStatus,
		trade.CreatedAt, trade.SettledAt,
	)
	return err
}

// ListRecentTrades fetches the latest trades, optionally for one bond.
func (r *TradeRepository) ListRecentTrades(ctx context.Context, q dbtx, bondID string, limit int) ([]models.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE ($1 = '' OR bond_id = $1)
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := q.QueryContext(ctx, query, bondID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrades(rows)
}

// ListUserTrades fetches trades where the user was buyer or seller.
func (r *TradeRepository) ListUserTrades(ctx context.Context, q dbtx, userID string) ([]models.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE buyer_id = $1 OR seller_id = $1
		ORDER BY created_at DESC`
	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrades(rows)
}

func scanTrades(rows *sql.Rows) ([]models.Trade, error) {
	var trades []models.Trade
	for rows.Next() {
		var t models.Trade
		var settledAt sql.NullTime
		if err := rows.Scan(
			&t.ID, &t.BuyOrderID, &t.SellOrderID, &t.BondID, &t.Quantity,
			&t.Price, &t.TotalValue, &t.BuyerID, &t.SellerID,
			&t.SettlementStatus, &t.CreatedAt, &settledAt,
		); err != nil {
			return nil, err
		}
		if settledAt.Valid {
			t.SettledAt = &settledAt.Time
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
