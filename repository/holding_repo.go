package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/models"
)

type HoldingRepository struct{}

const holdingColumns = `user_id, bond_id, quantity, reserved_quantity, average_price, total_cost, created_at, updated_at`

// GetHolding fetches one position; (nil, nil) when the user has never held
// the bond.
func (r *HoldingRepository) GetHolding(ctx context.Context, q dbtx, userID, bondID string) (*models.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = $1 AND bond_id = $2`
	h, err := scanHolding(q.QueryRowContext(ctx, query, userID, bondID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get holding %s/%s: %w", userID, bondID, err)
	}
	return h, nil
}

// GetUserHoldings lists a user's positions.
func (r *HoldingRepository) GetUserHoldings(ctx context.Context, q dbtx, userID string) ([]models.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = $1 AND quantity > 0 ORDER BY bond_id`
	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, *h)
	}
	return holdings, rows.Err()
}

// ApplyFill moves a position by one trade's quantity. Buys add fractions
// at the execution price and recompute the cost-weighted average; sells
// remove fractions at the stored average cost and release the sell
// reservation taken at order entry.
func (r *HoldingRepository) ApplyFill(ctx context.Context, q dbtx, userID, bondID string, qtyDelta int, price decimal.Decimal) error {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = $1 AND bond_id = $2 FOR UPDATE`
	h, err := scanHolding(q.QueryRowContext(ctx, query, userID, bondID))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lock holding %s/%s: %w", userID, bondID, err)
	}

	if h == nil {
		if qtyDelta < 0 {
			return models.ErrInsufficientHoldings
		}
		cost := price.Mul(decimal.NewFromInt(int64(qtyDelta)))
		insert := `
			INSERT INTO holdings (user_id, bond_id, quantity, reserved_quantity, average_price, total_cost)
			VALUES ($1, $2, $3, 0, $4, $5)`
		_, err := q.ExecContext(ctx, insert, userID, bondID, qtyDelta, price, cost)
		return err
	}

	newQty := h.Quantity + qtyDelta
	if newQty < 0 {
		return models.ErrInsufficientHoldings
	}

	avg := h.AveragePrice
	var cost decimal.Decimal
	reserved := h.ReservedQuantity
	if qtyDelta > 0 {
		cost = h.TotalCost.Add(price.Mul(decimal.NewFromInt(int64(qtyDelta))))
		if newQty > 0 {
			avg = cost.DivRound(decimal.NewFromInt(int64(newQty)), 4)
		}
	} else {
		// Sells carry fractions out at average cost; the average itself is
		// unchanged.
		cost = avg.Mul(decimal.NewFromInt(int64(newQty)))
		reserved += qtyDelta
		if reserved < 0 {
			reserved = 0
		}
	}

	update := `
		UPDATE holdings
		SET quantity = $1, reserved_quantity = $2, average_price = $3, total_cost = $4, updated_at = now()
		WHERE user_id = $5 AND bond_id = $6`
	_, err = q.ExecContext(ctx, update, newQty, reserved, avg, cost, userID, bondID)
	return err
}

// AdjustReservation moves the reserved fraction count backing open sell
// orders.
func (r *HoldingRepository) AdjustReservation(ctx context.Context, q dbtx, userID, bondID string, delta int) error {
	query := `
		UPDATE holdings
		SET reserved_quantity = reserved_quantity + $1, updated_at = now()
		WHERE user_id = $2 AND bond_id = $3`
	res, err := q.ExecContext(ctx, query, delta, userID, bondID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrInsufficientHoldings
	}
	return nil
}

func scanHolding(row rowScanner) (*models.Holding, error) {
	var h models.Holding
	err := row.Scan(
		&h.UserID, &h.BondID, &h.Quantity, &h.ReservedQuantity,
		&h.AveragePrice, &h.TotalCost, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}
