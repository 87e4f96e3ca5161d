package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/models"
)

type AccountRepository struct{}

// GetAccount fetches a user's cash account.
func (r *AccountRepository) GetAccount(ctx context.Context, q dbtx, userID string) (*models.Account, error) {
	query := `
		SELECT user_id, cash_balance, reserved_balance, created_at, updated_at
		FROM accounts WHERE user_id = $1`
	var a models.Account
	err := q.QueryRowContext(ctx, query, userID).Scan(
		&a.UserID, &a.CashBalance, &a.ReservedBalance, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("get account %s: %w", userID, err)
	}
	return &a, nil
}

// CreateAccount opens a funded cash account for a new user.
func (r *AccountRepository) CreateAccount(ctx context.Context, q dbtx, userID string, initialCash decimal.Decimal) error {
	query := `INSERT INTO accounts (user_id, cash_balance, reserved_balance) VALUES ($1, $2, 0)`
	_, err := q.ExecContext(ctx, query, userID, initialCash)
	return err
}

// AdjustBalance applies cash and reservation deltas as atomic increments,
// which keeps a shared account consistent across concurrent settlements
// for different bonds.
func (r *AccountRepository) AdjustBalance(ctx context.Context, q dbtx, userID string, cashDelta, reservedDelta decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET cash_balance = cash_balance + $1, reserved_balance = reserved_balance + $2, updated_at = now()
		WHERE user_id = $3`
	res, err := q.ExecContext(ctx, query, cashDelta, reservedDelta, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrUserNotFound
	}
	return nil
}
