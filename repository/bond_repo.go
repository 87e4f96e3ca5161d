package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/models"
)

type BondRepository struct{}

const bondColumns = `id, isin, issuer, bond_name, coupon_rate, face_value, maturity_date, rating, current_price, current_yield, min_investment, is_active, created_at, updated_at`

// CreateBond lists a new bond.
func (r *BondRepository) CreateBond(ctx context.Context, q dbtx, bond *models.Bond) error {
	query := `
		INSERT INTO bonds (` + bondColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := q.ExecContext(ctx, query,
		bond.ID, bond.ISIN, bond.Issuer, bond.Name, bond.CouponRate,
		bond.FaceValue, bond.MaturityDate, bond.Rating, bond.CurrentPrice,
		bond.CurrentYield, bond.MinInvestment, bond.IsActive,
		bond.CreatedAt, bond.UpdatedAt,
	)
	return err
}

// GetBond fetches one bond.
func (r *BondRepository) GetBond(ctx context.Context, q dbtx, bondID string) (*models.Bond, error) {
	query := `SELECT ` + bondColumns + ` FROM bonds WHERE id = $1`
	var b models.Bond
	err := q.QueryRowContext(ctx, query, bondID).Scan(
		&b.ID, &b.ISIN, &b.Issuer, &b.Name, &b.CouponRate, &b.FaceValue,
		&b.MaturityDate, &b.Rating, &b.CurrentPrice, &b.CurrentYield,
		&b.MinInvestment, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrBondNotFound
		}
		return nil, fmt.Errorf("get bond %s: %w", bondID, err)
	}
	return &b, nil
}

// ListBonds returns all active bonds ordered by issuer.
func (r *BondRepository) ListBonds(ctx context.Context, q dbtx) ([]models.Bond, error) {
	query := `SELECT ` + bondColumns + ` FROM bonds WHERE is_active = TRUE ORDER BY issuer, bond_name`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bonds []models.Bond
	for rows.Next() {
		var b models.Bond
		if err := rows.Scan(
			&b.ID, &b.ISIN, &b.Issuer, &b.Name, &b.CouponRate, &b.FaceValue,
			&b.MaturityDate, &b.Rating, &b.CurrentPrice, &b.CurrentYield,
			&b.MinInvestment, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		bonds = append(bonds, b)
	}
	return bonds, rows.Err()
}

// UpdateBondPrice republishes price and yield after a trade.
func (r *BondRepository) UpdateBondPrice(ctx context.Context, q dbtx, bondID string, price, yieldValue decimal.Decimal) error {
	query := `
		UPDATE bonds
		SET current_price = $1, current_yield = $2, updated_at = now()
		WHERE id = $3`
	res, err := q.ExecContext(ctx, query, price, yieldValue, bondID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrBondNotFound
	}
	return nil
}
