package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/models"
)

type OrderRepository struct{}

const orderColumns = `id, user_id, bond_id, side, type, quantity, price, filled_quantity, status, total_value, created_at, updated_at`

// CreateOrder inserts a new order.
func (r *OrderRepository) CreateOrder(ctx context.Context, q dbtx, order *models.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	var price decimal.NullDecimal
	if order.Price != nil {
		price = decimal.NewNullDecimal(*order.Price)
	}
	_, err := q.ExecContext(ctx, query,
		order.ID, order.UserID, order.BondID, order.Side, order.Type,
		order.Quantity, price, order.FilledQuantity, order.Status,
		order.TotalValue, order.CreatedAt, order.UpdatedAt,
	)
	return err
}

// UpdateOrderFill records fill progress and the derived status.
func (r *OrderRepository) UpdateOrderFill(ctx context.Context, q dbtx, orderID string, filled int, status models.OrderStatus) error {
	query := `
		UPDATE orders
		SET filled_quantity = $1, status = $2, updated_at = now()
		WHERE id = $3`
	res, err := q.ExecContext(ctx, query, filled, status, orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}

// FetchOpenOrders returns pending and partial orders for one bond side in
// price-time priority: bids best price (highest) first, asks best price
// (lowest) first, FIFO within a price level.
func (r *OrderRepository) FetchOpenOrders(ctx context.Context, q dbtx, bondID string, side models.OrderSide) ([]models.Order, error) {
	direction := "ASC"
	if side == models.SideBuy {
		direction = "DESC"
	}
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE bond_id = $1 AND side = $2 AND status IN ('pending', 'partial')
		ORDER BY price ` + direction + `, created_at ASC`
	rows, err := q.QueryContext(ctx, query, bondID, side)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

// GetOrderByID fetches one order.
func (r *OrderRepository) GetOrderByID(ctx context.Context, q dbtx, orderID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(q.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	return order, nil
}

// GetUserOrders lists a user's orders, newest first.
func (r *OrderRepository) GetUserOrders(ctx context.Context, q dbtx, userID string) ([]models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	var price decimal.NullDecimal
	err := row.Scan(
		&o.ID, &o.UserID, &o.BondID, &o.Side, &o.Type, &o.Quantity,
		&price, &o.FilledQuantity, &o.Status, &o.TotalValue,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		o.Price = &price.Decimal
	}
	return &o, nil
}

func scanOrders(rows *sql.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}
