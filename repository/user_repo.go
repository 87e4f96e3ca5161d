package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/models"
)

type UserRepository struct{}

// CreateUser inserts a new trader.
func (r *UserRepository) CreateUser(ctx context.Context, q dbtx, user *models.User) error {
	query := `INSERT INTO users (id, email, first_name, last_name, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := q.ExecContext(ctx, query, user.ID, user.Email, user.FirstName, user.LastName, user.CreatedAt)
	return err
}

// GetUser fetches one trader.
func (r *UserRepository) GetUser(ctx context.Context, q dbtx, userID string) (*models.User, error) {
	query := `SELECT id, email, first_name, last_name, created_at FROM users WHERE id = $1`
	var u models.User
	err := q.QueryRowContext(ctx, query, userID).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	return &u, nil
}
