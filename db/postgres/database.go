package postgres

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/config"
)

type Db struct {
	PostgresClient *sql.DB
}

// ConnectDB establishes a connection to the PostgreSQL database, retrying
// while the database comes up.
func ConnectDB(cfg config.Config, logger *zap.Logger) (*Db, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.PostgresHost,
		cfg.PostgresPort,
		cfg.PostgresUser,
		cfg.PostgresPassword,
		cfg.PostgresDB,
	)

	maxRetries := cfg.MaxDBAttempts
	if maxRetries <= 0 {
		maxRetries = 10
	}

	var db *sql.DB
	var err error
	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", connStr)
		if err != nil {
			logger.Warn("open database connection", zap.Int("attempt", i+1), zap.Error(err))
			time.Sleep(2 * time.Second)
			continue
		}

		if err = db.Ping(); err == nil {
			logger.Info("connected to postgres", zap.String("host", cfg.PostgresHost), zap.String("db", cfg.PostgresDB))
			return &Db{PostgresClient: db}, nil
		}

		logger.Warn("ping postgres", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(2 * time.Second)
	}

	return nil, fmt.Errorf("could not connect to postgres after %d attempts: %w", maxRetries, err)
}

// Stop closes the PostgreSQL connection.
func (db *Db) Stop() {
	if db.PostgresClient != nil {
		_ = db.PostgresClient.Close()
	}
}

// InitSchema applies db/postgres/schema.sql. Intended for development and
// tests; production schemas are managed externally.
func (db *Db) InitSchema() error {
	schemaPath := filepath.Join("db", "postgres", "schema.sql")
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("read schema file: %w", err)
	}

	if _, err = db.PostgresClient.Exec(string(content)); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}
