package providers

import (
	"database/sql"
	"fmt"
)

// DBHelper carries the shared PostgreSQL client handed to the repository
// layer. Reads run on its pool directly; settlement writes go through
// transactions the store opens on it.
type DBHelper struct {
	PostgresClient *sql.DB
}

func NewDbProvider(postgresDBClient *sql.DB) (*DBHelper, error) {
	if postgresDBClient == nil {
		return nil, fmt.Errorf("postgres client is nil")
	}
	return &DBHelper{PostgresClient: postgresDBClient}, nil
}
