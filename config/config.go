package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	PostgresHost     string `env:"POSTGRES_HOST"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"bondli"`
	MaxDBAttempts    int    `env:"MAX_DB_ATTEMPTS" envDefault:"10"`

	// KafkaBrokers empty means market events go to the log publisher.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"bondli.market-events"`

	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5s"`

	// InitialCashBalance is credited to newly created demo accounts.
	InitialCashBalance string `env:"INITIAL_CASH_BALANCE" envDefault:"1000000"`
}

// Load reads .env when present, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load(".env")
	var cfg Config
	return cfg, env.Parse(&cfg)
}

// UsePostgres reports whether a database host is configured; without one
// the service runs on the in-memory store.
func (c Config) UsePostgres() bool {
	return c.PostgresHost != ""
}
