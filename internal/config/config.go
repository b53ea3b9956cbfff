package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the application.
type Config struct {
	// Storage
	Backend     string
	SQLitePath  string
	DatabaseURL string

	// Ledger
	DefaultCurrency string

	// Runtime
	Env string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Backend:         getEnv("TALLY_BACKEND", BackendSQLite),
		SQLitePath:      getEnv("TALLY_DB_PATH", "./data/tally.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		DefaultCurrency: strings.ToUpper(getEnv("TALLY_CURRENCY", "USD")),
		Env:             getEnv("ENV", "development"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("TALLY_DB_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown backend %q: must be %q or %q", c.Backend, BackendSQLite, BackendPostgres)
	}
	if len(c.DefaultCurrency) != 3 {
		return fmt.Errorf("invalid TALLY_CURRENCY %q: must be a 3-letter code", c.DefaultCurrency)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
