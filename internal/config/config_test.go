package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "./data/tally.db", cfg.SQLitePath)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.Equal(t, "development", cfg.Env)
}

func TestLoad_PostgresBackend(t *testing.T) {
	t.Setenv("TALLY_BACKEND", BackendPostgres)
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/tally")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.Equal(t, "postgres://localhost:5432/tally", cfg.DatabaseURL)
}

func TestLoad_PostgresRequiresURL(t *testing.T) {
	t.Setenv("TALLY_BACKEND", BackendPostgres)
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("TALLY_BACKEND", "oracle")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_CurrencyNormalized(t *testing.T) {
	t.Setenv("TALLY_CURRENCY", "eur")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "EUR", cfg.DefaultCurrency)
}

func TestLoad_BadCurrency(t *testing.T) {
	t.Setenv("TALLY_CURRENCY", "EURO")

	_, err := Load()
	assert.Error(t, err)
}
