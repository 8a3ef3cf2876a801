package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fintrack")
	t.Setenv("ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 15*time.Minute, cfg.PriceRefreshInterval)
	assert.Equal(t, 24*time.Hour, cfg.FXRefreshInterval)
	assert.Equal(t, 8, cfg.PriceConcurrency)
	assert.Equal(t, "EUR", cfg.ReportingCurrency)
	assert.False(t, cfg.AuthEnabled())
}

func TestLoad_MissingEquityKeysIsNotAnError(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fintrack")
	t.Setenv("TWELVEDATA_API_KEY", "")
	t.Setenv("ALPHAVANTAGE_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.TwelveDataAPIKey)
	assert.Empty(t, cfg.AlphaVantageAPIKey)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoad_ParsesOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fintrack")
	t.Setenv("PROVIDER_TIMEOUT", "3")
	t.Setenv("PRICE_CONCURRENCY", "50")
	t.Setenv("PRICE_REFRESH_INTERVAL", "1m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("REPORTING_CURRENCY", "usd")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 10, cfg.PriceConcurrency, "concurrency is clamped to the pool bounds")
	assert.Equal(t, time.Minute, cfg.PriceRefreshInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "USD", cfg.ReportingCurrency)
}

func TestValidate_ProductionNeedsCoinGeckoKey(t *testing.T) {
	cfg := &Config{
		Env:               "production",
		DatabaseURL:       "postgres://x",
		ProviderTimeout:   time.Second,
		ReportingCurrency: "EUR",
	}
	assert.ErrorContains(t, cfg.Validate(), "COINGECKO_API_KEY")

	cfg.CoinGeckoAPIKey = "key"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ShortJWTSecret(t *testing.T) {
	cfg := &Config{
		DatabaseURL:       "postgres://x",
		JWTSecret:         "short",
		ProviderTimeout:   time.Second,
		ReportingCurrency: "EUR",
	}
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")
}
