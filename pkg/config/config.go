package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port           string
	Env            string
	AllowedOrigins []string

	// Database configuration
	DatabaseURL string

	// Redis configuration
	RedisURL      string
	RedisPassword string

	// Operator auth (enabled only when both are set)
	JWTSecret         string
	OwnerPasswordHash string

	// Market data providers
	CoinGeckoAPIKey     string
	CoinGeckoBaseURL    string
	TwelveDataAPIKey    string
	TwelveDataBaseURL   string
	AlphaVantageAPIKey  string
	AlphaVantageBaseURL string
	ProviderTimeout     time.Duration
	PriceConcurrency    int

	// Optional YAML file of extra catalog listings
	AssetCatalogPath string

	// Background jobs
	PriceRefreshInterval time.Duration
	FXRefreshInterval    time.Duration

	// Finance
	ReportingCurrency string
}

const (
	minConcurrency = 5
	maxConcurrency = 10
)

// Load loads configuration from the environment, reading a .env file first when present
func Load() (*Config, error) {
	cfg := read()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadMarket loads configuration for tools that only talk to price providers.
// The database settings are not required.
func LoadMarket() (*Config, error) {
	cfg := read()
	if cfg.ProviderTimeout <= 0 {
		return nil, fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	return cfg, nil
}

func read() *Config {
	// a missing .env is the normal case in containers
	_ = godotenv.Load()

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  getEnv("ENV", "development"),
		AllowedOrigins:       getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:8081"}),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisURL:             getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		OwnerPasswordHash:    getEnv("OWNER_PASSWORD_HASH", ""),
		CoinGeckoAPIKey:      getEnv("COINGECKO_API_KEY", ""),
		CoinGeckoBaseURL:     getEnv("COINGECKO_BASE_URL", ""),
		TwelveDataAPIKey:     getEnv("TWELVEDATA_API_KEY", ""),
		TwelveDataBaseURL:    getEnv("TWELVEDATA_BASE_URL", ""),
		AlphaVantageAPIKey:   getEnv("ALPHAVANTAGE_API_KEY", ""),
		AlphaVantageBaseURL:  getEnv("ALPHAVANTAGE_BASE_URL", ""),
		ProviderTimeout:      getEnvAsDuration("PROVIDER_TIMEOUT", 5*time.Second),
		PriceConcurrency:     clamp(getEnvAsInt("PRICE_CONCURRENCY", 8), minConcurrency, maxConcurrency),
		AssetCatalogPath:     getEnv("ASSET_CATALOG_PATH", ""),
		PriceRefreshInterval: getEnvAsDuration("PRICE_REFRESH_INTERVAL", 15*time.Minute),
		FXRefreshInterval:    getEnvAsDuration("FX_REFRESH_INTERVAL", 24*time.Hour),
		ReportingCurrency:    strings.ToUpper(getEnv("REPORTING_CURRENCY", "EUR")),
	}
}

// Validate ensures all required configuration is present
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	// CoinGecko API key is required in production but optional in development
	if c.CoinGeckoAPIKey == "" && c.IsProduction() {
		return fmt.Errorf("COINGECKO_API_KEY is required in production")
	}

	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}

	if len(c.ReportingCurrency) != 3 {
		return fmt.Errorf("REPORTING_CURRENCY must be a 3-letter ISO code")
	}

	return nil
}

// AuthEnabled reports whether operator authentication is configured
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != "" && c.OwnerPasswordHash != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("15m") or plain seconds ("900")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
