package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kislikjeka/fintrack/internal/platform/fx"
	"github.com/kislikjeka/fintrack/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	ratesKey     = "fx:rates"
	updatedAtKey = "fx:updated_at"
)

// RateStore persists the exchange rate table as a hash of code -> rate
type RateStore struct {
	client *redis.Client
	logger *logger.Logger
}

// NewRateStore creates a new rate store
func NewRateStore(client *redis.Client, log *logger.Logger) *RateStore {
	if log == nil {
		log = logger.Discard()
	}
	return &RateStore{client: client, logger: log.WithField("component", "rate_store")}
}

// Save replaces the stored table
func (s *RateStore) Save(ctx context.Context, t fx.Table) error {
	fields := make(map[string]any, len(t.Rates))
	for code, rate := range t.Rates {
		fields[code] = rate.String()
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, ratesKey)
		pipe.HSet(ctx, ratesKey, fields)
		pipe.Set(ctx, updatedAtKey, t.UpdatedAt.UTC().Format(time.RFC3339), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save rates: %w", err)
	}
	return nil
}

// Load returns the stored table, or nil when nothing has been saved
func (s *RateStore) Load(ctx context.Context) (*fx.Table, error) {
	raw, err := s.client.HGetAll(ctx, ratesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load rates: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	t := &fx.Table{Base: fx.BaseCurrency, Rates: make(map[string]decimal.Decimal, len(raw))}
	for code, v := range raw {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			s.logger.Warn("skipping unreadable rate", "currency", code, "value", v)
			continue
		}
		t.Rates[code] = rate
	}

	updated, err := s.client.Get(ctx, updatedAtKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return nil, fmt.Errorf("failed to load rates timestamp: %w", err)
	default:
		if ts, perr := time.Parse(time.RFC3339, updated); perr == nil {
			t.UpdatedAt = ts
		}
	}
	return t, nil
}

// Ensure RateStore implements fx.RateStore
var _ fx.RateStore = (*RateStore)(nil)
