package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/kislikjeka/fintrack/internal/platform/pricing"
	"github.com/kislikjeka/fintrack/internal/platform/quote"
	"github.com/kislikjeka/fintrack/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	// SnapshotTTL is how long a latest-known quote is kept
	SnapshotTTL = 24 * time.Hour

	// QuoteKeyPrefix is the prefix for snapshot keys
	QuoteKeyPrefix = "quote:latest:"
)

// QuoteStore keeps the latest known quote per symbol. It is a display aid:
// valuations never read it.
type QuoteStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewQuoteStore creates a new snapshot store
func NewQuoteStore(client *redis.Client, log *logger.Logger) *QuoteStore {
	return NewQuoteStoreWithTTL(client, SnapshotTTL, log)
}

// NewQuoteStoreWithTTL creates a new snapshot store with custom TTL
func NewQuoteStoreWithTTL(client *redis.Client, ttl time.Duration, log *logger.Logger) *QuoteStore {
	if log == nil {
		log = logger.Discard()
	}
	return &QuoteStore{
		client: client,
		ttl:    ttl,
		logger: log.WithField("component", "quote_store"),
	}
}

func quoteKey(symbol string) string {
	return QuoteKeyPrefix + asset.NormalizeSymbol(symbol)
}

// Save stores q as the latest snapshot of its symbol
func (s *QuoteStore) Save(ctx context.Context, q *quote.Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}
	if err := s.client.Set(ctx, quoteKey(q.Symbol), data, s.ttl).Err(); err != nil {
		s.logger.Error("snapshot error", "operation", "set", "symbol", q.Symbol, "error", err)
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Get retrieves the snapshot of a symbol; found is false when there is none
func (s *QuoteStore) Get(ctx context.Context, symbol string) (*quote.Quote, bool, error) {
	val, err := s.client.Get(ctx, quoteKey(symbol)).Result()
	if errors.Is(err, redis.Nil) {
		s.logger.Debug("snapshot miss", "symbol", symbol)
		return nil, false, nil
	}
	if err != nil {
		s.logger.Error("snapshot error", "operation", "get", "symbol", symbol, "error", err)
		return nil, false, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var q quote.Quote
	if err := json.Unmarshal([]byte(val), &q); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &q, true, nil
}

// GetMany retrieves snapshots for many symbols in one pipeline. Missing or
// unreadable snapshots are left out of the result.
func (s *QuoteStore) GetMany(ctx context.Context, symbols []string) (map[string]*quote.Quote, error) {
	result := make(map[string]*quote.Quote, len(symbols))
	if len(symbols) == 0 {
		return result, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(symbols))
	for i, sym := range symbols {
		cmds[i] = pipe.Get(ctx, quoteKey(sym))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get snapshots: %w", err)
	}

	for i, cmd := range cmds {
		val, err := cmd.Result()
		if err != nil {
			continue
		}
		var q quote.Quote
		if err := json.Unmarshal([]byte(val), &q); err != nil {
			s.logger.Warn("unreadable snapshot", "symbol", symbols[i], "error", err)
			continue
		}
		result[asset.NormalizeSymbol(symbols[i])] = &q
	}
	return result, nil
}

// Delete removes the snapshot of a symbol
func (s *QuoteStore) Delete(ctx context.Context, symbol string) error {
	return s.client.Del(ctx, quoteKey(symbol)).Err()
}

// Ensure QuoteStore can back the price refresher
var _ pricing.SnapshotStore = (*QuoteStore)(nil)
