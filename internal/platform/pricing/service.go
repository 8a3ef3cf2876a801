package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/kislikjeka/fintrack/internal/platform/market"
	"github.com/kislikjeka/fintrack/internal/platform/quote"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

// Gateway fetches raw provider payloads
type Gateway interface {
	FetchCurrent(ctx context.Context, symbol string, t asset.Type, mkt string) (*market.Payload, error)
	FetchHistory(ctx context.Context, symbol string, t asset.Type, mkt string, req market.HistoryRequest) (*market.Payload, error)
	FetchBatch(ctx context.Context, reqs []market.Request) map[string]market.Result
}

// Outcome is the per-symbol result of a batch quote
type Outcome struct {
	Quote *quote.Quote
	Err   error
}

// Service turns gateway payloads into quotes. Quotes are never cached here:
// every call reaches a provider.
type Service struct {
	gateway    Gateway
	normalizer *quote.Normalizer
	logger     *logger.Logger
}

// NewService creates a new pricing service
func NewService(gateway Gateway, normalizer *quote.Normalizer, log *logger.Logger) *Service {
	if normalizer == nil {
		normalizer = quote.NewNormalizer()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		gateway:    gateway,
		normalizer: normalizer,
		logger:     log.WithComponent("pricing"),
	}
}

// Quote fetches and normalizes the current price of one symbol
func (s *Service) Quote(ctx context.Context, symbol string, t asset.Type, mkt string) (*quote.Quote, error) {
	p, err := s.gateway.FetchCurrent(ctx, symbol, t, mkt)
	if err != nil {
		return nil, err
	}
	return s.normalize(p)
}

// Quotes prices many symbols concurrently; failures stay per symbol
func (s *Service) Quotes(ctx context.Context, reqs []market.Request) map[string]Outcome {
	results := s.gateway.FetchBatch(ctx, reqs)

	out := make(map[string]Outcome, len(results))
	failed := 0
	for symbol, r := range results {
		if r.Err != nil {
			out[symbol] = Outcome{Err: r.Err}
			failed++
			continue
		}
		q, err := s.normalize(r.Payload)
		if err != nil {
			failed++
		}
		out[symbol] = Outcome{Quote: q, Err: err}
	}

	s.logger.Debug("batch priced", "requested", len(reqs), "failed", failed)
	return out
}

// History fetches and normalizes a price series. An empty interval takes the
// period's default.
func (s *Service) History(ctx context.Context, symbol string, t asset.Type, mkt string, req market.HistoryRequest) (*quote.Series, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	p, err := s.gateway.FetchHistory(ctx, symbol, t, mkt, req)
	if err != nil {
		return nil, err
	}
	series, err := s.normalizer.NormalizeSeries(p.Body, p.Type, p.Symbol)
	if err != nil {
		return nil, fmt.Errorf("%s history from %s: %w", p.Symbol, p.Source, err)
	}
	series.Source = p.Source
	series.Synthetic = p.Synthetic
	series.Interval = string(req.Interval)
	if mkt != "" && p.Type == asset.Crypto {
		series.Currency = currencyOf(mkt)
	}
	return series, nil
}

func (s *Service) normalize(p *market.Payload) (*quote.Quote, error) {
	q, err := s.normalizer.NormalizeMarket(p.Body, p.Type, p.Symbol, p.Market)
	if err != nil {
		s.logger.Warn("payload not understood", "symbol", p.Symbol, "provider", p.Source, "error", err)
		return nil, fmt.Errorf("%s from %s: %w", p.Symbol, p.Source, err)
	}
	q.Source = p.Source
	q.Synthetic = p.Synthetic
	q.FetchedAt = p.FetchedAt

	s.logger.Debug("quote fetched", "symbol", q.Symbol, "provider", q.Source, "synthetic", q.Synthetic)
	return q, nil
}

func currencyOf(mkt string) string {
	return strings.ToUpper(strings.TrimSpace(mkt))
}
