package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

const (
	DefaultTimeout     = 5 * time.Second
	DefaultConcurrency = 8
)

// Config holds gateway tuning
type Config struct {
	Timeout         time.Duration
	Concurrency     int
	BreakerFailures int
	BreakerCooldown time.Duration
	Logger          *logger.Logger
}

type hop struct {
	provider Provider
	breaker  *CircuitBreaker
}

// Gateway routes price requests to providers by asset class. Crypto goes to a
// single provider. Equity walks the provider chain and ends at the synthetic
// generator.
type Gateway struct {
	crypto      Provider
	equity      []hop
	synthetic   *Synthetic
	timeout     time.Duration
	concurrency int
	now         func() time.Time
	logger      *logger.Logger
}

// NewGateway creates a gateway. Nil providers are skipped, so a provider
// without credentials can be passed as nil.
func NewGateway(crypto Provider, equity []Provider, config *Config) *Gateway {
	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	g := &Gateway{
		crypto:      crypto,
		synthetic:   NewSynthetic(),
		timeout:     cfg.Timeout,
		concurrency: cfg.Concurrency,
		now:         time.Now,
		logger:      log.WithComponent("market_gateway"),
	}
	for _, p := range equity {
		if p == nil {
			continue
		}
		g.equity = append(g.equity, hop{
			provider: p,
			breaker:  NewCircuitBreaker(cfg.BreakerFailures, cfg.BreakerCooldown),
		})
	}
	return g
}

// EquityChain returns the names of the configured equity providers in order
func (g *Gateway) EquityChain() []string {
	names := make([]string, 0, len(g.equity)+1)
	for _, h := range g.equity {
		names = append(names, h.provider.Name())
	}
	return append(names, g.synthetic.Name())
}

type fetchFunc func(ctx context.Context, p Provider) ([]byte, error)

// FetchCurrent returns the raw current-price payload for symbol
func (g *Gateway) FetchCurrent(ctx context.Context, symbol string, t asset.Type, market string) (*Payload, error) {
	return g.fetch(ctx, symbol, t, market, func(ctx context.Context, p Provider) ([]byte, error) {
		return p.Current(ctx, symbol, market)
	})
}

// FetchHistory returns the raw price-history payload for symbol
func (g *Gateway) FetchHistory(ctx context.Context, symbol string, t asset.Type, market string, req HistoryRequest) (*Payload, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return g.fetch(ctx, symbol, t, market, func(ctx context.Context, p Provider) ([]byte, error) {
		return p.History(ctx, symbol, market, req)
	})
}

func (g *Gateway) fetch(ctx context.Context, symbol string, t asset.Type, market string, call fetchFunc) (*Payload, error) {
	symbol = asset.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, ErrMissingSymbol
	}

	return asset.Match(t,
		func() (*Payload, error) { return g.fetchCrypto(ctx, symbol, market, call) },
		func() (*Payload, error) { return g.fetchEquity(ctx, symbol, market, call) },
	)
}

func (g *Gateway) fetchCrypto(ctx context.Context, symbol, market string, call fetchFunc) (*Payload, error) {
	if g.crypto == nil {
		return nil, ErrNoProvider
	}
	body, err := g.attempt(ctx, g.crypto, call)
	if err != nil {
		g.logger.Warn("crypto provider failed", "provider", g.crypto.Name(), "symbol", symbol, "error", err)
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}
	return g.payload(symbol, asset.Crypto, market, g.crypto.Name(), body), nil
}

func (g *Gateway) fetchEquity(ctx context.Context, symbol, market string, call fetchFunc) (*Payload, error) {
	for _, h := range g.equity {
		name := h.provider.Name()
		if !h.breaker.CanAttempt() {
			g.logger.Debug("skipping provider with open circuit", "provider", name, "symbol", symbol)
			continue
		}

		body, err := g.attempt(ctx, h.provider, call)
		if err == nil {
			h.breaker.RecordSuccess()
			return g.payload(symbol, asset.Stock, market, name, body), nil
		}
		h.breaker.RecordFailure()
		g.logger.Warn("equity provider failed, trying next",
			"provider", name, "symbol", symbol, "circuit", h.breaker.State().String(), "error", err)

		// the caller gave up; don't hand out a made-up price
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", symbol, ctx.Err())
		}
	}

	body, err := call(ctx, g.synthetic)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, errors.Join(ErrAllProvidersFailed, err))
	}
	g.logger.Warn("serving synthetic price", "symbol", symbol)
	p := g.payload(symbol, asset.Stock, market, SyntheticSource, body)
	p.Synthetic = true
	return p, nil
}

// attempt runs one provider call under the per-call timeout and classifies the result
func (g *Gateway) attempt(ctx context.Context, p Provider, call fetchFunc) ([]byte, error) {
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body, err := call(cctx, p)
	if err == nil {
		err = checkBody(body)
	}
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}
	return body, nil
}

func (g *Gateway) payload(symbol string, t asset.Type, market, source string, body []byte) *Payload {
	return &Payload{
		Symbol:    symbol,
		Type:      t,
		Market:    market,
		Source:    source,
		Body:      body,
		FetchedAt: g.now().UTC(),
	}
}
