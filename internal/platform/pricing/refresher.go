package pricing

import (
	"context"
	"time"

	"github.com/kislikjeka/fintrack/internal/platform/market"
	"github.com/kislikjeka/fintrack/internal/platform/quote"
	"github.com/kislikjeka/fintrack/internal/platform/watchlist"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

// DefaultRefreshInterval is the default interval between refresh cycles
const DefaultRefreshInterval = 15 * time.Minute

// EntrySource lists the symbols to refresh
type EntrySource interface {
	ListEntries(ctx context.Context) ([]*watchlist.Entry, error)
}

// SnapshotStore keeps the latest known quote per symbol for display
type SnapshotStore interface {
	Save(ctx context.Context, q *quote.Quote) error
}

// Publisher pushes refreshed quotes to live subscribers
type Publisher interface {
	Publish(q *quote.Quote)
}

// Refresher periodically prices every watchlist entry and records the
// results as latest-known snapshots
type Refresher struct {
	pricing  *Service
	entries  EntrySource
	store    SnapshotStore
	pub      Publisher
	interval time.Duration
	market   string
	logger   *logger.Logger
}

// RefresherConfig holds configuration for the refresher
type RefresherConfig struct {
	Interval time.Duration
	Market   string
	Logger   *logger.Logger
}

// NewRefresher creates a refresher; store and pub may be nil
func NewRefresher(pricing *Service, entries EntrySource, store SnapshotStore, pub Publisher, config *RefresherConfig) *Refresher {
	interval := DefaultRefreshInterval
	log := logger.Discard()
	var mkt string
	if config != nil {
		if config.Interval > 0 {
			interval = config.Interval
		}
		if config.Logger != nil {
			log = config.Logger
		}
		mkt = config.Market
	}

	return &Refresher{
		pricing:  pricing,
		entries:  entries,
		store:    store,
		pub:      pub,
		interval: interval,
		market:   mkt,
		logger:   log.WithField("component", "price_refresher"),
	}
}

// Run refreshes immediately, then every interval until ctx is cancelled
func (r *Refresher) Run(ctx context.Context) {
	r.logger.Info("price refresher started", "interval", r.interval)

	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("price refresher stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// RunOnce runs a single refresh cycle and reports how many symbols succeeded and failed
func (r *Refresher) RunOnce(ctx context.Context) (success, fail int) {
	return r.refresh(ctx)
}

func (r *Refresher) refresh(ctx context.Context) (success, fail int) {
	start := time.Now()

	entries, err := r.entries.ListEntries(ctx)
	if err != nil {
		r.logger.Error("failed to list watchlist entries", "error", err)
		return 0, 0
	}
	if len(entries) == 0 {
		r.logger.Debug("no watchlist entries to refresh")
		return 0, 0
	}

	reqs := make([]market.Request, len(entries))
	for i, e := range entries {
		reqs[i] = market.Request{Symbol: e.Symbol, Type: e.Type, Market: r.market}
	}

	for symbol, out := range r.pricing.Quotes(ctx, reqs) {
		if out.Err != nil {
			r.logger.Warn("price refresh failed", "symbol", symbol, "error", out.Err)
			fail++
			continue
		}
		if r.store != nil {
			if err := r.store.Save(ctx, out.Quote); err != nil {
				r.logger.Error("failed to save snapshot", "symbol", symbol, "error", err)
				fail++
				continue
			}
		}
		if r.pub != nil {
			r.pub.Publish(out.Quote)
		}
		success++
	}

	r.logger.Info("price refresh cycle completed",
		"success_count", success, "fail_count", fail, "duration_ms", time.Since(start).Milliseconds())
	return success, fail
}
