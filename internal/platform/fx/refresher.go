package fx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kislikjeka/fintrack/pkg/logger"
)

const DefaultRefreshInterval = 24 * time.Hour

// Refresher periodically pulls rates from the provider into the service
type Refresher struct {
	svc      *Service
	provider Provider
	store    RateStore
	interval time.Duration
	now      func() time.Time
	logger   *logger.Logger
}

// RefresherConfig holds configuration for the refresher
type RefresherConfig struct {
	Interval time.Duration
	Logger   *logger.Logger
}

// NewRefresher creates a refresher; store may be nil
func NewRefresher(svc *Service, provider Provider, store RateStore, config *RefresherConfig) *Refresher {
	interval := DefaultRefreshInterval
	log := logger.Discard()
	if config != nil {
		if config.Interval > 0 {
			interval = config.Interval
		}
		if config.Logger != nil {
			log = config.Logger
		}
	}

	return &Refresher{
		svc:      svc,
		provider: provider,
		store:    store,
		interval: interval,
		now:      time.Now,
		logger:   log.WithField("component", "fx_refresher"),
	}
}

// Restore loads the persisted table into the service, if any
func (r *Refresher) Restore(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	t, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rates: %w", err)
	}
	if t == nil || len(t.Rates) == 0 {
		return nil
	}
	r.svc.replace(*t)
	r.logger.Info("restored exchange rates", "currencies", len(t.Rates), "updated_at", t.UpdatedAt)
	return nil
}

// Run restores, refreshes immediately, then refreshes every interval until ctx is cancelled
func (r *Refresher) Run(ctx context.Context) {
	r.logger.Info("fx refresher started", "interval", r.interval)

	if err := r.Restore(ctx); err != nil {
		r.logger.Warn("restore failed, keeping seed rates", "error", err)
	}
	if err := r.RunOnce(ctx); err != nil {
		r.logger.Error("fx refresh failed", "error", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("fx refresher stopped")
			return
		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil {
				r.logger.Error("fx refresh failed", "error", err)
			}
		}
	}
}

// RunOnce fetches every non-base currency of the current table. Currencies the
// provider fails on keep their previous rate; if every fetch fails nothing changes.
func (r *Refresher) RunOnce(ctx context.Context) error {
	next := r.svc.Snapshot()
	var errs []error
	updated := 0

	for _, code := range next.Currencies() {
		rate, err := r.provider.Rate(ctx, next.Base, code)
		if err != nil {
			r.logger.Warn("rate fetch failed", "currency", code, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", code, err))
			continue
		}
		next.Rates[code] = rate
		updated++
	}

	if updated == 0 && len(errs) > 0 {
		return errors.Join(errs...)
	}

	next.UpdatedAt = r.now().UTC()
	r.svc.replace(next)

	if r.store != nil {
		if err := r.store.Save(ctx, next); err != nil {
			return fmt.Errorf("failed to persist rates: %w", err)
		}
	}

	r.logger.Info("exchange rates refreshed", "updated", updated, "failed", len(errs))
	return nil
}
