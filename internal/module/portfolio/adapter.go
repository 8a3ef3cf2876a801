package portfolio

import (
	"context"

	"github.com/kislikjeka/fintrack/internal/platform/market"
	"github.com/kislikjeka/fintrack/internal/platform/pricing"
)

// PricingAdapter adapts pricing.Service to the valuator's PriceService
type PricingAdapter struct {
	svc    *pricing.Service
	market string
}

// NewPricingAdapter creates a new adapter; market is the quote currency for crypto
func NewPricingAdapter(svc *pricing.Service, market string) *PricingAdapter {
	return &PricingAdapter{svc: svc, market: market}
}

// Quotes prices the requests in one batch
func (a *PricingAdapter) Quotes(ctx context.Context, reqs []PriceRequest) map[string]PriceResult {
	batch := make([]market.Request, len(reqs))
	for i, r := range reqs {
		batch[i] = market.Request{Symbol: r.Symbol, Type: r.Type, Market: a.market}
	}

	out := a.svc.Quotes(ctx, batch)
	result := make(map[string]PriceResult, len(out))
	for symbol, o := range out {
		result[symbol] = PriceResult{Quote: o.Quote, Err: o.Err}
	}
	return result
}

// Ensure PricingAdapter implements PriceService
var _ PriceService = (*PricingAdapter)(nil)
