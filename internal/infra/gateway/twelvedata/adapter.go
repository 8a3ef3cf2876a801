package twelvedata

import (
	"context"

	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/kislikjeka/fintrack/internal/platform/market"
)

// Twelve Data spells 60min as 1h
var intervals = map[market.Interval]string{
	market.Interval1Min:  "1min",
	market.Interval5Min:  "5min",
	market.Interval15Min: "15min",
	market.Interval30Min: "30min",
	market.Interval60Min: "1h",
	market.Interval1Day:  "1day",
}

// Provider adapts Client to market.Provider. Quotes are always in the
// listing's currency, so the market argument is ignored.
type Provider struct {
	client *Client
}

// NewProvider creates a new adapter
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Name() string { return "twelvedata" }

func (p *Provider) Current(ctx context.Context, symbol, _ string) ([]byte, error) {
	return p.client.Quote(ctx, asset.NormalizeSymbol(symbol))
}

func (p *Provider) History(ctx context.Context, symbol, _ string, req market.HistoryRequest) ([]byte, error) {
	interval, ok := intervals[req.Interval]
	if !ok {
		return nil, market.ErrInvalidInterval
	}
	return p.client.TimeSeries(ctx, asset.NormalizeSymbol(symbol), interval, req.Points())
}

// Ensure Provider implements market.Provider
var _ market.Provider = (*Provider)(nil)
