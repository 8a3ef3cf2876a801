package alphavantage

import (
	"context"

	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/kislikjeka/fintrack/internal/platform/market"
)

// Provider adapts Client to market.Provider for equities
type Provider struct {
	client *Client
}

// NewProvider creates a new adapter
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Name() string { return "alphavantage" }

func (p *Provider) Current(ctx context.Context, symbol, _ string) ([]byte, error) {
	return p.client.GlobalQuote(ctx, asset.NormalizeSymbol(symbol))
}

func (p *Provider) History(ctx context.Context, symbol, _ string, req market.HistoryRequest) ([]byte, error) {
	symbol = asset.NormalizeSymbol(symbol)
	if req.Interval == market.Interval1Day {
		return p.client.TimeSeriesDaily(ctx, symbol, req.Points())
	}
	return p.client.TimeSeriesIntraday(ctx, symbol, string(req.Interval), req.Points())
}

// Ensure Provider implements market.Provider
var _ market.Provider = (*Provider)(nil)
