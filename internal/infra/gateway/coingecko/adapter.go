package coingecko

import (
	"context"
	"strings"

	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/kislikjeka/fintrack/internal/platform/market"
)

const defaultMarket = "usd"

// Provider adapts Client to market.Provider, translating ticker symbols to
// CoinGecko coin ids.
type Provider struct {
	client *Client
}

// NewProvider creates a new adapter
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Name() string { return "coingecko" }

// Current fetches the simple price of symbol in market
func (p *Provider) Current(ctx context.Context, symbol, mkt string) ([]byte, error) {
	return p.client.SimplePrice(ctx, []string{asset.CoinGeckoID(symbol)}, vs(mkt))
}

// History fetches the market chart covering the requested period
func (p *Provider) History(ctx context.Context, symbol, mkt string, req market.HistoryRequest) ([]byte, error) {
	daily := req.Interval == market.Interval1Day && req.Period != market.PeriodIntraday
	return p.client.MarketChart(ctx, asset.CoinGeckoID(symbol), vs(mkt), req.Period.Days(), daily)
}

func vs(mkt string) string {
	if m := strings.ToLower(strings.TrimSpace(mkt)); m != "" {
		return m
	}
	return defaultMarket
}

// Ensure Provider implements market.Provider
var _ market.Provider = (*Provider)(nil)
