package market

import "context"

// Provider is a market data source. Implementations return the raw response
// body and leave failure classification to the gateway.
type Provider interface {
	// Name identifies the provider in logs and payload sources
	Name() string

	// Current fetches the latest quote for symbol priced in market (e.g. "usd")
	Current(ctx context.Context, symbol, market string) ([]byte, error)

	// History fetches a price series for symbol
	History(ctx context.Context, symbol, market string, req HistoryRequest) ([]byte, error)
}
