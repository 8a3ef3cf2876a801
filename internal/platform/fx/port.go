package fx

import (
	"context"

	"github.com/shopspring/decimal"
)

// Provider fetches live exchange rates
type Provider interface {
	// Rate returns how many units of quote one unit of base buys
	Rate(ctx context.Context, base, quote string) (decimal.Decimal, error)
}

// RateStore persists the rate table between restarts
type RateStore interface {
	// Save replaces the persisted table
	Save(ctx context.Context, t Table) error

	// Load returns the persisted table, or nil when nothing was saved yet
	Load(ctx context.Context) (*Table, error)
}
