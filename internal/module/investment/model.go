package investment

import (
	"strings"

	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/kislikjeka/fintrack/internal/platform/quote"
	"github.com/kislikjeka/fintrack/internal/platform/watchlist"
	"github.com/shopspring/decimal"
)

// quantityPlaces is the precision of a computed buy quantity
const quantityPlaces = 8

// InvestInput describes a cash amount to put into one asset
type InvestInput struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name,omitempty"`
	Type   asset.Type      `json:"type,omitempty"` // zero means inferred
	Amount decimal.Decimal `json:"amount"`
	Market string          `json:"market,omitempty"`
}

// Validate validates the investment input
func (in *InvestInput) Validate() error {
	if strings.TrimSpace(in.Symbol) == "" {
		return ErrMissingSymbol
	}
	if !in.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// Result is what an investment produced
type Result struct {
	Entry        *watchlist.Entry       `json:"entry"`
	Transaction  *watchlist.Transaction `json:"transaction"`
	Quote        *quote.Quote           `json:"quote"`
	EntryCreated bool                   `json:"entry_created"`
}

// QuantityFor returns amount/price rounded half-up to 8 decimal places
func QuantityFor(amount, price decimal.Decimal) decimal.Decimal {
	return amount.DivRound(price, quantityPlaces)
}
