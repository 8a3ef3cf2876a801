package investment

import (
	"context"
	"errors"
	"fmt"

	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/kislikjeka/fintrack/internal/platform/quote"
	"github.com/kislikjeka/fintrack/internal/platform/watchlist"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

// Quoter fetches a live quote
type Quoter interface {
	Quote(ctx context.Context, symbol string, t asset.Type, market string) (*quote.Quote, error)
}

// Ledger is the part of the watchlist the workflow writes to
type Ledger interface {
	GetEntryBySymbol(ctx context.Context, symbol string) (*watchlist.Entry, error)
	AddEntry(ctx context.Context, in watchlist.AddEntryInput) (*watchlist.Entry, error)
	RecordTransaction(ctx context.Context, in watchlist.RecordInput) (*watchlist.Transaction, error)
}

// Service turns a cash amount into a BUY at the current market price
type Service struct {
	quoter Quoter
	ledger Ledger
	logger *logger.Logger
}

// NewService creates a new investment service
func NewService(quoter Quoter, ledger Ledger, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		quoter: quoter,
		ledger: ledger,
		logger: log.WithField("component", "investment"),
	}
}

// Invest prices the symbol, makes sure it is on the watchlist and records a
// BUY of amount/price units. The expense is booked by the ledger in the same
// DB transaction as the BUY.
func (s *Service) Invest(ctx context.Context, in InvestInput) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	symbol := asset.NormalizeSymbol(in.Symbol)

	entry, err := s.ledger.GetEntryBySymbol(ctx, symbol)
	created := false
	switch {
	case errors.Is(err, watchlist.ErrEntryNotFound):
		entry = nil
	case err != nil:
		return nil, fmt.Errorf("failed to look up entry: %w", err)
	}

	t := in.Type
	if entry != nil {
		t = entry.Type
	} else if !t.Valid() {
		t = asset.InferType(symbol)
	}

	q, err := s.quoter.Quote(ctx, symbol, t, in.Market)
	if err != nil {
		return nil, fmt.Errorf("failed to price %s: %w", symbol, err)
	}
	if q.Synthetic {
		return nil, fmt.Errorf("%s: %w", symbol, ErrSyntheticPrice)
	}
	if !q.Price.IsPositive() {
		return nil, fmt.Errorf("%s: %w", symbol, quote.ErrPriceNotFound)
	}

	qty := QuantityFor(in.Amount, q.Price)
	if !qty.IsPositive() {
		return nil, fmt.Errorf("validation failed: %w", watchlist.ErrInvalidQuantity)
	}

	if entry == nil {
		entry, err = s.ledger.AddEntry(ctx, watchlist.AddEntryInput{Symbol: symbol, Name: in.Name, Type: t})
		if err != nil {
			return nil, err
		}
		created = true
	}

	tx, err := s.ledger.RecordTransaction(ctx, watchlist.RecordInput{
		EntryID:   entry.ID,
		Direction: watchlist.DirectionBuy,
		Quantity:  qty,
		UnitPrice: q.Price,
		Currency:  q.Currency,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("investment recorded",
		"symbol", symbol, "amount", in.Amount.String(), "quantity", qty.String(), "provider", q.Source)
	return &Result{Entry: entry, Transaction: tx, Quote: q, EntryCreated: created}, nil
}
