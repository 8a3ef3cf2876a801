package fx

import (
	"fmt"
	"sync"

	apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"
	"github.com/shopspring/decimal"
)

var ErrUnknownCurrency = apperrors.Validation("unknown currency")

// Service owns the exchange rate table. Only the refresher writes it.
type Service struct {
	mu    sync.RWMutex
	table Table
}

// NewService creates a service seeded with DefaultTable
func NewService() *Service {
	return &Service{table: DefaultTable()}
}

// Snapshot returns a copy of the current table
func (s *Service) Snapshot() Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Clone()
}

// Supports reports whether code has a rate
func (s *Service) Supports(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.table.Rates[normalize(code)]
	return ok
}

// Rate returns units of to per one unit of from
func (s *Service) Rate(from, to string) (decimal.Decimal, error) {
	from, to = normalize(from), normalize(to)

	s.mu.RLock()
	defer s.mu.RUnlock()

	fromRate, ok := s.table.Rates[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, from)
	}
	toRate, ok := s.table.Rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, to)
	}
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	return toRate.Div(fromRate), nil
}

// Convert converts amount from one currency to another
func (s *Service) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	rate, err := s.Rate(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

func (s *Service) replace(t Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = t.Clone()
}
