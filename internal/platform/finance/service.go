package finance

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kislikjeka/fintrack/internal/platform/watchlist"
	"github.com/kislikjeka/fintrack/pkg/logger"
	"github.com/kislikjeka/fintrack/pkg/money"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Service provides business logic for the general ledger
type Service struct {
	repo      Repository
	fx        Converter
	reporting string
	now       func() time.Time
	logger    *logger.Logger
}

// NewService creates a new finance service. reporting is the currency used when
// a record names none.
func NewService(repo Repository, fx Converter, reporting string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		repo:      repo,
		fx:        fx,
		reporting: normalizeCurrency(reporting),
		now:       time.Now,
		logger:    log.WithComponent("finance"),
	}
}

// ReportingCurrency returns the default currency
func (s *Service) ReportingCurrency() string {
	return s.reporting
}

// ---- CRUD ----

// Create stores a new expense or income
func (s *Service) Create(ctx context.Context, kind Kind, in RecordInput) (*Record, error) {
	now := s.now().UTC()
	r := &Record{
		ID:        uuid.New(),
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.apply(r, in)

	if err := s.validate(r); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", kind, err)
	}

	s.logger.Debug("ledger record created", "kind", string(kind), "category", r.Category, "currency", r.Currency)
	return r, nil
}

// Get retrieves a record
func (s *Service) Get(ctx context.Context, kind Kind, id uuid.UUID) (*Record, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidKind
	}
	return s.repo.Get(ctx, kind, id)
}

// List retrieves records of a kind
func (s *Service) List(ctx context.Context, kind Kind, filter ListFilter) ([]*Record, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidKind
	}
	records, err := s.repo.List(ctx, kind, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", kind, err)
	}
	return records, nil
}

// Update replaces the user fields of a record
func (s *Service) Update(ctx context.Context, kind Kind, id uuid.UUID, in RecordInput) (*Record, error) {
	r, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	s.apply(r, in)
	r.UpdatedAt = s.now().UTC()

	if err := s.validate(r); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", kind, err)
	}
	return r, nil
}

// Delete removes a record. It returns false when no such record exists.
func (s *Service) Delete(ctx context.Context, kind Kind, id uuid.UUID) (bool, error) {
	if !kind.IsValid() {
		return false, ErrInvalidKind
	}
	deleted, err := s.repo.Delete(ctx, kind, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	return deleted, nil
}

func (s *Service) apply(r *Record, in RecordInput) {
	r.Amount = in.Amount
	r.Currency = normalizeCurrency(in.Currency)
	if r.Currency == "" {
		r.Currency = s.reporting
	}
	r.Category = strings.TrimSpace(in.Category)
	r.Description = strings.TrimSpace(in.Description)
	r.Date = in.Date
	if r.Date.IsZero() {
		r.Date = s.now().UTC()
	}
	r.Date = truncateDay(r.Date)
}

func (s *Service) validate(r *Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if s.fx != nil && !s.fx.Supports(r.Currency) {
		return ErrInvalidCurrency
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ---- Investment bookings ----

// RecordInvestmentExpense books a buy in the currency it was priced in. An
// empty currency falls back to the reporting currency.
func (s *Service) RecordInvestmentExpense(ctx context.Context, amount decimal.Decimal, currency, description string, date time.Time) (uuid.UUID, error) {
	r, err := s.Create(ctx, KindExpense, RecordInput{
		Amount: amount, Currency: currency, Category: CategoryInvestment, Date: date, Description: description,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return r.ID, nil
}

// RecordInvestmentIncome books a sell in the currency it was priced in
func (s *Service) RecordInvestmentIncome(ctx context.Context, amount decimal.Decimal, currency, description string, date time.Time) (uuid.UUID, error) {
	r, err := s.Create(ctx, KindIncome, RecordInput{
		Amount: amount, Currency: currency, Category: CategoryInvestment, Date: date, Description: description,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return r.ID, nil
}

// DeleteExpense removes a booked expense; a missing one is not an error
func (s *Service) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	_, err := s.Delete(ctx, KindExpense, id)
	return err
}

// DeleteIncome removes a booked income; a missing one is not an error
func (s *Service) DeleteIncome(ctx context.Context, id uuid.UUID) error {
	_, err := s.Delete(ctx, KindIncome, id)
	return err
}

// Ensure Service can book investment cash flows
var _ watchlist.Bookkeeper = (*Service)(nil)

// ---- Summaries ----

// Balance returns total income minus total expense converted to currency
func (s *Service) Balance(ctx context.Context, currency string) (*Balance, error) {
	currency, err := s.target(currency)
	if err != nil {
		return nil, err
	}

	income, err := s.total(ctx, KindIncome, AggregateFilter{}, currency)
	if err != nil {
		return nil, err
	}
	expense, err := s.total(ctx, KindExpense, AggregateFilter{}, currency)
	if err != nil {
		return nil, err
	}

	bal := income.Sub(expense)
	return &Balance{
		Currency:         currency,
		TotalIncome:      income,
		TotalExpense:     expense,
		Balance:          bal,
		FormattedIncome:  money.Format(income, currency),
		FormattedExpense: money.Format(expense, currency),
		FormattedBalance: money.Format(bal, currency),
	}, nil
}

// ExpensesByCategory returns expense totals per category, largest first
func (s *Service) ExpensesByCategory(ctx context.Context, currency string) ([]CategoryTotal, error) {
	currency, err := s.target(currency)
	if err != nil {
		return nil, err
	}

	buckets, err := s.repo.Aggregate(ctx, KindExpense, AggregateFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate expenses: %w", err)
	}

	perCategory := make(map[string][]decimal.Decimal)
	for _, b := range buckets {
		v, err := s.fx.Convert(b.Total, b.Currency, currency)
		if err != nil {
			return nil, err
		}
		perCategory[b.Category] = append(perCategory[b.Category], v)
	}

	out := make([]CategoryTotal, 0, len(perCategory))
	grand := decimal.Zero
	for cat, amounts := range perCategory {
		total := money.Sum(currency, amounts...)
		grand = grand.Add(total)
		out = append(out, CategoryTotal{
			Category:  cat,
			Total:     total,
			Formatted: money.Format(total, currency),
		})
	}
	for i := range out {
		if grand.IsPositive() {
			out[i].Percent = out[i].Total.Div(grand).Mul(hundred).Round(2)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// MonthlySummary returns income and expense for every month of year
func (s *Service) MonthlySummary(ctx context.Context, year int, currency string) (*YearSummary, error) {
	if year < 1900 || year > 9999 {
		return nil, fmt.Errorf("validation failed: %w", ErrInvalidYear)
	}
	currency, err := s.target(currency)
	if err != nil {
		return nil, err
	}

	sum := &YearSummary{Year: year, Currency: currency, Months: make([]MonthTotal, 12)}
	for i := range sum.Months {
		sum.Months[i].Month = i + 1
	}

	filter := AggregateFilter{Year: year}
	for _, kind := range []Kind{KindIncome, KindExpense} {
		buckets, err := s.repo.Aggregate(ctx, kind, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate %ss: %w", kind, err)
		}
		for _, b := range buckets {
			if b.Month < 1 || b.Month > 12 {
				continue
			}
			v, err := s.fx.Convert(b.Total, b.Currency, currency)
			if err != nil {
				return nil, err
			}
			m := &sum.Months[b.Month-1]
			if kind == KindIncome {
				m.Income = money.Sum(currency, m.Income, v)
			} else {
				m.Expense = money.Sum(currency, m.Expense, v)
			}
		}
	}

	for i := range sum.Months {
		m := &sum.Months[i]
		m.Net = m.Income.Sub(m.Expense)
		m.Formatted = money.Format(m.Net, currency)
		sum.TotalIncome = sum.TotalIncome.Add(m.Income)
		sum.TotalExpense = sum.TotalExpense.Add(m.Expense)
	}
	sum.Net = sum.TotalIncome.Sub(sum.TotalExpense)
	return sum, nil
}

func (s *Service) target(currency string) (string, error) {
	currency = normalizeCurrency(currency)
	if currency == "" {
		currency = s.reporting
	}
	if !s.fx.Supports(currency) {
		return "", fmt.Errorf("validation failed: %s: %w", currency, ErrInvalidCurrency)
	}
	return currency, nil
}

func (s *Service) total(ctx context.Context, kind Kind, filter AggregateFilter, currency string) (decimal.Decimal, error) {
	buckets, err := s.repo.Aggregate(ctx, kind, filter)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to aggregate %ss: %w", kind, err)
	}
	amounts := make([]decimal.Decimal, 0, len(buckets))
	for _, b := range buckets {
		v, err := s.fx.Convert(b.Total, b.Currency, currency)
		if err != nil {
			return decimal.Zero, err
		}
		amounts = append(amounts, v)
	}
	return money.Sum(currency, amounts...), nil
}
