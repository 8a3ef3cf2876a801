package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

const (
	maxSymbolLength = 20
	maxNameLength   = 100
)

// Service provides business logic for watchlist entries, their transactions
// and the positions derived from them
type Service struct {
	repo   Repository
	txm    TxManager
	books  Bookkeeper
	now    func() time.Time
	logger *logger.Logger
}

// NewService creates a new watchlist service
func NewService(repo Repository, txm TxManager, books Bookkeeper, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		repo:   repo,
		txm:    txm,
		books:  books,
		now:    time.Now,
		logger: log.WithComponent("watchlist"),
	}
}

// ---- Entries ----

// AddEntry adds a symbol to the watchlist
func (s *Service) AddEntry(ctx context.Context, in AddEntryInput) (*Entry, error) {
	symbol := asset.NormalizeSymbol(in.Symbol)
	if symbol == "" {
		return nil, fmt.Errorf("validation failed: %w", ErrMissingSymbol)
	}
	if len(symbol) > maxSymbolLength {
		return nil, fmt.Errorf("validation failed: %w", ErrSymbolTooLong)
	}

	t := in.Type
	if !t.Valid() {
		t = asset.InferType(symbol)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = symbol
		if l, ok := asset.Lookup(symbol); ok {
			name = l.Name
		}
	}
	if len(name) > maxNameLength {
		return nil, fmt.Errorf("validation failed: %w", ErrNameTooLong)
	}

	// the unique index is the real guard; this only saves a round trip
	exists, err := s.repo.ExistsBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to check symbol existence: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%s: %w", symbol, ErrDuplicateSymbol)
	}

	now := s.now().UTC()
	e := &Entry{
		ID:        uuid.New(),
		Symbol:    symbol,
		Name:      name,
		Type:      t,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateEntry(ctx, e); err != nil {
		if errors.Is(err, ErrDuplicateSymbol) {
			return nil, fmt.Errorf("%s: %w", symbol, ErrDuplicateSymbol)
		}
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	s.logger.Info("entry added", "symbol", symbol, "type", t.String())
	return e, nil
}

// UpdateEntry changes an entry's name, notes or type
func (s *Service) UpdateEntry(ctx context.Context, id uuid.UUID, in UpdateEntryInput) (*Entry, error) {
	e, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			name = e.Symbol
		}
		if len(name) > maxNameLength {
			return nil, fmt.Errorf("validation failed: %w", ErrNameTooLong)
		}
		e.Name = name
	}
	if in.Notes != nil {
		e.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.Type != nil {
		if !in.Type.Valid() {
			return nil, fmt.Errorf("validation failed: %w", asset.ErrUnsupportedAssetType)
		}
		e.Type = *in.Type
	}
	e.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}
	return e, nil
}

// GetEntry retrieves an entry by ID
func (s *Service) GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

// GetEntryBySymbol retrieves an entry by symbol
func (s *Service) GetEntryBySymbol(ctx context.Context, symbol string) (*Entry, error) {
	symbol = asset.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("validation failed: %w", ErrMissingSymbol)
	}
	return s.repo.GetEntryBySymbol(ctx, symbol)
}

// ListEntries retrieves all entries
func (s *Service) ListEntries(ctx context.Context) ([]*Entry, error) {
	entries, err := s.repo.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

// RemoveEntry deletes an entry. It returns false when no such entry exists and
// ErrHasTransactions when the entry still has history.
func (s *Service) RemoveEntry(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := s.repo.GetEntry(ctx, id); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return false, nil
		}
		return false, err
	}

	n, err := s.repo.CountTransactions(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to count transactions: %w", err)
	}
	if n > 0 {
		return false, fmt.Errorf("%d transactions: %w", n, ErrHasTransactions)
	}

	deleted, err := s.repo.DeleteEntry(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete entry: %w", err)
	}
	return deleted, nil
}

// ---- Transactions ----

// RecordTransaction stores a buy or sell and books its total in the general
// ledger (expense for BUY, income for SELL) inside one DB transaction.
func (s *Service) RecordTransaction(ctx context.Context, in RecordInput) (*Transaction, error) {
	tx := &Transaction{
		ID:         uuid.New(),
		EntryID:    in.EntryID,
		Direction:  in.Direction,
		Quantity:   in.Quantity,
		UnitPrice:  in.UnitPrice,
		Currency:   strings.ToUpper(strings.TrimSpace(in.Currency)),
		ExecutedAt: in.ExecutedAt,
		CreatedAt:  s.now().UTC(),
	}
	if tx.Currency == "" {
		tx.Currency = DefaultCurrency
	}
	if tx.ExecutedAt.IsZero() {
		tx.ExecutedAt = tx.CreatedAt
	}
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	tx.Recalculate()

	entry, err := s.repo.GetEntry(ctx, in.EntryID)
	if err != nil {
		return nil, err
	}

	txCtx, err := s.txm.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.txm.RollbackTx(txCtx)
		}
	}()

	if err := s.repo.CreateTransaction(txCtx, tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	desc := fmt.Sprintf("%s %s %s @ %s", tx.Direction, tx.Quantity.String(), entry.Symbol, tx.UnitPrice.String())
	switch tx.Direction {
	case DirectionBuy:
		id, err := s.books.RecordInvestmentExpense(txCtx, tx.Total, tx.Currency, desc, tx.ExecutedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to book expense: %w", err)
		}
		tx.ExpenseID = &id
	case DirectionSell:
		id, err := s.books.RecordInvestmentIncome(txCtx, tx.Total, tx.Currency, desc, tx.ExecutedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to book income: %w", err)
		}
		tx.IncomeID = &id
	}

	if err := s.repo.LinkLedgerRecord(txCtx, tx.ID, tx.ExpenseID, tx.IncomeID); err != nil {
		return nil, fmt.Errorf("failed to link ledger record: %w", err)
	}

	if err := s.txm.CommitTx(txCtx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true

	s.logger.Info("transaction recorded",
		"symbol", entry.Symbol, "direction", string(tx.Direction),
		"quantity", tx.Quantity.String(), "total", tx.Total.String(), "currency", tx.Currency)
	return tx, nil
}

// ListTransactions retrieves an entry's transactions
func (s *Service) ListTransactions(ctx context.Context, entryID uuid.UUID) ([]*Transaction, error) {
	if _, err := s.repo.GetEntry(ctx, entryID); err != nil {
		return nil, err
	}
	txs, err := s.repo.ListTransactions(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// DeleteTransaction removes a transaction and its ledger record together
func (s *Service) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	txCtx, err := s.txm.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.txm.RollbackTx(txCtx)
		}
	}()

	if err := s.repo.DeleteTransaction(txCtx, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if tx.ExpenseID != nil {
		if err := s.books.DeleteExpense(txCtx, *tx.ExpenseID); err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
	}
	if tx.IncomeID != nil {
		if err := s.books.DeleteIncome(txCtx, *tx.IncomeID); err != nil {
			return fmt.Errorf("failed to delete income: %w", err)
		}
	}

	if err := s.txm.CommitTx(txCtx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// ---- Positions ----

// ComputePosition derives the position of one entry
func (s *Service) ComputePosition(ctx context.Context, entryID uuid.UUID) (*Position, error) {
	entry, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	txs, err := s.repo.ListTransactions(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	p := CalculatePosition(entry, txs)
	return &p, nil
}

// ListPositions derives positions for every entry with at least one transaction
func (s *Service) ListPositions(ctx context.Context) ([]Position, error) {
	entries, err := s.repo.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	txs, err := s.repo.ListAllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	byEntry := make(map[uuid.UUID][]*Transaction, len(entries))
	for _, tx := range txs {
		byEntry[tx.EntryID] = append(byEntry[tx.EntryID], tx)
	}

	positions := make([]Position, 0, len(byEntry))
	for _, e := range entries {
		if len(byEntry[e.ID]) == 0 {
			continue
		}
		positions = append(positions, CalculatePosition(e, byEntry[e.ID]))
	}
	return positions, nil
}

// ListPositionsWithInvestment returns positions with a positive net invested amount
func (s *Service) ListPositionsWithInvestment(ctx context.Context) ([]Position, error) {
	all, err := s.ListPositions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Position, 0, len(all))
	for _, p := range all {
		if p.HasInvestment() {
			out = append(out, p)
		}
	}
	return out, nil
}
