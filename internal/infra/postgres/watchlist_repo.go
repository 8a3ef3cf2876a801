package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/kislikjeka/fintrack/internal/platform/watchlist"
)

// WatchlistRepository implements the watchlist repository using PostgreSQL
type WatchlistRepository struct {
	pool *pgxpool.Pool
}

// NewWatchlistRepository creates a new PostgreSQL watchlist repository
func NewWatchlistRepository(pool *pgxpool.Pool) *WatchlistRepository {
	return &WatchlistRepository{pool: pool}
}

const entryColumns = `id, symbol, name, asset_type, notes, created_at, updated_at`

const txColumns = `id, entry_id, direction, quantity::text, unit_price::text, total::text,
	currency, executed_at, expense_id, income_id, created_at`

// ---- Entries ----

// CreateEntry inserts an entry; the unique index on upper(symbol) reports clashes
func (r *WatchlistRepository) CreateEntry(ctx context.Context, e *watchlist.Entry) error {
	query := `
		INSERT INTO watchlist_entries (id, symbol, name, asset_type, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := conn(ctx, r.pool).Exec(ctx, query,
		e.ID, e.Symbol, e.Name, e.Type.String(), e.Notes, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return watchlist.ErrDuplicateSymbol
		}
		return fmt.Errorf("failed to create entry: %w", err)
	}
	return nil
}

// GetEntry retrieves an entry by ID
func (r *WatchlistRepository) GetEntry(ctx context.Context, id uuid.UUID) (*watchlist.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM watchlist_entries WHERE id = $1`
	return r.getEntry(ctx, query, id)
}

// GetEntryBySymbol retrieves an entry by symbol, case-insensitively
func (r *WatchlistRepository) GetEntryBySymbol(ctx context.Context, symbol string) (*watchlist.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM watchlist_entries WHERE upper(symbol) = upper($1)`
	return r.getEntry(ctx, query, symbol)
}

func (r *WatchlistRepository) getEntry(ctx context.Context, query string, arg any) (*watchlist.Entry, error) {
	e, err := scanEntry(conn(ctx, r.pool).QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, watchlist.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return e, nil
}

// ListEntries retrieves all entries ordered by symbol
func (r *WatchlistRepository) ListEntries(ctx context.Context) ([]*watchlist.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM watchlist_entries ORDER BY symbol`

	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []*watchlist.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return entries, nil
}

// UpdateEntry updates name, notes and type
func (r *WatchlistRepository) UpdateEntry(ctx context.Context, e *watchlist.Entry) error {
	query := `
		UPDATE watchlist_entries
		SET name = $2, notes = $3, asset_type = $4, updated_at = $5
		WHERE id = $1
	`
	tag, err := conn(ctx, r.pool).Exec(ctx, query, e.ID, e.Name, e.Notes, e.Type.String(), e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return watchlist.ErrEntryNotFound
	}
	return nil
}

// DeleteEntry deletes an entry, reporting whether it existed
func (r *WatchlistRepository) DeleteEntry(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM watchlist_entries WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete entry: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ExistsBySymbol checks for an entry with the symbol, case-insensitively
func (r *WatchlistRepository) ExistsBySymbol(ctx context.Context, symbol string) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM watchlist_entries WHERE upper(symbol) = upper($1))`, symbol,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check symbol existence: %w", err)
	}
	return exists, nil
}

// ---- Transactions ----

// CreateTransaction inserts a transaction
func (r *WatchlistRepository) CreateTransaction(ctx context.Context, tx *watchlist.Transaction) error {
	query := `
		INSERT INTO investment_transactions
			(id, entry_id, direction, quantity, unit_price, total, currency, executed_at, expense_id, income_id, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7, $8, $9, $10, $11)
	`
	_, err := conn(ctx, r.pool).Exec(ctx, query,
		tx.ID, tx.EntryID, string(tx.Direction),
		tx.Quantity.String(), tx.UnitPrice.String(), tx.Total.String(),
		tx.Currency, tx.ExecutedAt, tx.ExpenseID, tx.IncomeID, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction by ID
func (r *WatchlistRepository) GetTransaction(ctx context.Context, id uuid.UUID) (*watchlist.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM investment_transactions WHERE id = $1`

	tx, err := scanTransaction(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, watchlist.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// ListTransactions retrieves an entry's transactions ordered by execution time
func (r *WatchlistRepository) ListTransactions(ctx context.Context, entryID uuid.UUID) ([]*watchlist.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM investment_transactions
		WHERE entry_id = $1 ORDER BY executed_at, created_at`
	return r.listTransactions(ctx, query, entryID)
}

// ListAllTransactions retrieves every transaction ordered by execution time
func (r *WatchlistRepository) ListAllTransactions(ctx context.Context) ([]*watchlist.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM investment_transactions ORDER BY executed_at, created_at`
	return r.listTransactions(ctx, query)
}

func (r *WatchlistRepository) listTransactions(ctx context.Context, query string, args ...any) ([]*watchlist.Transaction, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txs := []*watchlist.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txs, nil
}

// CountTransactions counts an entry's transactions
func (r *WatchlistRepository) CountTransactions(ctx context.Context, entryID uuid.UUID) (int, error) {
	var n int
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM investment_transactions WHERE entry_id = $1`, entryID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

// LinkLedgerRecord stores the expense or income booked for a transaction
func (r *WatchlistRepository) LinkLedgerRecord(ctx context.Context, txID uuid.UUID, expenseID, incomeID *uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE investment_transactions SET expense_id = $2, income_id = $3 WHERE id = $1`,
		txID, expenseID, incomeID,
	)
	if err != nil {
		return fmt.Errorf("failed to link ledger record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return watchlist.ErrTransactionNotFound
	}
	return nil
}

// DeleteTransaction deletes a transaction
func (r *WatchlistRepository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM investment_transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return watchlist.ErrTransactionNotFound
	}
	return nil
}

// ---- Scanning ----

func scanEntry(row pgx.Row) (*watchlist.Entry, error) {
	e := &watchlist.Entry{}
	var assetType string
	if err := row.Scan(&e.ID, &e.Symbol, &e.Name, &assetType, &e.Notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	t, err := asset.ParseType(assetType)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", e.Symbol, err)
	}
	e.Type = t
	return e, nil
}

func scanTransaction(row pgx.Row) (*watchlist.Transaction, error) {
	tx := &watchlist.Transaction{}
	var direction, qty, price, total string
	err := row.Scan(&tx.ID, &tx.EntryID, &direction, &qty, &price, &total,
		&tx.Currency, &tx.ExecutedAt, &tx.ExpenseID, &tx.IncomeID, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}
	tx.Direction = watchlist.Direction(direction)

	if tx.Quantity, err = parseDecimal(qty); err != nil {
		return nil, err
	}
	if tx.UnitPrice, err = parseDecimal(price); err != nil {
		return nil, err
	}
	if tx.Total, err = parseDecimal(total); err != nil {
		return nil, err
	}
	return tx, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse numeric %q: %w", s, err)
	}
	return d, nil
}

// Ensure WatchlistRepository implements watchlist.Repository
var _ watchlist.Repository = (*WatchlistRepository)(nil)
