package watchlist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines the interface for watchlist data access. Every method
// joins the DB transaction carried by ctx, if any.
type Repository interface {
	// CreateEntry inserts an entry; a case-insensitive symbol clash returns ErrDuplicateSymbol
	CreateEntry(ctx context.Context, e *Entry) error

	// GetEntry retrieves an entry by ID
	GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error)

	// GetEntryBySymbol retrieves an entry by symbol, case-insensitively
	GetEntryBySymbol(ctx context.Context, symbol string) (*Entry, error)

	// ListEntries retrieves all entries ordered by symbol
	ListEntries(ctx context.Context) ([]*Entry, error)

	// UpdateEntry updates name, notes and type
	UpdateEntry(ctx context.Context, e *Entry) error

	// DeleteEntry deletes an entry, reporting whether it existed
	DeleteEntry(ctx context.Context, id uuid.UUID) (bool, error)

	// ExistsBySymbol checks for an entry with the symbol, case-insensitively
	ExistsBySymbol(ctx context.Context, symbol string) (bool, error)

	// CreateTransaction inserts a transaction
	CreateTransaction(ctx context.Context, tx *Transaction) error

	// GetTransaction retrieves a transaction by ID
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// ListTransactions retrieves an entry's transactions ordered by execution time
	ListTransactions(ctx context.Context, entryID uuid.UUID) ([]*Transaction, error)

	// ListAllTransactions retrieves every transaction ordered by execution time
	ListAllTransactions(ctx context.Context) ([]*Transaction, error)

	// CountTransactions counts an entry's transactions
	CountTransactions(ctx context.Context, entryID uuid.UUID) (int, error)

	// LinkLedgerRecord stores the expense or income booked for a transaction
	LinkLedgerRecord(ctx context.Context, txID uuid.UUID, expenseID, incomeID *uuid.UUID) error

	// DeleteTransaction deletes a transaction
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}

// TxManager scopes a unit of work. BeginTx returns a context carrying the
// DB transaction; repositories given that context join it.
type TxManager interface {
	BeginTx(ctx context.Context) (context.Context, error)
	CommitTx(ctx context.Context) error
	RollbackTx(ctx context.Context) error
}

// Bookkeeper books investment cash flows in the general ledger
type Bookkeeper interface {
	// RecordInvestmentExpense books a buy in the given currency and returns the expense ID
	RecordInvestmentExpense(ctx context.Context, amount decimal.Decimal, currency, description string, date time.Time) (uuid.UUID, error)

	// RecordInvestmentIncome books a sell in the given currency and returns the income ID
	RecordInvestmentIncome(ctx context.Context, amount decimal.Decimal, currency, description string, date time.Time) (uuid.UUID, error)

	// DeleteExpense removes a booked expense
	DeleteExpense(ctx context.Context, id uuid.UUID) error

	// DeleteIncome removes a booked income
	DeleteIncome(ctx context.Context, id uuid.UUID) error
}
