package watchlist

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type journalKey struct{}

// journal buffers writes made inside a unit of work
type journal struct {
	ops []func()
}

// memRepo is an in-memory Repository and TxManager. Writes made through a
// context from BeginTx are applied on CommitTx and dropped on RollbackTx.
type memRepo struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*Entry
	txs     map[uuid.UUID]*Transaction

	commits   int
	rollbacks int
}

func newMemRepo() *memRepo {
	return &memRepo{
		entries: make(map[uuid.UUID]*Entry),
		txs:     make(map[uuid.UUID]*Transaction),
	}
}

func (r *memRepo) write(ctx context.Context, op func()) {
	if j, ok := ctx.Value(journalKey{}).(*journal); ok {
		j.ops = append(j.ops, op)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	op()
}

func (r *memRepo) BeginTx(ctx context.Context) (context.Context, error) {
	return context.WithValue(ctx, journalKey{}, &journal{}), nil
}

func (r *memRepo) CommitTx(ctx context.Context) error {
	j := ctx.Value(journalKey{}).(*journal)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, op := range j.ops {
		op()
	}
	j.ops = nil
	r.commits++
	return nil
}

func (r *memRepo) RollbackTx(ctx context.Context) error {
	ctx.Value(journalKey{}).(*journal).ops = nil
	r.mu.Lock()
	r.rollbacks++
	r.mu.Unlock()
	return nil
}

func (r *memRepo) CreateEntry(ctx context.Context, e *Entry) error {
	r.mu.Lock()
	for _, existing := range r.entries {
		if strings.EqualFold(existing.Symbol, e.Symbol) {
			r.mu.Unlock()
			return ErrDuplicateSymbol
		}
	}
	r.mu.Unlock()
	c := *e
	r.write(ctx, func() { r.entries[c.ID] = &c })
	return nil
}

func (r *memRepo) GetEntry(_ context.Context, id uuid.UUID) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, ErrEntryNotFound
	}
	c := *e
	return &c, nil
}

func (r *memRepo) GetEntryBySymbol(_ context.Context, symbol string) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if strings.EqualFold(e.Symbol, symbol) {
			c := *e
			return &c, nil
		}
	}
	return nil, ErrEntryNotFound
}

func (r *memRepo) ListEntries(_ context.Context) ([]*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		c := *e
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (r *memRepo) UpdateEntry(ctx context.Context, e *Entry) error {
	c := *e
	r.write(ctx, func() { r.entries[c.ID] = &c })
	return nil
}

func (r *memRepo) DeleteEntry(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	_, ok := r.entries[id]
	r.mu.Unlock()
	r.write(ctx, func() {
		delete(r.entries, id)
		for txID, tx := range r.txs {
			if tx.EntryID == id {
				delete(r.txs, txID)
			}
		}
	})
	return ok, nil
}

func (r *memRepo) ExistsBySymbol(ctx context.Context, symbol string) (bool, error) {
	_, err := r.GetEntryBySymbol(ctx, symbol)
	return err == nil, nil
}

func (r *memRepo) CreateTransaction(ctx context.Context, tx *Transaction) error {
	c := *tx
	r.write(ctx, func() { r.txs[c.ID] = &c })
	return nil
}

func (r *memRepo) GetTransaction(_ context.Context, id uuid.UUID) (*Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	c := *tx
	return &c, nil
}

func (r *memRepo) ListTransactions(_ context.Context, entryID uuid.UUID) ([]*Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Transaction
	for _, tx := range r.txs {
		if tx.EntryID == entryID {
			c := *tx
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExecutedAt.Before(out[j].ExecutedAt) })
	return out, nil
}

func (r *memRepo) ListAllTransactions(_ context.Context) ([]*Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Transaction, 0, len(r.txs))
	for _, tx := range r.txs {
		c := *tx
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExecutedAt.Before(out[j].ExecutedAt) })
	return out, nil
}

func (r *memRepo) CountTransactions(ctx context.Context, entryID uuid.UUID) (int, error) {
	txs, err := r.ListTransactions(ctx, entryID)
	return len(txs), err
}

func (r *memRepo) LinkLedgerRecord(ctx context.Context, txID uuid.UUID, expenseID, incomeID *uuid.UUID) error {
	r.write(ctx, func() {
		if tx, ok := r.txs[txID]; ok {
			tx.ExpenseID = expenseID
			tx.IncomeID = incomeID
		}
	})
	return nil
}

func (r *memRepo) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	r.write(ctx, func() { delete(r.txs, id) })
	return nil
}

// fakeBooks records ledger bookings made through the journal of the caller
type fakeBooks struct {
	repo     *memRepo
	fail     error
	expenses map[uuid.UUID]decimal.Decimal
	incomes  map[uuid.UUID]decimal.Decimal
	currency map[uuid.UUID]string
}

func newFakeBooks(repo *memRepo) *fakeBooks {
	return &fakeBooks{
		repo:     repo,
		expenses: make(map[uuid.UUID]decimal.Decimal),
		incomes:  make(map[uuid.UUID]decimal.Decimal),
		currency: make(map[uuid.UUID]string),
	}
}

func (b *fakeBooks) RecordInvestmentExpense(ctx context.Context, amount decimal.Decimal, currency, _ string, _ time.Time) (uuid.UUID, error) {
	if b.fail != nil {
		return uuid.Nil, b.fail
	}
	id := uuid.New()
	b.repo.write(ctx, func() {
		b.expenses[id] = amount
		b.currency[id] = currency
	})
	return id, nil
}

func (b *fakeBooks) RecordInvestmentIncome(ctx context.Context, amount decimal.Decimal, currency, _ string, _ time.Time) (uuid.UUID, error) {
	if b.fail != nil {
		return uuid.Nil, b.fail
	}
	id := uuid.New()
	b.repo.write(ctx, func() {
		b.incomes[id] = amount
		b.currency[id] = currency
	})
	return id, nil
}

func (b *fakeBooks) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	if _, ok := b.expenses[id]; !ok {
		return errors.New("expense not found")
	}
	b.repo.write(ctx, func() { delete(b.expenses, id) })
	return nil
}

func (b *fakeBooks) DeleteIncome(ctx context.Context, id uuid.UUID) error {
	if _, ok := b.incomes[id]; !ok {
		return errors.New("income not found")
	}
	b.repo.write(ctx, func() { delete(b.incomes, id) })
	return nil
}
