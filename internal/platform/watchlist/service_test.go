package watchlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kislikjeka/fintrack/internal/platform/asset"
	apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestService() (*Service, *memRepo, *fakeBooks) {
	repo := newMemRepo()
	books := newFakeBooks(repo)
	return NewService(repo, repo, books, nil), repo, books
}

func mustAdd(t *testing.T, svc *Service, symbol string) *Entry {
	t.Helper()
	e, err := svc.AddEntry(context.Background(), AddEntryInput{Symbol: symbol})
	require.NoError(t, err)
	return e
}

func record(t *testing.T, svc *Service, entryID uuid.UUID, dir Direction, qty, price string) *Transaction {
	t.Helper()
	tx, err := svc.RecordTransaction(context.Background(), RecordInput{
		EntryID:   entryID,
		Direction: dir,
		Quantity:  d(qty),
		UnitPrice: d(price),
	})
	require.NoError(t, err)
	return tx
}

func TestService_AddEntry(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		in       AddEntryInput
		wantSym  string
		wantName string
		wantType asset.Type
	}{
		{"known crypto", AddEntryInput{Symbol: " btc "}, "BTC", "Bitcoin", asset.Crypto},
		{"known stock", AddEntryInput{Symbol: "aapl"}, "AAPL", "Apple Inc.", asset.Stock},
		{"short unknown is stock", AddEntryInput{Symbol: "ZZZ"}, "ZZZ", "ZZZ", asset.Stock},
		{"long unknown is crypto", AddEntryInput{Symbol: "PEPECOIN"}, "PEPECOIN", "PEPECOIN", asset.Crypto},
		{"explicit type and name", AddEntryInput{Symbol: "ABCD", Name: "Custom", Type: asset.Crypto}, "ABCD", "Custom", asset.Crypto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService()

			e, err := svc.AddEntry(ctx, tt.in)

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, e.ID)
			assert.Equal(t, tt.wantSym, e.Symbol)
			assert.Equal(t, tt.wantName, e.Name)
			assert.Equal(t, tt.wantType, e.Type)
		})
	}
}

func TestService_AddEntry_Validation(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.AddEntry(context.Background(), AddEntryInput{Symbol: "   "})

	assert.ErrorIs(t, err, ErrMissingSymbol)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
	assert.Empty(t, repo.entries)
}

func TestService_AddEntry_DuplicateIsCaseInsensitive(t *testing.T) {
	svc, repo, _ := newTestService()
	mustAdd(t, svc, "AAPL")

	_, err := svc.AddEntry(context.Background(), AddEntryInput{Symbol: "aapl"})

	assert.ErrorIs(t, err, ErrDuplicateSymbol)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
	assert.Len(t, repo.entries, 1)
}

// raceRepo reports no existing symbol so the storage-level guard fires
type raceRepo struct{ *memRepo }

func (r raceRepo) ExistsBySymbol(context.Context, string) (bool, error) { return false, nil }

func TestService_AddEntry_StorageUniqueViolation(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(raceRepo{repo}, repo, newFakeBooks(repo), nil)
	mustAdd(t, svc, "ETH")

	_, err := svc.AddEntry(context.Background(), AddEntryInput{Symbol: "eth"})

	assert.ErrorIs(t, err, ErrDuplicateSymbol)
}

func TestService_UpdateEntry(t *testing.T) {
	svc, _, _ := newTestService()
	e := mustAdd(t, svc, "SOL")
	name, notes := "Solana (staked)", "  long term "
	stock := asset.Stock

	updated, err := svc.UpdateEntry(context.Background(), e.ID, UpdateEntryInput{Name: &name, Notes: &notes, Type: &stock})

	require.NoError(t, err)
	assert.Equal(t, "Solana (staked)", updated.Name)
	assert.Equal(t, "long term", updated.Notes)
	assert.Equal(t, asset.Stock, updated.Type)

	_, err = svc.UpdateEntry(context.Background(), uuid.New(), UpdateEntryInput{Name: &name})
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestService_RemoveEntry(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	removed, err := svc.RemoveEntry(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, removed, "unknown id")

	empty := mustAdd(t, svc, "DOT")
	removed, err = svc.RemoveEntry(ctx, empty.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	held := mustAdd(t, svc, "BTC")
	record(t, svc, held.ID, DirectionBuy, "1", "100")
	removed, err = svc.RemoveEntry(ctx, held.ID)
	assert.False(t, removed)
	assert.ErrorIs(t, err, ErrHasTransactions)
	assert.Equal(t, apperrors.CodeConsistency, apperrors.CodeOf(err))

	_, err = svc.GetEntry(ctx, held.ID)
	assert.NoError(t, err, "entry kept")
}

func TestService_RecordTransaction_BooksLedger(t *testing.T) {
	svc, repo, books := newTestService()
	e := mustAdd(t, svc, "BTC")

	buy := record(t, svc, e.ID, DirectionBuy, "0.5", "40000")
	sell := record(t, svc, e.ID, DirectionSell, "0.2", "50000")

	assert.True(t, buy.Total.Equal(d("20000")))
	require.NotNil(t, buy.ExpenseID)
	assert.Nil(t, buy.IncomeID)
	assert.True(t, books.expenses[*buy.ExpenseID].Equal(d("20000")))

	require.NotNil(t, sell.IncomeID)
	assert.Nil(t, sell.ExpenseID)
	assert.True(t, books.incomes[*sell.IncomeID].Equal(d("10000")))

	stored, err := repo.GetTransaction(context.Background(), buy.ID)
	require.NoError(t, err)
	assert.Equal(t, buy.ExpenseID, stored.ExpenseID, "link persisted")
	assert.Equal(t, 2, repo.commits)
}

func TestService_RecordTransaction_BooksInPriceCurrency(t *testing.T) {
	svc, _, books := newTestService()
	e := mustAdd(t, svc, "AAPL")

	usd := record(t, svc, e.ID, DirectionBuy, "5", "200")
	gbp, err := svc.RecordTransaction(context.Background(), RecordInput{
		EntryID: e.ID, Direction: DirectionSell, Quantity: d("1"), UnitPrice: d("180"), Currency: " gbp ",
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultCurrency, usd.Currency)
	assert.Equal(t, "USD", books.currency[*usd.ExpenseID])
	assert.Equal(t, "GBP", gbp.Currency)
	assert.Equal(t, "GBP", books.currency[*gbp.IncomeID])

	_, err = svc.RecordTransaction(context.Background(), RecordInput{
		EntryID: e.ID, Direction: DirectionBuy, Quantity: d("1"), UnitPrice: d("1"), Currency: "DOLLAR",
	})
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestService_RecordTransaction_Validation(t *testing.T) {
	svc, repo, books := newTestService()
	e := mustAdd(t, svc, "ETH")

	tests := []struct {
		name string
		in   RecordInput
		err  error
	}{
		{"zero quantity", RecordInput{EntryID: e.ID, Direction: DirectionBuy, Quantity: d("0"), UnitPrice: d("1")}, ErrInvalidQuantity},
		{"negative quantity", RecordInput{EntryID: e.ID, Direction: DirectionBuy, Quantity: d("-1"), UnitPrice: d("1")}, ErrInvalidQuantity},
		{"zero price", RecordInput{EntryID: e.ID, Direction: DirectionSell, Quantity: d("1"), UnitPrice: d("0")}, ErrInvalidPrice},
		{"bad direction", RecordInput{EntryID: e.ID, Direction: "HOLD", Quantity: d("1"), UnitPrice: d("1")}, ErrInvalidDirection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordTransaction(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.Empty(t, repo.txs, "nothing persisted")
	assert.Empty(t, books.expenses)
}

func TestService_RecordTransaction_UnknownEntry(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.RecordTransaction(context.Background(), RecordInput{
		EntryID: uuid.New(), Direction: DirectionBuy, Quantity: d("1"), UnitPrice: d("1"),
	})

	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestService_RecordTransaction_RollsBackOnBookkeepingFailure(t *testing.T) {
	svc, repo, books := newTestService()
	e := mustAdd(t, svc, "AAPL")
	books.fail = errors.New("ledger unavailable")

	_, err := svc.RecordTransaction(context.Background(), RecordInput{
		EntryID: e.ID, Direction: DirectionBuy, Quantity: d("10"), UnitPrice: d("150"),
	})

	require.Error(t, err)
	assert.Empty(t, repo.txs, "transaction rolled back with the expense")
	assert.Empty(t, books.expenses)
	assert.Equal(t, 1, repo.rollbacks)
	assert.Equal(t, 0, repo.commits)
}

func TestService_DeleteTransaction(t *testing.T) {
	ctx := context.Background()
	svc, repo, books := newTestService()
	e := mustAdd(t, svc, "BTC")
	tx := record(t, svc, e.ID, DirectionBuy, "1", "10")

	require.NoError(t, svc.DeleteTransaction(ctx, tx.ID))

	assert.Empty(t, repo.txs)
	assert.Empty(t, books.expenses)
	assert.ErrorIs(t, svc.DeleteTransaction(ctx, tx.ID), ErrTransactionNotFound)
}

func TestService_ComputePosition(t *testing.T) {
	svc, _, _ := newTestService()
	e := mustAdd(t, svc, "BTC")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, in := range []RecordInput{
		{Direction: DirectionBuy, Quantity: d("1"), UnitPrice: d("30000")},
		{Direction: DirectionBuy, Quantity: d("1"), UnitPrice: d("50000")},
		{Direction: DirectionSell, Quantity: d("0.5"), UnitPrice: d("60000")},
	} {
		in.EntryID = e.ID
		in.ExecutedAt = base.Add(time.Duration(i) * time.Hour)
		_, err := svc.RecordTransaction(context.Background(), in)
		require.NoError(t, err)
	}

	p, err := svc.ComputePosition(context.Background(), e.ID)

	require.NoError(t, err)
	assert.True(t, p.QuantityHeld.Equal(d("1.5")))
	assert.True(t, p.NetInvested.Equal(d("50000")))
	assert.True(t, p.AverageCost.Equal(d("40000")))
	assert.True(t, p.SoldTotal.Equal(d("30000")))
	assert.Equal(t, 3, p.TransactionCount)
	assert.False(t, p.IsClosed())
}

func TestService_ListPositions(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	btc := mustAdd(t, svc, "BTC")
	eth := mustAdd(t, svc, "ETH")
	mustAdd(t, svc, "SOL") // no transactions

	record(t, svc, btc.ID, DirectionBuy, "1", "100")
	record(t, svc, eth.ID, DirectionBuy, "2", "10")
	record(t, svc, eth.ID, DirectionSell, "2", "15")

	all, err := svc.ListPositions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	invested, err := svc.ListPositionsWithInvestment(ctx)
	require.NoError(t, err)
	require.Len(t, invested, 1)
	assert.Equal(t, "BTC", invested[0].Symbol)
}

func TestCalculatePosition(t *testing.T) {
	entry := &Entry{ID: uuid.New(), Symbol: "ETH", Type: asset.Crypto}
	tx := func(dir Direction, qty, price string) *Transaction {
		t := &Transaction{Direction: dir, Quantity: d(qty), UnitPrice: d(price)}
		t.Recalculate()
		return t
	}

	t.Run("no transactions", func(t *testing.T) {
		p := CalculatePosition(entry, nil)
		assert.True(t, p.QuantityHeld.IsZero())
		assert.True(t, p.AverageCost.IsZero())
		assert.False(t, p.IsClosed())
	})

	t.Run("sell only keeps average cost zero", func(t *testing.T) {
		p := CalculatePosition(entry, []*Transaction{tx(DirectionSell, "1", "100")})
		assert.True(t, p.AverageCost.IsZero())
		assert.True(t, p.QuantityHeld.Equal(d("-1")), "short selling allowed")
		assert.True(t, p.NetInvested.Equal(d("-100")))
	})

	t.Run("closed position", func(t *testing.T) {
		p := CalculatePosition(entry, []*Transaction{
			tx(DirectionBuy, "2", "100"),
			tx(DirectionSell, "2", "150"),
		})
		assert.True(t, p.IsClosed())
		assert.True(t, p.NetInvested.Equal(d("-100")))
		assert.False(t, p.HasInvestment())
	})

	t.Run("recalculate follows quantity", func(t *testing.T) {
		x := tx(DirectionBuy, "2", "100")
		x.Quantity = d("3")
		x.Recalculate()
		assert.True(t, x.Total.Equal(d("300")))
	})
}

func TestParseDirection(t *testing.T) {
	dir, err := ParseDirection(" buy ")
	require.NoError(t, err)
	assert.Equal(t, DirectionBuy, dir)

	_, err = ParseDirection("short")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}
