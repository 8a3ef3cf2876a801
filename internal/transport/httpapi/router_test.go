package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/kislikjeka/fintrack/internal/platform/auth"
	"github.com/kislikjeka/fintrack/internal/platform/finance"
	"github.com/kislikjeka/fintrack/internal/platform/fx"
	"github.com/kislikjeka/fintrack/internal/platform/market"
	"github.com/kislikjeka/fintrack/internal/platform/pricing"
	"github.com/kislikjeka/fintrack/internal/platform/quote"
	"github.com/kislikjeka/fintrack/internal/platform/watchlist"
	"github.com/kislikjeka/fintrack/internal/transport/httpapi"
	"github.com/kislikjeka/fintrack/internal/transport/httpapi/handler"
	"github.com/kislikjeka/fintrack/internal/transport/httpapi/middleware"
)

// MockWatchlistService is a mock implementation of WatchlistServiceInterface
type MockWatchlistService struct {
	mock.Mock
}

func (m *MockWatchlistService) AddEntry(ctx context.Context, in watchlist.AddEntryInput) (*watchlist.Entry, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*watchlist.Entry), args.Error(1)
}

func (m *MockWatchlistService) UpdateEntry(ctx context.Context, id uuid.UUID, in watchlist.UpdateEntryInput) (*watchlist.Entry, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*watchlist.Entry), args.Error(1)
}

func (m *MockWatchlistService) GetEntry(ctx context.Context, id uuid.UUID) (*watchlist.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*watchlist.Entry), args.Error(1)
}

func (m *MockWatchlistService) ListEntries(ctx context.Context) ([]*watchlist.Entry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*watchlist.Entry), args.Error(1)
}

func (m *MockWatchlistService) RemoveEntry(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockWatchlistService) RecordTransaction(ctx context.Context, in watchlist.RecordInput) (*watchlist.Transaction, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*watchlist.Transaction), args.Error(1)
}

func (m *MockWatchlistService) ListTransactions(ctx context.Context, entryID uuid.UUID) ([]*watchlist.Transaction, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*watchlist.Transaction), args.Error(1)
}

func (m *MockWatchlistService) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockWatchlistService) ComputePosition(ctx context.Context, entryID uuid.UUID) (*watchlist.Position, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*watchlist.Position), args.Error(1)
}

// fakePricing answers from fixed quotes; symbols without one fail upstream
type fakePricing struct {
	quotes map[string]*quote.Quote
}

func (f *fakePricing) Quote(_ context.Context, symbol string, _ asset.Type, _ string) (*quote.Quote, error) {
	if q, ok := f.quotes[asset.NormalizeSymbol(symbol)]; ok {
		return q, nil
	}
	return nil, market.ErrAllProvidersFailed
}

func (f *fakePricing) Quotes(ctx context.Context, reqs []market.Request) map[string]pricing.Outcome {
	out := make(map[string]pricing.Outcome, len(reqs))
	for _, r := range reqs {
		q, err := f.Quote(ctx, r.Symbol, r.Type, r.Market)
		out[asset.NormalizeSymbol(r.Symbol)] = pricing.Outcome{Quote: q, Err: err}
	}
	return out
}

func (f *fakePricing) History(_ context.Context, symbol string, t asset.Type, _ string, req market.HistoryRequest) (*quote.Series, error) {
	return &quote.Series{Symbol: symbol, Type: t, Interval: string(req.Interval), Synthetic: true}, nil
}

// staticSnapshots serves saved quotes
type staticSnapshots map[string]*quote.Quote

func (s staticSnapshots) GetMany(_ context.Context, symbols []string) (map[string]*quote.Quote, error) {
	out := map[string]*quote.Quote{}
	for _, sym := range symbols {
		if q, ok := s[sym]; ok {
			out[sym] = q
		}
	}
	return out, nil
}

// memLedger is an in-memory finance.Repository
type memLedger struct {
	records map[uuid.UUID]*finance.Record
}

func (m *memLedger) Create(_ context.Context, r *finance.Record) error {
	m.records[r.ID] = r
	return nil
}

func (m *memLedger) Get(_ context.Context, kind finance.Kind, id uuid.UUID) (*finance.Record, error) {
	r, ok := m.records[id]
	if !ok || r.Kind != kind {
		return nil, finance.ErrRecordNotFound
	}
	return r, nil
}

func (m *memLedger) List(_ context.Context, kind finance.Kind, _ finance.ListFilter) ([]*finance.Record, error) {
	var out []*finance.Record
	for _, r := range m.records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memLedger) Update(_ context.Context, r *finance.Record) error {
	m.records[r.ID] = r
	return nil
}

func (m *memLedger) Delete(_ context.Context, kind finance.Kind, id uuid.UUID) (bool, error) {
	r, ok := m.records[id]
	if !ok || r.Kind != kind {
		return false, nil
	}
	delete(m.records, id)
	return true, nil
}

func (m *memLedger) Aggregate(_ context.Context, kind finance.Kind, _ finance.AggregateFilter) ([]finance.Bucket, error) {
	var out []finance.Bucket
	for _, r := range m.records {
		if r.Kind == kind {
			out = append(out, finance.Bucket{Currency: r.Currency, Category: r.Category, Month: int(r.Date.Month()), Total: r.Amount})
		}
	}
	return out, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Detail  string          `json:"detail"`
}

type testServer struct {
	router    http.Handler
	watchlist *MockWatchlistService
}

func newTestServer(t *testing.T, mutate func(*httpapi.Config)) *testServer {
	t.Helper()
	wl := new(MockWatchlistService)
	prices := &fakePricing{quotes: map[string]*quote.Quote{
		"AAPL": {Symbol: "AAPL", Type: asset.Stock, Price: decimal.RequireFromString("190.5"), Currency: "USD", Source: "twelvedata"},
	}}
	snapshots := staticSnapshots{
		"BTC": {Symbol: "BTC", Type: asset.Crypto, Price: decimal.NewFromInt(50000), Currency: "USD", Source: "coingecko"},
	}
	rates := fx.NewService()
	books := finance.NewService(&memLedger{records: map[uuid.UUID]*finance.Record{}}, rates, "EUR", nil)

	cfg := httpapi.Config{
		ExposeErrorDetail: true,
		WatchlistHandler:  handler.NewWatchlistHandler(wl, snapshots, prices, nil),
		AssetHandler:      handler.NewAssetHandler(prices, wl),
		FinanceHandler:    handler.NewFinanceHandler(books),
		FXHandler:         handler.NewFXHandler(rates),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return &testServer{router: httpapi.NewRouter(cfg), watchlist: wl}
}

func (s *testServer) do(t *testing.T, method, path string, body any, header ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t, nil)

	rec, _ := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWatchlist_AddEntry(t *testing.T) {
	s := newTestServer(t, nil)
	entry := &watchlist.Entry{ID: uuid.New(), Symbol: "BTC", Name: "Bitcoin", Type: asset.Crypto}
	s.watchlist.On("AddEntry", mock.Anything, watchlist.AddEntryInput{Symbol: "btc", Type: asset.Crypto}).Return(entry, nil)

	// Execute
	rec, env := s.do(t, http.MethodPost, "/api/v1/watchlist", map[string]string{"symbol": "btc", "type": "crypto"})

	// Verify
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	var got watchlist.Entry
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "BTC", got.Symbol)
	assert.Equal(t, asset.Crypto, got.Type)
	s.watchlist.AssertExpectations(t)
}

func TestWatchlist_AddEntryErrors(t *testing.T) {
	s := newTestServer(t, nil)
	s.watchlist.On("AddEntry", mock.Anything, mock.Anything).Return(nil, watchlist.ErrDuplicateSymbol)

	rec, env := s.do(t, http.MethodPost, "/api/v1/watchlist", map[string]string{"symbol": "BTC"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "CONFLICT", env.Code)
	assert.Equal(t, "symbol already in watchlist", env.Message)

	rec, env = s.do(t, http.MethodPost, "/api/v1/watchlist", map[string]string{"symbol": "BTC", "type": "bond"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestWatchlist_InvalidID(t *testing.T) {
	s := newTestServer(t, nil)

	rec, env := s.do(t, http.MethodGet, "/api/v1/watchlist/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid id", env.Message)
}

func TestWatchlist_RemoveMissingEntry(t *testing.T) {
	s := newTestServer(t, nil)
	id := uuid.New()
	s.watchlist.On("RemoveEntry", mock.Anything, id).Return(false, nil)

	rec, env := s.do(t, http.MethodDelete, "/api/v1/watchlist/"+id.String(), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestWatchlist_RemoveWithTransactionsConflicts(t *testing.T) {
	s := newTestServer(t, nil)
	id := uuid.New()
	s.watchlist.On("RemoveEntry", mock.Anything, id).Return(false, watchlist.ErrHasTransactions)

	rec, env := s.do(t, http.MethodDelete, "/api/v1/watchlist/"+id.String(), nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONSISTENCY_ERROR", env.Code)
}

func TestErrorDetail_OnlyWhenEnabled(t *testing.T) {
	boom := errors.New("pq: connection refused")

	s := newTestServer(t, nil)
	s.watchlist.On("ListEntries", mock.Anything).Return(nil, boom)
	rec, env := s.do(t, http.MethodGet, "/api/v1/watchlist", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", env.Message)
	assert.Equal(t, "INTERNAL_ERROR", env.Code)
	assert.Equal(t, "pq: connection refused", env.Detail)

	s = newTestServer(t, func(c *httpapi.Config) { c.ExposeErrorDetail = false })
	s.watchlist.On("ListEntries", mock.Anything).Return(nil, boom)
	_, env = s.do(t, http.MethodGet, "/api/v1/watchlist", nil)
	assert.Equal(t, "internal server error", env.Message)
	assert.Empty(t, env.Detail)
}

func TestWatchlist_WithPrices(t *testing.T) {
	s := newTestServer(t, nil)
	s.watchlist.On("ListEntries", mock.Anything).Return([]*watchlist.Entry{
		{ID: uuid.New(), Symbol: "AAPL", Type: asset.Stock},
		{ID: uuid.New(), Symbol: "BTC", Type: asset.Crypto},
		{ID: uuid.New(), Symbol: "XYZ", Type: asset.Stock},
	}, nil)

	// Execute
	rec, env := s.do(t, http.MethodGet, "/api/v1/watchlist/with-prices", nil)

	// Verify
	require.Equal(t, http.StatusOK, rec.Code)
	var items []struct {
		Symbol      string       `json:"symbol"`
		Quote       *quote.Quote `json:"quote"`
		PriceSource string       `json:"price_source"`
		PriceError  string       `json:"price_error"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 3)

	assert.Equal(t, "live", items[0].PriceSource)
	assert.True(t, items[0].Quote.Price.Equal(decimal.RequireFromString("190.5")))
	assert.Equal(t, "snapshot", items[1].PriceSource)
	assert.True(t, items[1].Quote.Price.Equal(decimal.NewFromInt(50000)))
	assert.Nil(t, items[2].Quote)
	assert.Equal(t, "all price providers failed", items[2].PriceError)
}

func TestWatchlist_RecordTransaction(t *testing.T) {
	s := newTestServer(t, nil)
	entryID := uuid.New()
	want := watchlist.RecordInput{
		EntryID:    entryID,
		Direction:  watchlist.DirectionBuy,
		Quantity:   decimal.RequireFromString("0.5"),
		UnitPrice:  decimal.NewFromInt(40000),
		Currency:   "usd",
		ExecutedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	s.watchlist.On("RecordTransaction", mock.Anything, mock.MatchedBy(func(in watchlist.RecordInput) bool {
		return in.EntryID == want.EntryID && in.Direction == want.Direction &&
			in.Quantity.Equal(want.Quantity) && in.UnitPrice.Equal(want.UnitPrice) &&
			in.Currency == want.Currency && in.ExecutedAt.Equal(want.ExecutedAt)
	})).Return(&watchlist.Transaction{ID: uuid.New(), EntryID: entryID, Direction: watchlist.DirectionBuy}, nil)

	rec, env := s.do(t, http.MethodPost, "/api/v1/watchlist/"+entryID.String()+"/transactions", map[string]string{
		"direction": "buy", "quantity": "0.5", "unit_price": "40000", "currency": "usd", "executed_at": "2024-01-02",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, env.Success)
	s.watchlist.AssertExpectations(t)

	rec, env = s.do(t, http.MethodPost, "/api/v1/watchlist/"+entryID.String()+"/transactions", map[string]string{
		"direction": "hold", "quantity": "1", "unit_price": "1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "direction must be BUY or SELL", env.Message)
}

func TestWatchlist_DeleteTransaction(t *testing.T) {
	s := newTestServer(t, nil)
	id := uuid.New()
	s.watchlist.On("DeleteTransaction", mock.Anything, id).Return(nil)

	rec, _ := s.do(t, http.MethodDelete, "/api/v1/transactions/"+id.String(), nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAssets_BatchPrices(t *testing.T) {
	s := newTestServer(t, nil)

	rec, env := s.do(t, http.MethodPost, "/api/v1/assets/prices", map[string]any{
		"symbols": []string{"aapl", "AAPL", "NOPE"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var results []handler.BatchPriceResult
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.Len(t, results, 2)
	assert.Equal(t, "AAPL", results[0].Symbol)
	require.NotNil(t, results[0].Quote)
	assert.Empty(t, results[0].Error)
	assert.Equal(t, "NOPE", results[1].Symbol)
	assert.Equal(t, "all price providers failed", results[1].Error)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/assets/prices", map[string]any{"symbols": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssets_PriceAndHistory(t *testing.T) {
	s := newTestServer(t, nil)

	rec, env := s.do(t, http.MethodGet, "/api/v1/assets/price/aapl?type=stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(handler.HeaderPriceSynthetic))
	var q quote.Quote
	require.NoError(t, json.Unmarshal(env.Data, &q))
	assert.Equal(t, "AAPL", q.Symbol)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/assets/price/MISSING", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/assets/intraday/AAPL?type=stock&interval=15min", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get(handler.HeaderPriceSynthetic))

	rec, env = s.do(t, http.MethodGet, "/api/v1/assets/history/AAPL?period=10y", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestAssets_SearchFlagsWatchlist(t *testing.T) {
	s := newTestServer(t, nil)
	s.watchlist.On("ListEntries", mock.Anything).Return([]*watchlist.Entry{{Symbol: "BTC", Type: asset.Crypto}}, nil)

	rec, env := s.do(t, http.MethodGet, "/api/v1/assets/search?query=BTC&type=crypto&limit=5", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var results []handler.SearchResult
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.NotEmpty(t, results)
	assert.Equal(t, "BTC", results[0].Symbol)
	assert.True(t, results[0].InWatchlist)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/assets/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFinance_ExpenseLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	// Execute
	rec, env := s.do(t, http.MethodPost, "/api/v1/finance/expenses", map[string]string{
		"amount": "42.50", "category": "Food", "date": "2024-03-05",
	})

	// Verify
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created finance.Record
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "EUR", created.Currency)
	assert.True(t, created.Date.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))

	rec, env = s.do(t, http.MethodGet, "/api/v1/finance/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var bal finance.Balance
	require.NoError(t, json.Unmarshal(env.Data, &bal))
	assert.True(t, bal.Balance.Equal(decimal.RequireFromString("-42.5")))

	rec, env = s.do(t, http.MethodGet, "/api/v1/finance/expenses/by-category", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cats []finance.CategoryTotal
	require.NoError(t, json.Unmarshal(env.Data, &cats))
	require.Len(t, cats, 1)
	assert.Equal(t, "Food", cats[0].Category)

	rec, _ = s.do(t, http.MethodDelete, "/api/v1/finance/expenses/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, env = s.do(t, http.MethodDelete, "/api/v1/finance/expenses/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestFinance_Validation(t *testing.T) {
	s := newTestServer(t, nil)

	rec, env := s.do(t, http.MethodPost, "/api/v1/finance/incomes", map[string]string{
		"amount": "10", "category": "Salary", "currency": "JPY",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/finance/incomes", map[string]string{
		"amount": "10", "category": "Salary", "date": "05/03/2024",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/finance/summary/monthly?year=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/api/v1/finance/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cats []string
	require.NoError(t, json.Unmarshal(env.Data, &cats))
	assert.Contains(t, cats, finance.CategoryInvestment)
}

func TestFX_Convert(t *testing.T) {
	s := newTestServer(t, nil)

	rec, env := s.do(t, http.MethodGet, "/api/v1/fx/convert?amount=100&from=eur&to=usd", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var res handler.ConvertResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "USD", res.To)
	assert.True(t, res.Result.Equal(decimal.NewFromInt(108)))
	assert.Equal(t, "$108.00", res.Formatted)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/fx/convert?amount=100&from=EUR&to=JPY", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/fx/convert?amount=lots&from=EUR&to=USD", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/api/v1/fx/rates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rates handler.RatesResponse
	require.NoError(t, json.Unmarshal(env.Data, &rates))
	assert.Equal(t, "EUR", rates.Base)
	assert.Len(t, rates.Rates, 3)
}

func TestAuth_ProtectsAPIWhenEnabled(t *testing.T) {
	hash, err := auth.HashPassword("hunter2-hunter2")
	require.NoError(t, err)
	svc, err := auth.NewService("0123456789abcdef0123456789abcdef", hash)
	require.NoError(t, err)

	s := newTestServer(t, func(c *httpapi.Config) {
		c.AuthHandler = handler.NewAuthHandler(svc)
		c.AuthMiddleware = middleware.Auth(svc)
	})
	s.watchlist.On("ListEntries", mock.Anything).Return([]*watchlist.Entry{}, nil)

	rec, env := s.do(t, http.MethodGet, "/api/v1/watchlist", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/auth/token", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = s.do(t, http.MethodPost, "/api/v1/auth/token", map[string]string{"password": "hunter2-hunter2"})
	require.Equal(t, http.StatusOK, rec.Code)
	var tok auth.Token
	require.NoError(t, json.Unmarshal(env.Data, &tok))
	require.NotEmpty(t, tok.AccessToken)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/watchlist", nil, "Authorization", "Bearer "+tok.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/watchlist", nil, "Authorization", "Bearer "+tok.AccessToken+"x")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// health stays public
	rec, _ = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
