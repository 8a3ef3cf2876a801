package alphavantage_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/fintrack/internal/infra/gateway/alphavantage"
	"github.com/kislikjeka/fintrack/internal/platform/market"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *alphavantage.Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	client := alphavantage.NewClient("av-key", logger.Discard())
	client.SetBaseURL(server.URL)
	return client
}

func TestProvider_Current(t *testing.T) {
	var path, function, symbol, apiKey string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		function = r.URL.Query().Get("function")
		symbol = r.URL.Query().Get("symbol")
		apiKey = r.URL.Query().Get("apikey")
		_, _ = w.Write([]byte(`{"Global Quote":{"01. symbol":"IBM","05. price":"170.1200"}}`))
	})

	body, err := alphavantage.NewProvider(client).Current(context.Background(), "ibm", "")

	require.NoError(t, err)
	assert.Contains(t, string(body), "Global Quote")
	assert.Equal(t, "/query", path)
	assert.Equal(t, "GLOBAL_QUOTE", function)
	assert.Equal(t, "IBM", symbol)
	assert.Equal(t, "av-key", apiKey)
}

func TestProvider_History(t *testing.T) {
	var function, interval, size string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		function = r.URL.Query().Get("function")
		interval = r.URL.Query().Get("interval")
		size = r.URL.Query().Get("outputsize")
		_, _ = w.Write([]byte(`{"Time Series (Daily)":{}}`))
	})
	client.SetRateLimit(0)
	p := alphavantage.NewProvider(client)

	_, err := p.History(context.Background(), "IBM", "", market.Daily(market.Period1M))
	require.NoError(t, err)
	assert.Equal(t, "TIME_SERIES_DAILY", function)
	assert.Equal(t, "compact", size)

	_, err = p.History(context.Background(), "IBM", "", market.Daily(market.Period1Y))
	require.NoError(t, err)
	assert.Equal(t, "full", size)

	_, err = p.History(context.Background(), "IBM", "", market.Intraday(market.Interval15Min))
	require.NoError(t, err)
	assert.Equal(t, "TIME_SERIES_INTRADAY", function)
	assert.Equal(t, "15min", interval)
}

func TestClient_StatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GlobalQuote(context.Background(), "IBM")

	var se *market.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
}

func TestClient_RateLimitWaitsOnContext(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	})
	client.SetRateLimit(1)

	_, err := client.GlobalQuote(context.Background(), "IBM")
	require.NoError(t, err)

	// second call would wait a minute for a token
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.GlobalQuote(ctx, "IBM")

	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRateProvider_Rate(t *testing.T) {
	var from, to string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		from = r.URL.Query().Get("from_currency")
		to = r.URL.Query().Get("to_currency")
		_, _ = w.Write([]byte(`{"Realtime Currency Exchange Rate":{"1. From_Currency Code":"EUR","3. To_Currency Code":"USD","5. Exchange Rate":"1.08420000"}}`))
	})

	rate, err := alphavantage.NewRateProvider(client).Rate(context.Background(), "eur", "usd")

	require.NoError(t, err)
	assert.Equal(t, "1.0842", rate.String())
	assert.Equal(t, "EUR", from)
	assert.Equal(t, "USD", to)
}

func TestRateProvider_MissingRate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Note":"call frequency exceeded"}`))
	})

	_, err := alphavantage.NewRateProvider(client).Rate(context.Background(), "EUR", "GBP")

	assert.Error(t, err)
}

func TestClient_TransportErrorHidesAPIKey(t *testing.T) {
	client := alphavantage.NewClient("av-secret-key", logger.Discard())
	client.SetBaseURL("http://127.0.0.1:1")

	_, err := alphavantage.NewProvider(client).Current(context.Background(), "IBM", "")

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "av-secret-key")
	assert.Contains(t, err.Error(), "apikey=REDACTED")
}
