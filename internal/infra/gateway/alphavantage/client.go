package alphavantage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kislikjeka/fintrack/internal/platform/market"
	"github.com/kislikjeka/fintrack/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL     = "https://www.alphavantage.co"
	requestTimeout     = 15 * time.Second
	defaultPerMinute   = 5
	compactOutputLimit = 100
)

// Client is an Alpha Vantage client returning raw response bodies. The free
// tier allows a handful of calls per minute, so every request waits on a
// token bucket first.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *logger.Logger
}

// NewClient creates a new Alpha Vantage client paced at 5 requests per minute
func NewClient(apiKey string, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	c := &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		baseURL: defaultBaseURL,
		logger:  log.WithField("component", "alphavantage"),
	}
	c.SetRateLimit(defaultPerMinute)
	return c
}

// SetBaseURL overrides the default base URL (useful for testing)
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimRight(u, "/")
}

// SetRateLimit changes the pacing; zero or less disables it
func (c *Client) SetRateLimit(perMinute int) {
	if perMinute <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 1)
		return
	}
	c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

// GlobalQuote fetches function=GLOBAL_QUOTE
func (c *Client) GlobalQuote(ctx context.Context, symbol string) ([]byte, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	return c.query(ctx, params)
}

// TimeSeriesDaily fetches function=TIME_SERIES_DAILY; more than 100 points needs outputsize=full
func (c *Client) TimeSeriesDaily(ctx context.Context, symbol string, points int) ([]byte, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("outputsize", outputSize(points))
	return c.query(ctx, params)
}

// TimeSeriesIntraday fetches function=TIME_SERIES_INTRADAY (1min, 5min, 15min, 30min, 60min)
func (c *Client) TimeSeriesIntraday(ctx context.Context, symbol, interval string, points int) ([]byte, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_INTRADAY")
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("outputsize", outputSize(points))
	return c.query(ctx, params)
}

// CurrencyExchangeRate fetches function=CURRENCY_EXCHANGE_RATE
func (c *Client) CurrencyExchangeRate(ctx context.Context, from, to string) ([]byte, error) {
	params := url.Values{}
	params.Set("function", "CURRENCY_EXCHANGE_RATE")
	params.Set("from_currency", from)
	params.Set("to_currency", to)
	return c.query(ctx, params)
}

func outputSize(points int) string {
	if points > compactOutputLimit {
		return "full"
	}
	return "compact"
}

func (c *Client) query(ctx context.Context, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params.Set("apikey", c.apiKey)
	reqURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", market.RedactQueryParam(err, "apikey"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("API error", "function", params.Get("function"), "status_code", resp.StatusCode)
		return nil, &market.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	c.logger.Debug("API response", "function", params.Get("function"), "duration_ms", time.Since(start).Milliseconds())
	return body, nil
}
