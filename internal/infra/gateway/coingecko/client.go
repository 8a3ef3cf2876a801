package coingecko

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kislikjeka/fintrack/internal/platform/market"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

const (
	defaultBaseURL      = "https://api.coingecko.com/api/v3"
	headerAPIKey        = "x-cg-demo-api-key"
	requestTimeout      = 10 * time.Second
	rateLimitRetryAfter = 60 * time.Second
)

// Client is a CoinGecko API client returning raw response bodies
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *logger.Logger
}

// NewClient creates a new CoinGecko API client
func NewClient(apiKey string, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		baseURL: defaultBaseURL,
		logger:  log.WithField("component", "coingecko"),
	}
}

// SetBaseURL overrides the default base URL (useful for testing)
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimRight(u, "/")
}

// SimplePrice fetches /simple/price for the given coin ids, including the
// 24h change: {"bitcoin":{"usd":67000,"usd_24h_change":1.2}}
func (c *Client) SimplePrice(ctx context.Context, ids []string, vsCurrency string) ([]byte, error) {
	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", vsCurrency)
	params.Set("include_24hr_change", "true")
	params.Set("precision", "full")

	return c.get(ctx, "/simple/price", params)
}

// MarketChart fetches /coins/{id}/market_chart: {"prices":[[ms, price], ...]}
func (c *Client) MarketChart(ctx context.Context, id, vsCurrency string, days int, daily bool) ([]byte, error) {
	params := url.Values{}
	params.Set("vs_currency", vsCurrency)
	params.Set("days", strconv.Itoa(days))
	if daily {
		params.Set("interval", "daily")
	}

	return c.get(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", params)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set(headerAPIKey, c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{
			RetryAfter: rateLimitRetryAfter,
			Message:    "CoinGecko API rate limit exceeded",
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &market.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	c.logger.Debug("API response", "path", path, "status_code", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	return body, nil
}

// RateLimitError represents a rate limit error from CoinGecko API
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s (retry after %s)", e.Message, e.RetryAfter)
}

// IsRateLimitError checks if an error is (or wraps) a rate limit error
func IsRateLimitError(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}
