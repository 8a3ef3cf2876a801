package twelvedata

import (
	"context"
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
	defaultBaseURL = "https://api.twelvedata.com"
	requestTimeout = 10 * time.Second
	maxOutputSize  = 5000
)

// Client is a Twelve Data REST client returning raw response bodies
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *logger.Logger
}

// NewClient creates a new Twelve Data client
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
		logger:  log.WithField("component", "twelvedata"),
	}
}

// SetBaseURL overrides the default base URL (useful for testing)
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimRight(u, "/")
}

// Quote fetches /quote for a symbol
func (c *Client) Quote(ctx context.Context, symbol string) ([]byte, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	return c.get(ctx, "/quote", params)
}

// TimeSeries fetches /time_series; interval uses Twelve Data names (1min .. 1h, 1day)
func (c *Client) TimeSeries(ctx context.Context, symbol, interval string, outputSize int) ([]byte, error) {
	if outputSize > maxOutputSize {
		outputSize = maxOutputSize
	}
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("outputsize", strconv.Itoa(outputSize))
	return c.get(ctx, "/time_series", params)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("apikey", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
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
		c.logger.Warn("API error", "path", path, "status_code", resp.StatusCode)
		return nil, &market.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	c.logger.Debug("API response", "path", path, "status_code", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	return body, nil
}
