package alphavantage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/kislikjeka/fintrack/internal/platform/fx"
	"github.com/shopspring/decimal"
)

const exchangeRatePath = `$["Realtime Currency Exchange Rate"]["5. Exchange Rate"]`

// RateProvider adapts Client to fx.Provider
type RateProvider struct {
	client *Client
}

// NewRateProvider creates a new adapter
func NewRateProvider(client *Client) *RateProvider {
	return &RateProvider{client: client}
}

// Rate returns how many units of quote one unit of base buys
func (p *RateProvider) Rate(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	body, err := p.client.CurrencyExchangeRate(ctx, strings.ToUpper(base), strings.ToUpper(quote))
	if err != nil {
		return decimal.Zero, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode exchange rate: %w", err)
	}

	v, err := jsonpath.Get(exchangeRatePath, root)
	if err != nil {
		return decimal.Zero, fmt.Errorf("exchange rate %s/%s missing from response: %w", base, quote, err)
	}
	rate, err := decimal.NewFromString(fmt.Sprint(v))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid exchange rate %v: %w", v, err)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid exchange rate %s", rate)
	}
	return rate, nil
}

// Ensure RateProvider implements fx.Provider
var _ fx.Provider = (*RateProvider)(nil)
