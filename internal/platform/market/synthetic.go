package market

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/shopspring/decimal"
)

// SyntheticSource is the payload source of generated prices
const SyntheticSource = "synthetic"

var hundred = decimal.NewFromInt(100)

// Synthetic produces deterministic placeholder equity prices. The same symbol
// always yields the same price and change; it is the last hop of the equity
// chain and never fails.
type Synthetic struct {
	now func() time.Time
}

// NewSynthetic creates the generator
func NewSynthetic() *Synthetic {
	return &Synthetic{now: time.Now}
}

func (s *Synthetic) Name() string { return SyntheticSource }

func seed(symbol string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(asset.NormalizeSymbol(symbol)))
	return h.Sum64()
}

// Levels returns the generated price in [50, 500) and day change percent in [-5, 5)
func (s *Synthetic) Levels(symbol string) (price, changePercent decimal.Decimal) {
	h := seed(symbol)
	price = decimal.New(int64(h%45000), -2).Add(decimal.NewFromInt(50))
	changePercent = decimal.New(int64((h>>20)%1000), -2).Sub(decimal.NewFromInt(5))
	return price, changePercent
}

type syntheticQuote struct {
	Symbol        string `json:"symbol"`
	Close         string `json:"close"`
	Change        string `json:"change"`
	PercentChange string `json:"percent_change"`
	PreviousClose string `json:"previous_close"`
	Currency      string `json:"currency"`
}

type syntheticRow struct {
	Datetime string `json:"datetime"`
	Close    string `json:"close"`
}

type syntheticSeries struct {
	Symbol   string         `json:"symbol"`
	Currency string         `json:"currency"`
	Values   []syntheticRow `json:"values"`
}

// Current renders a quote in the equity layout the normalizer reads
func (s *Synthetic) Current(_ context.Context, symbol, _ string) ([]byte, error) {
	price, pct := s.Levels(symbol)
	change := price.Mul(pct).Div(hundred.Add(pct))
	return json.Marshal(syntheticQuote{
		Symbol:        asset.NormalizeSymbol(symbol),
		Close:         price.StringFixed(2),
		Change:        change.StringFixed(4),
		PercentChange: pct.StringFixed(2),
		PreviousClose: price.Sub(change).StringFixed(4),
		Currency:      "USD",
	})
}

// History renders a random walk seeded by the symbol that ends at the current
// synthetic price.
func (s *Synthetic) History(_ context.Context, symbol, _ string, req HistoryRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	price, _ := s.Levels(symbol)
	n := req.Points()
	step := req.Interval.Step()
	rng := rand.New(rand.NewSource(int64(seed(symbol))))

	layout := "2006-01-02 15:04:05"
	end := s.now().UTC().Truncate(step)
	if req.Interval == Interval1Day {
		layout = "2006-01-02"
		end = s.now().UTC().Truncate(24 * time.Hour)
	}

	rows := make([]syntheticRow, n)
	p := price
	for i := n - 1; i >= 0; i-- {
		rows[i] = syntheticRow{
			Datetime: end.Add(-time.Duration(n-1-i) * step).Format(layout),
			Close:    p.StringFixed(4),
		}
		// walk backwards by up to +/-2% per sample
		drift := decimal.NewFromFloat(rng.Float64()*4 - 2).Div(hundred)
		p = p.Div(decimal.NewFromInt(1).Add(drift))
	}

	return json.Marshal(syntheticSeries{
		Symbol:   asset.NormalizeSymbol(symbol),
		Currency: "USD",
		Values:   rows,
	})
}

var _ Provider = (*Synthetic)(nil)
