package quote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/shopspring/decimal"
)

var (
	defaultCurrencyKeys = []string{"usd", "USD", "eur", "EUR", "gbp", "GBP", "price"}
	defaultChangeKeys   = []string{"usd_24h_change", "price_change_percentage_24h", "change_24h", "percent_change"}
	equityPriceKeys     = []string{"close", "price", "last", "current_price", "open"}
	equityEnvelopes     = []string{"Global Quote", "quote", "data"}

	hundred = decimal.NewFromInt(100)

	// "05. price" -> "price"
	numberedKey = regexp.MustCompile(`^\d+\.\s*`)
)

// Normalizer turns provider payloads into canonical quotes and series.
type Normalizer struct {
	currencyKeys []string
	changeKeys   []string
	priceKeys    []string
}

// NewNormalizer creates a normalizer with the default field orders
func NewNormalizer() *Normalizer {
	return &Normalizer{
		currencyKeys: defaultCurrencyKeys,
		changeKeys:   defaultChangeKeys,
		priceKeys:    equityPriceKeys,
	}
}

// Normalize extracts a quote for symbol from a raw provider payload
func (n *Normalizer) Normalize(raw []byte, t asset.Type, symbol string) (*Quote, error) {
	return n.NormalizeMarket(raw, t, symbol, "")
}

// NormalizeMarket is Normalize with a preferred quote currency (e.g. "eur"),
// tried before the default currency keys.
func (n *Normalizer) NormalizeMarket(raw []byte, t asset.Type, symbol, market string) (*Quote, error) {
	root, err := decode(raw)
	if err != nil {
		return nil, err
	}
	symbol = asset.NormalizeSymbol(symbol)

	return asset.Match(t,
		func() (*Quote, error) { return n.crypto(root, symbol, market) },
		func() (*Quote, error) { return n.equity(root, symbol, market) },
	)
}

func (n *Normalizer) crypto(root any, symbol, market string) (*Quote, error) {
	obj, ok := root.(map[string]any)
	if !ok || len(obj) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrAssetNotFound)
	}

	id := asset.CoinGeckoID(symbol)
	data, found := lookup(root, id)
	if !found {
		// some providers echo a different id than the one requested
		if len(obj) != 1 {
			return nil, fmt.Errorf("%s (%s): %w", symbol, id, ErrAssetNotFound)
		}
		for _, v := range obj {
			data = v
		}
	}

	fields, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("no price data for %s: %w", symbol, ErrPriceNotFound)
	}

	keys := n.currencyKeys
	if m := strings.TrimSpace(market); m != "" {
		keys = append([]string{strings.ToLower(m), strings.ToUpper(m)}, keys...)
	}
	price, key, ok := firstPrice(fields, keys)
	if !ok {
		return nil, fmt.Errorf("no price data for %s: %w", symbol, ErrPriceNotFound)
	}

	q := &Quote{
		Symbol:   symbol,
		Type:     asset.Crypto,
		Price:    price,
		Currency: currencyOf(key, market),
	}

	changeKeys := n.changeKeys
	if key != "price" {
		changeKeys = append([]string{strings.ToLower(key) + "_24h_change"}, changeKeys...)
	}
	if pct, _, ok := firstDecimal(fields, changeKeys); ok {
		q.ChangePercent = &pct
		// price already includes the move: p0 = p / (1 + pct/100)
		if denom := hundred.Add(pct); !denom.IsZero() {
			change := price.Mul(pct).Div(denom)
			q.Change = &change
		}
	}

	return q, nil
}

func (n *Normalizer) equity(root any, symbol, market string) (*Quote, error) {
	fields := canonicalFields(unwrap(root))
	if len(fields) == 0 {
		return nil, fmt.Errorf("no price data for %s: %w", symbol, ErrPriceNotFound)
	}

	price, _, ok := firstPrice(fields, n.priceKeys)
	if !ok {
		return nil, fmt.Errorf("no price data for %s: %w", symbol, ErrPriceNotFound)
	}

	q := &Quote{
		Symbol:   symbol,
		Type:     asset.Stock,
		Price:    price,
		Currency: "USD",
	}
	if c, ok := lookup(fields, "currency"); ok {
		if s, ok := c.(string); ok && s != "" {
			q.Currency = strings.ToUpper(s)
		}
	} else if market != "" {
		q.Currency = strings.ToUpper(market)
	}

	change, hasChange := decimalField(fields, "change")
	if hasChange {
		q.Change = &change
	}
	if pct, ok := decimalField(fields, "percent_change"); ok {
		q.ChangePercent = &pct
	} else if prev, ok := decimalField(fields, "previous_close"); ok && hasChange && !prev.IsZero() {
		pct := change.Div(prev).Mul(hundred)
		q.ChangePercent = &pct
	}

	return q, nil
}

// decode parses a payload keeping numbers as json.Number
func decode(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return v, nil
}

// lookup reads a top-level key through jsonpath; keys may contain spaces and dots
func lookup(v any, key string) (any, bool) {
	got, err := jsonpath.Get(fmt.Sprintf("$[%q]", key), v)
	if err != nil || got == nil {
		return nil, false
	}
	return got, true
}

func decimalField(fields map[string]any, key string) (decimal.Decimal, bool) {
	v, ok := lookup(fields, key)
	if !ok {
		return decimal.Zero, false
	}
	return toDecimal(v)
}

// firstDecimal returns the first key in order whose value parses as a number
func firstDecimal(fields map[string]any, keys []string) (decimal.Decimal, string, bool) {
	for _, k := range keys {
		if d, ok := decimalField(fields, k); ok {
			return d, k, true
		}
	}
	return decimal.Zero, "", false
}

// firstPrice is firstDecimal skipping zero and negative values
func firstPrice(fields map[string]any, keys []string) (decimal.Decimal, string, bool) {
	for _, k := range keys {
		if d, ok := decimalField(fields, k); ok && d.IsPositive() {
			return d, k, true
		}
	}
	return decimal.Zero, "", false
}

// unwrap descends through single-object envelopes such as {"Global Quote": {...}}
func unwrap(root any) map[string]any {
	obj, ok := root.(map[string]any)
	if !ok {
		return nil
	}
	for depth := 0; depth < 3; depth++ {
		next, ok := envelope(obj)
		if !ok {
			break
		}
		obj = next
	}
	return obj
}

func envelope(obj map[string]any) (map[string]any, bool) {
	for _, name := range equityEnvelopes {
		if v, ok := lookup(obj, name); ok {
			if inner, ok := v.(map[string]any); ok {
				return inner, true
			}
		}
	}
	if len(obj) == 1 {
		for _, v := range obj {
			inner, ok := v.(map[string]any)
			return inner, ok
		}
	}
	return nil, false
}

// canonicalFields maps provider spellings onto one vocabulary:
// "05. price" -> price, "10. change percent" -> percent_change, "Previous Close" -> previous_close.
func canonicalFields(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		key := numberedKey.ReplaceAllString(strings.TrimSpace(k), "")
		key = strings.ToLower(strings.Join(strings.Fields(key), "_"))
		switch key {
		case "change_percent", "changepercent", "change_percentage":
			key = "percent_change"
		case "previousclose", "prev_close":
			key = "previous_close"
		}
		if _, exists := out[key]; !exists {
			out[key] = v
		}
	}
	return out
}

func currencyOf(key, market string) string {
	if key == "price" || key == "" {
		if market != "" {
			return strings.ToUpper(market)
		}
		return "USD"
	}
	return strings.ToUpper(key)
}
