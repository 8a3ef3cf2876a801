package quote

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/kislikjeka/fintrack/internal/platform/asset"
)

var seriesTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// NormalizeSeries extracts a price history from any of the supported layouts:
// {"prices": [[ms, price], ...]}, {"values": [{"datetime", "close"}, ...]} and
// {"Time Series (...)": {"<date>": {"4. close": ...}}}.
func (n *Normalizer) NormalizeSeries(raw []byte, t asset.Type, symbol string) (*Series, error) {
	if !t.Valid() {
		return nil, asset.ErrUnsupportedAssetType
	}
	root, err := decode(raw)
	if err != nil {
		return nil, err
	}
	symbol = asset.NormalizeSymbol(symbol)

	var points []Point
	switch {
	case has(root, "$.prices"):
		points = pairSeries(root)
	case has(root, "$.values"):
		points = rowSeries(root)
	default:
		table, ok := timeSeriesTable(root)
		if !ok {
			return nil, fmt.Errorf("%s: %w", symbol, ErrUnknownSeriesForm)
		}
		points = tableSeries(table)
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("no price history for %s: %w", symbol, ErrPriceNotFound)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })

	s := &Series{
		Symbol:   symbol,
		Type:     t,
		Currency: "USD",
		Points:   points,
	}
	if c, ok := lookup(root, "currency"); ok {
		if cs, ok := c.(string); ok && cs != "" {
			s.Currency = strings.ToUpper(cs)
		}
	}
	return s, nil
}

func has(root any, path string) bool {
	v, err := jsonpath.Get(path, root)
	return err == nil && v != nil
}

// pairSeries reads CoinGecko market_chart [[ms, price], ...]
func pairSeries(root any) []Point {
	v, _ := jsonpath.Get("$.prices", root)
	rows, _ := v.([]any)
	points := make([]Point, 0, len(rows))
	for _, row := range rows {
		pair, ok := row.([]any)
		if !ok || len(pair) < 2 {
			continue
		}
		ms, ok := toDecimal(pair[0])
		if !ok {
			continue
		}
		price, ok := toDecimal(pair[1])
		if !ok {
			continue
		}
		points = append(points, Point{Time: time.UnixMilli(ms.IntPart()).UTC(), Price: price})
	}
	return points
}

// rowSeries reads Twelve Data style [{"datetime": ..., "close": ...}, ...]
func rowSeries(root any) []Point {
	v, _ := jsonpath.Get("$.values", root)
	rows, _ := v.([]any)
	points := make([]Point, 0, len(rows))
	for _, row := range rows {
		fields, ok := row.(map[string]any)
		if !ok {
			continue
		}
		ts, ok := parseTime(fields["datetime"])
		if !ok {
			continue
		}
		price, _, ok := firstDecimal(canonicalFields(fields), equityPriceKeys)
		if !ok {
			continue
		}
		points = append(points, Point{Time: ts, Price: price})
	}
	return points
}

func timeSeriesTable(root any) (map[string]any, bool) {
	obj, ok := root.(map[string]any)
	if !ok {
		return nil, false
	}
	for k, v := range obj {
		if strings.HasPrefix(k, "Time Series") {
			table, ok := v.(map[string]any)
			return table, ok
		}
	}
	return nil, false
}

// tableSeries reads Alpha Vantage {"<date>": {"1. open": ..., "4. close": ...}}
func tableSeries(table map[string]any) []Point {
	points := make([]Point, 0, len(table))
	for date, row := range table {
		fields, ok := row.(map[string]any)
		if !ok {
			continue
		}
		ts, ok := parseTime(date)
		if !ok {
			continue
		}
		price, _, ok := firstDecimal(canonicalFields(fields), equityPriceKeys)
		if !ok {
			continue
		}
		points = append(points, Point{Time: ts, Price: price})
	}
	return points
}

func parseTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range seriesTimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
