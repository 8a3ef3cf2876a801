package quote

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// toDecimal coerces a decoded JSON value into a decimal. Anything it cannot
// read is reported as absent rather than as an error.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case json.Number:
		return parseLoose(x.String())
	case float64:
		return decimal.NewFromFloat(x), true
	case float32:
		return decimal.NewFromFloat32(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case string:
		return parseLoose(x)
	default:
		return decimal.Zero, false
	}
}

var stripped = strings.NewReplacer(
	"%", "",
	"$", "", "€", "", "£", "", "¥", "",
	" ", "", "\u00a0", "", "_", "", "'", "", "\"", "",
)

// parseLoose reads numbers the way providers print them: quoted, with percent
// signs, currency symbols and thousands separators in either US or European form.
func parseLoose(s string) (decimal.Decimal, bool) {
	s = stripped.Replace(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "+")
	if s == "" || s == "-" {
		return decimal.Zero, false
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234.56
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		lead := strings.TrimPrefix(s[:lastComma], "-")
		if strings.Count(s, ",") == 1 && (len(s)-lastComma-1 != 3 || lead == "0") {
			// 12,5 and 0,125; a zero group never takes a thousands separator
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		// 1.234.567
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
