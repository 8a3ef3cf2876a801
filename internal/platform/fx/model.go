package fx

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BaseCurrency is the currency every table rate is quoted against
const BaseCurrency = "EUR"

// Table holds units of each currency per one unit of Base
type Table struct {
	Base      string
	Rates     map[string]decimal.Decimal
	UpdatedAt time.Time
}

// DefaultTable is the seed used until a refresh or restore succeeds
func DefaultTable() Table {
	return Table{
		Base: BaseCurrency,
		Rates: map[string]decimal.Decimal{
			"EUR": decimal.NewFromInt(1),
			"USD": decimal.RequireFromString("1.08"),
			"GBP": decimal.RequireFromString("0.86"),
		},
	}
}

// Clone returns a deep copy of the table
func (t Table) Clone() Table {
	rates := make(map[string]decimal.Decimal, len(t.Rates))
	for k, v := range t.Rates {
		rates[k] = v
	}
	return Table{Base: t.Base, Rates: rates, UpdatedAt: t.UpdatedAt}
}

// Currencies lists the codes in the table other than the base
func (t Table) Currencies() []string {
	out := make([]string, 0, len(t.Rates))
	for code := range t.Rates {
		if code != t.Base {
			out = append(out, code)
		}
	}
	return out
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
