package money

import (
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Format renders an amount with the currency's symbol, grouping and precision, e.g. "$1,234.56".
func Format(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(code)
	return gomoney.New(ToMinorUnits(amount, code), code).Display()
}

// Sum adds amounts expressed in the same currency through go-money so the result
// is computed in minor units, the way ledger totals are displayed.
func Sum(code string, amounts ...decimal.Decimal) decimal.Decimal {
	code = strings.ToUpper(code)
	total := gomoney.New(0, code)
	for _, a := range amounts {
		next, err := total.Add(gomoney.New(ToMinorUnits(a, code), code))
		if err != nil {
			// same currency on both sides, Add cannot fail
			continue
		}
		total = next
	}
	return FromMinorUnits(total.Amount(), code)
}
