package money

import (
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultFraction is used for currencies go-money does not know about.
const DefaultFraction = 2

// ParseAmount parses a user supplied decimal amount such as "1500.25".
// Unlike provider payloads, user input is strict: no separators, no symbols.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount format: %q", s)
	}
	return d, nil
}

// Fraction returns the number of minor-unit digits for an ISO currency code
func Fraction(code string) int {
	if c := gomoney.GetCurrency(strings.ToUpper(code)); c != nil {
		return c.Fraction
	}
	return DefaultFraction
}

// ToMinorUnits converts an amount to the currency's minor units (cents), rounding half away from zero
func ToMinorUnits(amount decimal.Decimal, code string) int64 {
	return amount.Shift(int32(Fraction(code))).Round(0).IntPart()
}

// FromMinorUnits converts minor units back to a decimal amount
func FromMinorUnits(minor int64, code string) decimal.Decimal {
	return decimal.New(minor, -int32(Fraction(code)))
}

// Round rounds an amount to the currency's minor unit precision
func Round(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Round(int32(Fraction(code)))
}
