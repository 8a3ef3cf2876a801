package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount_Valid(t *testing.T) {
	d, err := ParseAmount(" 1500.25 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("1500.25")))
}

func TestParseAmount_Empty(t *testing.T) {
	_, err := ParseAmount("")
	assert.Error(t, err)
}

func TestParseAmount_RejectsSeparators(t *testing.T) {
	_, err := ParseAmount("1,500.25")
	assert.Error(t, err)
}

func TestFraction_KnownAndUnknown(t *testing.T) {
	assert.Equal(t, 2, Fraction("usd"))
	assert.Equal(t, 0, Fraction("JPY"))
	assert.Equal(t, DefaultFraction, Fraction("XYZ"))
}

func TestToMinorUnits_RoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, int64(1235), ToMinorUnits(decimal.RequireFromString("12.345"), "EUR"))
	assert.Equal(t, int64(-1235), ToMinorUnits(decimal.RequireFromString("-12.345"), "EUR"))
}

func TestFromMinorUnits_RoundTrip(t *testing.T) {
	d := FromMinorUnits(123456, "USD")
	assert.Equal(t, "1234.56", d.String())
	assert.Equal(t, int64(123456), ToMinorUnits(d, "USD"))
}

func TestFormat_USD(t *testing.T) {
	assert.Equal(t, "$1,234.56", Format(decimal.RequireFromString("1234.56"), "usd"))
}

func TestSum_AddsInMinorUnits(t *testing.T) {
	total := Sum("USD",
		decimal.RequireFromString("0.10"),
		decimal.RequireFromString("0.20"),
		decimal.RequireFromString("1.005"),
	)
	assert.Equal(t, "1.31", total.String())
}
