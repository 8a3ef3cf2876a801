package asset

import (
	"fmt"
	"strings"
)

// Type is the asset class of a watchlist symbol. It is a closed set: the zero
// value is invalid and every dispatch goes through Match.
type Type uint8

const (
	typeInvalid Type = iota
	Crypto
	Stock
)

// String returns the wire name of the type
func (t Type) String() string {
	switch t {
	case Crypto:
		return "crypto"
	case Stock:
		return "stock"
	default:
		return "invalid"
	}
}

// Valid reports whether t is one of the supported asset classes
func (t Type) Valid() bool {
	return t == Crypto || t == Stock
}

// ParseType parses "crypto" or "stock" (also "equity"), case-insensitively
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "crypto":
		return Crypto, nil
	case "stock", "equity":
		return Stock, nil
	default:
		return typeInvalid, fmt.Errorf("%w: %q", ErrUnsupportedAssetType, s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, ErrUnsupportedAssetType
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Match dispatches on the asset class. A new class means a new parameter here,
// so every call site has to handle it before the build passes.
func Match[T any](t Type, onCrypto, onStock func() (T, error)) (T, error) {
	switch t {
	case Crypto:
		return onCrypto()
	case Stock:
		return onStock()
	default:
		var zero T
		return zero, ErrUnsupportedAssetType
	}
}

// Listing is a known tradable asset
type Listing struct {
	Symbol      string
	Name        string
	Type        Type
	CoinGeckoID string // empty for stocks
}

// NormalizeSymbol trims and uppercases a ticker symbol
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
