package quote

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
		ok   bool
	}{
		{"json number", json.Number("42.5"), "42.5", true},
		{"float", 1.25, "1.25", true},
		{"int", 7, "7", true},
		{"plain string", "100", "100", true},
		{"quoted string", `"42"`, "42", true},
		{"percent", "12.5%", "12.5", true},
		{"negative percent", "-3.2%", "-3.2", true},
		{"explicit plus", "+0.75", "0.75", true},
		{"us thousands", "1,234.50", "1234.5", true},
		{"us thousands no fraction", "1,234,567", "1234567", true},
		{"european", "1.234,56", "1234.56", true},
		{"decimal comma", "12,5", "12.5", true},
		{"decimal comma after zero", "0,125", "0.125", true},
		{"negative decimal comma after zero", "-0,125", "-0.125", true},
		{"comma thousands", "1,250", "1250", true},
		{"dotted thousands", "1.234.567", "1234567", true},
		{"currency symbol", "$ 99.90", "99.9", true},
		{"swiss apostrophe", "1'000.5", "1000.5", true},
		{"garbage", "abc", "0", false},
		{"dash", "-", "0", false},
		{"empty", "", "0", false},
		{"nil", nil, "0", false},
		{"bool", true, "0", false},
		{"object", map[string]any{}, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toDecimal(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}
