package market

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckBody(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		marker string
	}{
		{name: "crypto ok", body: `{"bitcoin":{"usd":1}}`},
		{name: "array ok", body: `[1,2]`},
		{name: "status ok", body: `{"status":"ok","close":"1"}`},
		{name: "coingecko zero code", body: `{"status":{"error_code":0},"bitcoin":{}}`},
		{name: "empty", body: "", err: ErrEmptyBody},
		{name: "whitespace", body: " \n\t", err: ErrEmptyBody},
		{name: "html", body: "<html></html>", err: ErrMalformedBody},
		{name: "twelvedata error", body: `{"status":"error","code":404,"message":"symbol not found"}`, marker: "status"},
		{name: "coingecko error", body: `{"status":{"error_code":429,"error_message":"throttled"}}`, marker: "status.error_code"},
		{name: "alpha vantage error", body: `{"Error Message":"Invalid API call"}`, marker: "Error Message"},
		{name: "alpha vantage note", body: `{"Note":"call frequency"}`, marker: "Note"},
		{name: "alpha vantage information", body: `{"Information":"premium endpoint"}`, marker: "Information"},
		{name: "generic error", body: `{"error":"coin not found"}`, marker: "error"},
		{name: "null error", body: `{"error":null,"price":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkBody([]byte(tt.body))

			switch {
			case tt.err != nil:
				assert.ErrorIs(t, err, tt.err)
			case tt.marker != "":
				var me *MarkerError
				if assert.True(t, errors.As(err, &me)) {
					assert.Equal(t, tt.marker, me.Marker)
				}
			default:
				assert.NoError(t, err)
			}
		})
	}
}
