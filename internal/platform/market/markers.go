package market

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Top-level keys whose presence means the provider answered 200 with an error
// (Alpha Vantage uses all three for invalid symbols and throttling).
var markerKeys = []string{"Error Message", "Note", "Information"}

// checkBody classifies a 2xx body. Empty bodies, non-JSON bodies and
// in-band error markers are failures.
func checkBody(body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ErrEmptyBody
	}

	var root any
	if err := json.Unmarshal(trimmed, &root); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return nil
	}

	// Twelve Data: {"status":"error","code":400,"message":"..."}
	if s, ok := obj["status"].(string); ok && strings.EqualFold(s, "error") {
		msg, _ := obj["message"].(string)
		return &MarkerError{Marker: "status", Message: msg}
	}

	// CoinGecko: {"status":{"error_code":429,"error_message":"..."}}
	if st, ok := obj["status"].(map[string]any); ok {
		if code, ok := st["error_code"]; ok && code != nil && code != float64(0) {
			msg, _ := st["error_message"].(string)
			return &MarkerError{Marker: "status.error_code", Message: msg}
		}
	}

	for _, key := range markerKeys {
		if v, ok := obj[key]; ok {
			msg, _ := v.(string)
			return &MarkerError{Marker: key, Message: msg}
		}
	}

	if v, ok := obj["error"]; ok && v != nil && v != false && v != "" {
		return &MarkerError{Marker: "error", Message: fmt.Sprint(v)}
	}

	return nil
}
