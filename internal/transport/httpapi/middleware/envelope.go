package middleware

import (
	"encoding/json"
	"net/http"
)

// failure mirrors the handler error envelope for responses written before a
// handler runs
type failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func writeFailure(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(failure{Message: msg, Code: code})
}
