package handler

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"
)

// SuccessResponse wraps every successful payload
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

var exposeDetail atomic.Bool

// SetErrorDetail controls whether error responses carry the full error chain.
// It is switched off in production.
func SetErrorDetail(on bool) {
	exposeDetail.Store(on)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// respondOK sends data in a success envelope
func respondOK(w http.ResponseWriter, data any, statusCode int) {
	respondJSON(w, SuccessResponse{Success: true, Data: data}, statusCode)
}

// respondError maps err to its status and envelope
func respondError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{
		Message: apperrors.PublicMessage(err),
		Code:    apperrors.CodeOf(err),
	}
	if exposeDetail.Load() {
		resp.Detail = err.Error()
	}
	respondJSON(w, resp, apperrors.HTTPStatus(err))
}

// badRequest reports a malformed request with a fixed public message
func badRequest(w http.ResponseWriter, msg string) {
	respondError(w, apperrors.Validation(msg))
}

// decodeJSON reads a JSON request body into dst. Failures are validation errors.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Wrap(err, apperrors.CodeValidation, "invalid request body")
	}
	return nil
}
