package errors

import (
	"errors"
	"net/http"
)

// AppError is an error tagged with a taxonomy code. Domain packages build their
// sentinel errors from it so callers can both errors.Is the sentinel and read the code.
type AppError struct {
	Code    string // Error code for client
	Message string // Human-readable message
	Err     error  // Underlying error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Taxonomy codes
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeConsistency  = "CONSISTENCY_ERROR"
	CodeUpstream     = "UPSTREAM_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL_ERROR"
)

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an error with a code and message
func Wrap(err error, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Validation creates a validation error: bad input, rejected immediately, never retried
func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

// NotFound creates a lookup-miss error
func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

// Conflict creates a uniqueness conflict error
func Conflict(message string) *AppError {
	return New(CodeConflict, message)
}

// Consistency creates an error for operations that would break stored history
func Consistency(message string) *AppError {
	return New(CodeConsistency, message)
}

// Upstream creates an error for provider failures, timeouts and malformed payloads
func Upstream(message string) *AppError {
	return New(CodeUpstream, message)
}

// Unauthorized creates an authentication error
func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

// GetAppError extracts an AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// CodeOf returns the taxonomy code of err, CodeInternal when untagged
func CodeOf(err error) string {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code
	}
	return CodeInternal
}

// HTTPStatus maps the taxonomy code of err to an HTTP status
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeConsistency:
		return http.StatusConflict
	case CodeUpstream:
		return http.StatusBadGateway
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show to clients. Tagged errors are
// shown in full; untagged ones may carry driver internals and get a generic text.
func PublicMessage(err error) string {
	if GetAppError(err) != nil {
		return err.Error()
	}
	return "internal server error"
}
