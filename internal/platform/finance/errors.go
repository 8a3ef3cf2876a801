package finance

import apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"

var (
	// Validation errors
	ErrInvalidKind        = apperrors.Validation("record kind must be expense or income")
	ErrInvalidAmount      = apperrors.Validation("amount must be greater than zero")
	ErrMissingCategory    = apperrors.Validation("category is required")
	ErrCategoryTooLong    = apperrors.Validation("category exceeds 50 characters")
	ErrInvalidCurrency    = apperrors.Validation("currency must be a supported 3-letter code")
	ErrDescriptionTooLong = apperrors.Validation("description exceeds 255 characters")
	ErrInvalidYear        = apperrors.Validation("year is out of range")

	// Repository errors
	ErrRecordNotFound = apperrors.NotFound("ledger record not found")
)
