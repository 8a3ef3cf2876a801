package watchlist

import apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"

var (
	// Validation errors
	ErrMissingSymbol    = apperrors.Validation("symbol is required")
	ErrSymbolTooLong    = apperrors.Validation("symbol exceeds 20 characters")
	ErrNameTooLong      = apperrors.Validation("name exceeds 100 characters")
	ErrInvalidQuantity  = apperrors.Validation("quantity must be greater than zero")
	ErrInvalidPrice     = apperrors.Validation("unit price must be greater than zero")
	ErrInvalidDirection = apperrors.Validation("direction must be BUY or SELL")
	ErrInvalidCurrency  = apperrors.Validation("currency must be a 3-letter code")

	ErrDuplicateSymbol = apperrors.Conflict("symbol already in watchlist")

	// Repository errors
	ErrEntryNotFound       = apperrors.NotFound("watchlist entry not found")
	ErrTransactionNotFound = apperrors.NotFound("transaction not found")

	ErrHasTransactions = apperrors.Consistency("entry has recorded transactions")
)
