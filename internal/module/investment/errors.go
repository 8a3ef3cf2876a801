package investment

import apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"

var (
	ErrMissingSymbol  = apperrors.Validation("symbol is required")
	ErrInvalidAmount  = apperrors.Validation("amount must be greater than zero")
	ErrSyntheticPrice = apperrors.Upstream("only a generated price is available, refusing to invest")
)
