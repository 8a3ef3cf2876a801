package asset

import apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"

var (
	ErrUnsupportedAssetType = apperrors.Validation("unsupported asset type, expected crypto or stock")
	ErrEmptyQuery           = apperrors.Validation("search query is required")
)
