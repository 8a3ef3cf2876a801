package quote

import apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"

var (
	ErrPriceNotFound     = apperrors.Upstream("no recognised price field in provider payload")
	ErrAssetNotFound     = apperrors.NotFound("asset not present in provider payload")
	ErrMalformedPayload  = apperrors.Upstream("provider payload is not valid JSON")
	ErrUnknownSeriesForm = apperrors.Upstream("unrecognised price history layout")
)
