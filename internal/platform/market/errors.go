package market

import (
	"errors"
	"fmt"
	"net/url"

	apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"
)

var (
	ErrMissingSymbol      = apperrors.Validation("symbol is required")
	ErrInvalidPeriod      = apperrors.Validation("invalid history period")
	ErrInvalidInterval    = apperrors.Validation("invalid intraday interval")
	ErrProviderFailed     = apperrors.Upstream("price provider failed")
	ErrAllProvidersFailed = apperrors.Upstream("all price providers failed")
	ErrNoProvider         = apperrors.Upstream("no price provider configured")
	ErrEmptyBody          = apperrors.Upstream("empty response body")
	ErrMalformedBody      = apperrors.Upstream("response body is not JSON")
)

// StatusError is a non-2xx provider response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}

// MarkerError is a 2xx response whose body reports an error
type MarkerError struct {
	Marker  string
	Message string
}

func (e *MarkerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider error marker %q", e.Marker)
	}
	return fmt.Sprintf("provider error marker %q: %s", e.Marker, e.Message)
}

// ProviderError attributes a failure to a provider. It matches both
// ErrProviderFailed and the underlying cause.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() []error {
	return []error{ErrProviderFailed, e.Err}
}

// RedactQueryParam masks the value of param in the URL carried by a
// *url.Error. Other errors are returned untouched.
func RedactQueryParam(err error, param string) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	u, perr := url.Parse(ue.URL)
	if perr != nil {
		ue.URL = "<redacted>"
		return err
	}
	q := u.Query()
	if q.Has(param) {
		q.Set(param, "REDACTED")
		u.RawQuery = q.Encode()
	}
	ue.URL = u.String()
	return err
}
