package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kislikjeka/fintrack/internal/platform/asset"
	apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"
)

// pathID parses the {id} URL parameter
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid id")
	}
	return id, nil
}

// queryType parses an optional ?type= parameter; zero means not given
func queryType(r *http.Request) (asset.Type, error) {
	raw := r.URL.Query().Get("type")
	if raw == "" {
		return 0, nil
	}
	return asset.ParseType(raw)
}

// resolveType returns t, or the type inferred from symbol when t is zero
func resolveType(t asset.Type, symbol string) asset.Type {
	if t.Valid() {
		return t
	}
	return asset.InferType(symbol)
}

// queryInt parses an optional integer parameter
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validation("invalid " + key)
	}
	return n, nil
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, apperrors.Validation("invalid date " + strconv.Quote(s))
	}
	return t, nil
}
