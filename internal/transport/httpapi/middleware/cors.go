package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the configured browser origins. Headers the dashboard reads
// from responses must be listed in ExposedHeaders.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Price-Synthetic", "X-Request-Id", "Retry-After"},
		// bearer tokens travel in headers, not cookies
		AllowCredentials: false,
		MaxAge:           600,
	})
}
