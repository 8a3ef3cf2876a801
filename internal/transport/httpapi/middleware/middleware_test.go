package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/fintrack/pkg/logger"
)

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.7:5123"
	assert.Equal(t, "10.0.0.7", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(r))
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 3)
	var last *httptest.ResponseRecorder
	for i := range codes {
		last = httptest.NewRecorder()
		h.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/", nil))
		codes[i] = last.Code
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "1", last.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"message":"rate limit exceeded, please try again later","code":"RATE_LIMITED"}`, last.Body.String())
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.getVisitor("a")
	rl.getVisitor("b")
	rl.visitors["a"].lastSeen = time.Now().Add(-2 * visitorIdleTTL)

	rl.evictIdle(time.Now())

	assert.NotContains(t, rl.visitors, "a")
	assert.Contains(t, rl.visitors, "b")
}

func TestRecovery_ReturnsEnvelope(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New("production", &buf)
	h := Recovery(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"internal server error","code":"INTERNAL_ERROR"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "kaboom")
}

func TestLogger_RecordsErrorEnvelope(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New("production", &buf)
	h := Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"transaction not found","code":"NOT_FOUND"}`))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/v1/transactions/1", nil))

	out := buf.String()
	assert.Contains(t, out, `"error":"transaction not found"`)
	assert.Contains(t, out, `"code":"NOT_FOUND"`)
	assert.Contains(t, out, `"status":404`)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := bearerToken(r)
	assert.False(t, ok)

	r.Header.Set("Authorization", "bearer abc")
	tok, ok := bearerToken(r)
	require.True(t, ok)
	assert.Equal(t, "abc", tok)

	r.Header.Set("Authorization", "Basic abc")
	_, ok = bearerToken(r)
	assert.False(t, ok)

	ws := httptest.NewRequest(http.MethodGet, "/stream?access_token=xyz", nil)
	ws.Header.Set("Upgrade", "websocket")
	tok, ok = bearerToken(ws)
	require.True(t, ok)
	assert.Equal(t, "xyz", tok)
}
