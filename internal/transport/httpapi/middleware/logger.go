package middleware

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

// errCapture wraps chi's WrapResponseWriter to capture response body for error status codes.
type errCapture struct {
	chimiddleware.WrapResponseWriter
	buf        bytes.Buffer
	statusCode int
}

func (e *errCapture) WriteHeader(code int) {
	e.statusCode = code
	e.WrapResponseWriter.WriteHeader(code)
}

func (e *errCapture) Write(b []byte) (int, error) {
	if e.statusCode >= 400 {
		e.buf.Write(b)
	}
	return e.WrapResponseWriter.Write(b)
}

// Hijack lets websocket upgrades through the capture wrapper
func (e *errCapture) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := e.WrapResponseWriter.Unwrap().(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// extractErrorMessage pulls the error envelope fields from a JSON response body.
// detail is only present outside production.
func extractErrorMessage(body []byte) (message, code, detail string) {
	var obj struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(body, &obj) != nil {
		return "", "", ""
	}
	return obj.Message, obj.Code, obj.Detail
}

func errorAttrs(attrs []any, body []byte) []any {
	msg, code, detail := extractErrorMessage(body)
	if msg != "" {
		attrs = append(attrs, "error", msg)
	}
	if code != "" {
		attrs = append(attrs, "code", code)
	}
	if detail != "" {
		attrs = append(attrs, "detail", detail)
	}
	return attrs
}

// Logger returns a request logging middleware
func Logger(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ec := &errCapture{WrapResponseWriter: ww}
			start := time.Now()

			// Propagate chi's request ID into our typed context key
			reqID := chimiddleware.GetReqID(r.Context())
			if reqID != "" {
				ctx := context.WithValue(r.Context(), logger.RequestIDKey, reqID)
				r = r.WithContext(ctx)
			}

			defer func() {
				status := ww.Status()
				attrs := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"user_agent", r.UserAgent(),
					"status", status,
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
				}
				if reqID != "" {
					attrs = append(attrs, "request_id", reqID)
				}

				switch {
				case status >= 500:
					log.Error("HTTP request", errorAttrs(attrs, ec.buf.Bytes())...)
				case status >= 400:
					log.Warn("HTTP request", errorAttrs(attrs, ec.buf.Bytes())...)
				default:
					log.Info("HTTP request", attrs...)
				}
			}()

			next.ServeHTTP(ec, r)
		}
		return http.HandlerFunc(fn)
	}
}
