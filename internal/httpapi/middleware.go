// file: internal/httpapi/middleware.go
package httpapi

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dkoosis/voicestyle/internal/logging"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// chain applies middleware so the first one listed runs outermost.
func chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// recoveryMiddleware turns a handler panic into a 500. The panic value goes to the log only.
func recoveryMiddleware(logger logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.WithContext(r.Context()).Error("Panic in HTTP handler.",
						"panic", fmt.Sprint(rec), "path", r.URL.Path, "stack", string(debug.Stack()))
					writeError(w, logger, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requestIDMiddleware reuses an incoming X-Request-ID or mints one, echoes it back and
// stores it on the request context for logging.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

// corsMiddleware allows any origin and answers preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// logMiddleware logs each request with its status and duration.
func logMiddleware(logger logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wi := &responseInterceptor{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wi, r)
			logger.WithContext(r.Context()).Info("HTTP request served.",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wi.statusCode,
				"duration", time.Since(start).String(),
				"remote", r.RemoteAddr)
		})
	}
}

// responseInterceptor captures the status code written by the next handler.
type responseInterceptor struct {
	http.ResponseWriter
	statusCode int
}

func (wi *responseInterceptor) WriteHeader(statusCode int) {
	wi.statusCode = statusCode
	wi.ResponseWriter.WriteHeader(statusCode)
}
