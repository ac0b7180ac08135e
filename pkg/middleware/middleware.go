// Package middleware provides the HTTP middleware chain of the gateway.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/dwikikusuma/marketplace/pkg/httpx"
	"github.com/dwikikusuma/marketplace/pkg/logger"
	"github.com/dwikikusuma/marketplace/pkg/metrics"
)

const requestIDHeader = "X-Request-ID"

// Observe logs every request and records it in m. The request-scoped logger
// carries the request id.
func Observe(log *slog.Logger, m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			reqLog := log.With(slog.String("request_id", reqID))
			r = r.WithContext(logger.WithContext(r.Context(), reqLog))

			m.IncInFlight()
			defer m.DecInFlight()

			wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			route := routeTemplate(r)
			elapsed := time.Since(start)
			m.ObserveRequest(r.Method, route, wrapped.status, elapsed)
			reqLog.Info("http request",
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.Int("status", wrapped.status),
				slog.Duration("duration", elapsed),
			)
		})
	}
}

// Recover turns a handler panic into a 500 envelope.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.FromContext(r.Context()).Error("panic recovered", slog.Any("panic", rec))
				httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// CORS allows the configured origins; "*" allows any.
func CORS(allowedOrigins []string) mux.MiddlewareFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		if o != "" {
			allowed[o] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if _, ok := allowed[origin]; origin != "" && (ok || allowAll) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
				w.Header().Set("Access-Control-Allow-Credentials", "true") // cookie credentials
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.written {
		rw.status = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
