package middleware

import (
	"net/http"
	"time"

	"clubevents/internal/metrics"
)

// Instrument records request latency by matched route. It must wrap the ServeMux
// so the route pattern is known once the handler returns.
func Instrument(m *metrics.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		m.ObserveRequest(r.Method, r.Pattern, wrapped.status, time.Since(start))
	})
}
