package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"go-file-tree/internal/metrics"
)

// Metrics records request count and latency labelled by chi route pattern,
// so /files/{id} stays one series regardless of ids.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			m.ObserveRequest(r.Method, route, wrapped.status, time.Since(started))
		})
	}
}
