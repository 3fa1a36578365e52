package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// HTTPObserver - приёмник метрик запросов (см. internal/metrics).
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

// Metrics меряет каждый запрос. route - шаблон chi ("/nodes/{id}"), а не сырой путь,
// чтобы кардинальность меток не росла с числом узлов.
func Metrics(o HTTPObserver) Middleware {
	return func(next http.Handler) http.Handler {
		if o == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			start := time.Now()
			next.ServeHTTP(sw, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}

			o.ObserveHTTP(r.Method, route, sw.code(), time.Since(start))
		})
	}
}
