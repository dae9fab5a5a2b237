package middleware

import (
	"context"
	"net/http"
	"time"
)

type httpObserver interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

type routeKey struct{}

type routeLabel struct{ pattern string }

// Metrics records every request against the route pattern set by Route.
// Requests that never reach a routed handler are labeled "unmatched".
func Metrics(obs httpObserver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			label := &routeLabel{pattern: "unmatched"}
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), routeKey{}, label)))

			obs.ObserveHTTP(r.Method, label.pattern, sw.status, time.Since(start))
		})
	}
}

// Route tags the request with its mux pattern for Metrics.
func Route(pattern string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if label, ok := r.Context().Value(routeKey{}).(*routeLabel); ok {
			label.pattern = pattern
		}
		h.ServeHTTP(w, r)
	})
}
