package middleware

import (
	"fmt"
	"net/http"

	"github.com/ulule/limiter/v3"
	limiterhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimiter limits requests per client IP using an in-memory store.
type RateLimiter struct {
	store              limiter.Store
	trustForwardHeader bool
}

// NewRateLimiter creates a limiter whose store is shared by every Limit call.
func NewRateLimiter(trustForwardHeader bool) *RateLimiter {
	return &RateLimiter{
		store:              memory.NewStore(),
		trustForwardHeader: trustForwardHeader,
	}
}

// Limit returns middleware enforcing rate, formatted like "100-M".
// Each Limit call keeps its own counters through a distinct key prefix.
func (rl *RateLimiter) Limit(name, rate string) (Middleware, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", name, err)
	}

	instance := limiter.New(rl.store, parsed,
		limiter.WithTrustForwardHeader(rl.trustForwardHeader))

	mw := limiterhttp.NewMiddleware(instance,
		limiterhttp.WithKeyGetter(func(r *http.Request) string {
			return name + ":" + instance.GetIPKey(r)
		}),
		limiterhttp.WithLimitReachedHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		}),
		limiterhttp.WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, _ error) {
			writeError(w, http.StatusInternalServerError, "internal server error")
		}),
	)

	return mw.Handler, nil
}
