package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/dmitrymomot/shorty/internal"
)

type limitedKey struct{}

// RateLimitMessage is the body of a 429 response.
const RateLimitMessage = "Too many requests, slow down"

// RateLimit limits requests per client IP using a sliding window.
// httprate still sets the X-RateLimit-* headers; the 429 itself goes
// through the app error handler so it renders like any other error.
func RateLimit(requests int, window time.Duration) internal.Middleware {
	limiter := httprate.NewRateLimiter(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(_ http.ResponseWriter, r *http.Request) {
			if hit, ok := r.Context().Value(limitedKey{}).(*bool); ok {
				*hit = true
			}
		}),
	)

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			hit := new(bool)
			c.SetContext(context.WithValue(c.Context(), limitedKey{}, hit))

			err := internal.FromHTTP(limiter.Handler)(next)(c)
			if *hit {
				return internal.ErrTooManyRequests(RateLimitMessage)
			}
			return err
		}
	}
}
