package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/shorty/internal"
)

// DefaultTimeout applies when Timeout is given a non-positive duration.
const DefaultTimeout = 30 * time.Second

// Timeout attaches a deadline to the request context. Handlers run on the
// request goroutine and must watch ctx.Done in long operations. When the
// deadline passes and nothing was written, a TimeoutError is returned.
func Timeout(d time.Duration) internal.Middleware {
	if d <= 0 {
		d = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			parent := c.Context()
			ctx, cancel := context.WithTimeout(parent, d)
			defer cancel()

			c.SetContext(ctx)
			err := next(c)
			c.SetContext(parent)

			if !errors.Is(ctx.Err(), context.DeadlineExceeded) || c.Written() {
				return err
			}

			c.LogWarn("request timeout", "timeout", d.String())
			return &TimeoutError{Duration: d}
		}
	}
}
