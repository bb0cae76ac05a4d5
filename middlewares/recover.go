package middlewares

import (
	"runtime"

	"github.com/dmitrymomot/shorty/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 8192

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	StackSize int
	OmitStack bool
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		if size > 0 {
			cfg.StackSize = size
		}
	}
}

// WithRecoverOmitStack drops the stack trace from logs and from PanicError.
func WithRecoverOmitStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.OmitStack = true
	}
}

// Recover turns a panic into a PanicError, which the error handler
// reports as a 500. The stack is kept on the error so the error log can store it.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &RecoverConfig{StackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				pe := &PanicError{Value: r, Method: c.Request().Method, Path: c.Request().URL.Path}
				if !cfg.OmitStack {
					buf := make([]byte, cfg.StackSize)
					pe.Stack = buf[:runtime.Stack(buf, false)]
					c.LogError("panic recovered", "panic", r, "stack", string(pe.Stack))
				} else {
					c.LogError("panic recovered", "panic", r)
				}
				err = pe
			}()

			return next(c)
		}
	}
}
