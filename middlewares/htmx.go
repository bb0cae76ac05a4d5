package middlewares

import (
	"github.com/dmitrymomot/shorty/internal"
	"github.com/dmitrymomot/shorty/pkg/htmx"
)

// HTMX captures the htmx request headers once per request and marks
// responses as varying on HX-Request so caches keep page and fragment apart.
func HTMX() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			c.Response().Header().Add("Vary", htmx.HeaderHXRequest)
			c.SetContext(htmx.WithHeader(c.Context(), htmx.ParseHeader(c.Request())))
			return next(c)
		}
	}
}
