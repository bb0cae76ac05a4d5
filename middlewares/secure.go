package middlewares

import (
	"github.com/unrolled/secure"

	"github.com/dmitrymomot/shorty/internal"
)

// DefaultContentSecurityPolicy allows the htmx bundle from unpkg and the inline
// styles htmx injects.
const DefaultContentSecurityPolicy = "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'none'"

// SecureConfig configures security headers.
type SecureConfig struct {
	ContentSecurityPolicy string
	AllowedHosts          []string
	HSTSSeconds           int64
	SSLRedirect           bool
	Development           bool
}

// SecureHeaders sets frame, sniffing, referrer and CSP headers with unrolled/secure.
// Bad host responses are written by secure itself.
func SecureHeaders(cfg SecureConfig) internal.Middleware {
	csp := cfg.ContentSecurityPolicy
	if csp == "" {
		csp = DefaultContentSecurityPolicy
	}

	s := secure.New(secure.Options{
		AllowedHosts:          cfg.AllowedHosts,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: csp,
		STSSeconds:            cfg.HSTSSeconds,
		STSIncludeSubdomains:  cfg.HSTSSeconds > 0,
		SSLRedirect:           cfg.SSLRedirect,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         cfg.Development,
	})

	return internal.FromHTTP(s.Handler)
}
