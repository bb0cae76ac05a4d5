package internal

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/shorty/pkg/cookie"
	"github.com/dmitrymomot/shorty/pkg/csrf"
	"github.com/dmitrymomot/shorty/pkg/health"
	"github.com/dmitrymomot/shorty/pkg/i18n"
	"github.com/dmitrymomot/shorty/pkg/session"
)

// Option configures the application.
type Option func(*App)

// WithName names the app in logs, e.g. "backoffice" or "public".
func WithName(name string) Option {
	return func(a *App) {
		a.name = name
	}
}

// WithMiddleware adds global middleware. Middleware runs in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithStaticFiles mounts fsys/subDir at pattern. Directory listings are disabled.
//
//	//go:embed assets
//	var assets embed.FS
//
//	shorty.WithStaticFiles("/assets/", assets, "assets")
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}
		fileServer := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(subFS))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler: handler, pattern: pattern})
	}
}

// WithErrorHandler sets the handler for errors returned by handlers and middleware.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithHealthChecks enables /health/live and /health/ready.
//
//	shorty.WithHealthChecks(
//	    shorty.WithReadinessCheck("db", db.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        make(health.Checks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger sets the app logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithCookieOptions configures the cookie manager.
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(a *App) {
		a.cookieManager = cookie.New(opts...)
	}
}

// WithSession enables server-side sessions stored in store.
// Sessions load lazily and are saved right before the response is written.
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		a.sessionManager = NewSessionManager(store, opts...)
	}
}

// WithCSRF enables session-bound CSRF tokens signed with secret.
// It needs WithSession.
func WithCSRF(secret string) Option {
	return func(a *App) {
		a.csrf = csrf.New(secret)
	}
}

// WithContainer shares a dependency container between apps.
func WithContainer(c *Container) Option {
	return func(a *App) {
		if c != nil {
			a.container = c
		}
	}
}

// WithI18n sets the translation bundle and the namespace used by Context.T.
func WithI18n(bundle *i18n.I18n, namespace string) Option {
	return func(a *App) {
		a.i18n = bundle
		a.i18nNamespace = namespace
	}
}
