package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/shorty/pkg/cookie"
	"github.com/dmitrymomot/shorty/pkg/csrf"
	"github.com/dmitrymomot/shorty/pkg/health"
	"github.com/dmitrymomot/shorty/pkg/htmx"
	"github.com/dmitrymomot/shorty/pkg/i18n"
	"github.com/dmitrymomot/shorty/pkg/logger"
	"github.com/dmitrymomot/shorty/pkg/reqcache"
)

// Default server timeouts.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second
)

// App is one HTTP application: a router, its middleware and its handlers.
// App is immutable after creation; all configuration is done via New.
type App struct {
	router                  chi.Router
	handler                 http.Handler
	probes                  map[string]http.Handler
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	healthConfig            *healthConfig
	logger                  *slog.Logger
	cookieManager           *cookie.Manager
	sessionManager          *SessionManager
	csrf                    *csrf.Manager
	container               *Container
	i18n                    *i18n.I18n
	name                    string
	i18nNamespace           string
	middlewares             []Middleware
	handlers                []Handler
	staticRoutes            []staticRoute
}

type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates a new application with the given options.
//
//	app := shorty.New(
//	    shorty.WithName("backoffice"),
//	    shorty.WithMiddleware(middlewares.Recover(), middlewares.RequestID()),
//	    shorty.WithHandlers(user.NewLoginHandler(), user.NewHandler()),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:        chi.NewRouter(),
		logger:        logger.NewNope(),
		cookieManager: cookie.New(),
		container:     NewContainer(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.name != "" {
		a.logger = a.logger.With(slog.String("app", a.name))
	}
	if a.i18n == nil {
		a.i18n = mustEmptyBundle()
	}
	if a.sessionManager != nil {
		a.sessionManager.SetLogger(a.logger)
	}

	a.setupRoutes()
	a.handler = reqcache.Middleware(a.router)
	if a.healthConfig != nil {
		a.probes = map[string]http.Handler{
			a.healthConfig.livenessPath:  health.LivenessHandler(),
			a.healthConfig.readinessPath: health.ReadinessHandler(a.healthConfig.checks, health.WithLogger(a.logger)),
		}
	}
	return a
}

func mustEmptyBundle() *i18n.I18n {
	b, err := i18n.New()
	if err != nil {
		panic(err)
	}
	return b
}

// Name returns the application name given with WithName.
func (a *App) Name() string {
	return a.name
}

// Container returns the dependency container of the app.
func (a *App) Container() *Container {
	return a.container
}

// Logger returns the app logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// ServeHTTP makes App an http.Handler. Each request gets a fresh request
// cache and shared state before routing starts.
//
// Health probes are answered before routing and skip the middleware chain,
// so they never touch sessions.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if probe, ok := a.probes[r.URL.Path]; ok && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
		probe.ServeHTTP(w, r)
		return
	}

	rw := NewResponseWriter(w, htmx.IsHTMX(r))
	r = r.WithContext(withState(r.Context(), &requestState{}))

	a.handler.ServeHTTP(rw, r)

	// flush pending hooks (session saves) for handlers that wrote nothing
	if !rw.Written() {
		rw.WriteHeader(http.StatusOK)
	}
}

// Run serves this app alone on addr and blocks until shutdown.
func (a *App) Run(addr string, opts ...RunOption) error {
	return Run(append(opts, Listen(addr, a))...)
}

func (a *App) setupRoutes() {
	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}
	if a.methodNotAllowedHandler != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))
	}

	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the app's error handler.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		a.finish(c, h(c))
	}
}

// finish passes err to the enclosing middleware, or renders it when no
// middleware is left. Rendering uses the innermost Context that failed so
// values set by middleware, like the translator, are still visible.
func (a *App) finish(c *requestContext, err error) {
	st := c.state
	if err == nil {
		st.failCtx = nil
		return
	}
	if st.failCtx == nil {
		st.failCtx = c
	}
	if st.depth > 0 {
		st.failed = err
		return
	}

	ec := st.failCtx
	st.failCtx = nil
	// the request deadline may be what failed, the error page must still render
	ec.SetContext(context.WithoutCancel(ec.Context()))
	a.handleError(ec, err)
}

// handleError renders err unless a response was already written.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		a.logger.WarnContext(c.Context(), "handler error after response was written", slog.Any("error", err))
		return
	}
	h := a.errorHandler
	if h == nil {
		h = DefaultErrorHandler
	}
	if herr := h(c, err); herr != nil {
		a.logger.ErrorContext(c.Context(), "error handler failed", slog.Any("error", herr), slog.Any("cause", err))
		if !c.Written() {
			http.Error(c.Response(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// DefaultErrorHandler writes HTTPErrors as plain text with their status.
// Any other error is logged and reported as a bare 500.
func DefaultErrorHandler(c Context, err error) error {
	if he := AsHTTPError(err); he != nil {
		if he.Critical() {
			c.LogError(he.Message, slog.Any("error", err))
		}
		return c.String(he.StatusCode(), he.Message)
	}
	c.LogError("unhandled error", slog.Any("error", err))
	return c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath overrides "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath overrides "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check. Checks run in parallel.
//
//	shorty.WithReadinessCheck("db", db.Healthcheck(client))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		c.checks[name] = fn
	}
}
