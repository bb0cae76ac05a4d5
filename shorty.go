package shorty

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/shorty/internal"
	"github.com/dmitrymomot/shorty/pkg/cookie"
	"github.com/dmitrymomot/shorty/pkg/flash"
	"github.com/dmitrymomot/shorty/pkg/health"
	"github.com/dmitrymomot/shorty/pkg/i18n"
	"github.com/dmitrymomot/shorty/pkg/session"
)

// Type aliases - public API
type (
	// App is one HTTP application.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	Option       = internal.Option
	RunOption    = internal.RunOption
	HealthOption = internal.HealthOption

	// Component is the interface for renderable templates, compatible with templ.Component.
	Component = internal.Component

	ValidationErrors = internal.ValidationErrors

	HTTPError       = internal.HTTPError
	HTTPErrorOption = internal.HTTPErrorOption

	CookieOption  = cookie.Option
	SessionOption = internal.SessionOption
	Session       = session.Session
	SessionStore  = session.Store

	ResponseWriter = internal.ResponseWriter

	Container    = internal.Container
	Resolver     = internal.Resolver
	Scope        = internal.Scope
	ContextError = internal.ContextError
	ErrorKind    = internal.ErrorKind

	CSRFState = internal.CSRFState
	Flag      = internal.Flag

	Extractor       = internal.Extractor
	ExtractorSource = internal.ExtractorSource

	TranslatorKey = internal.TranslatorKey
)

const (
	ScopeTransient = internal.ScopeTransient
	ScopeRequest   = internal.ScopeRequest
	ScopeProcess   = internal.ScopeProcess

	ConfigError  = internal.ConfigError
	RequestError = internal.RequestError
	OtherError   = internal.OtherError

	CSRFUnchecked       = internal.CSRFUnchecked
	CSRFHeaderVerified  = internal.CSRFHeaderVerified
	CSRFPayloadVerified = internal.CSRFPayloadVerified
	CSRFRejected        = internal.CSRFRejected

	FlagAdd    = internal.FlagAdd
	FlagEdit   = internal.FlagEdit
	FlagDelete = internal.FlagDelete
)

var (
	ErrNotRegistered = internal.ErrNotRegistered
	ErrNoRequest     = internal.ErrNoRequest
	ErrNoListeners   = internal.ErrNoListeners
	ErrCSRFDisabled  = internal.ErrCSRFDisabled
)

// New creates a new application.
//
//	app := shorty.New(
//	    shorty.WithName("public"),
//	    shorty.WithHandlers(public.NewHandler()),
//	)
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// Run serves every app given with Listen and blocks until shutdown.
func Run(opts ...RunOption) error {
	return internal.Run(opts...)
}

// NewContainer returns an empty dependency container.
func NewContainer() *Container {
	return internal.NewContainer()
}

// App options

// WithName names the app in logs.
func WithName(name string) Option {
	return internal.WithName(name)
}

// WithMiddleware adds global middleware. Middleware runs in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers whose Routes are mounted by New.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithStaticFiles mounts fsys/subDir at pattern without directory listings.
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithErrorHandler replaces DefaultErrorHandler.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler handles unmatched routes behind the global middleware.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler handles known paths requested with the wrong method.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithHealthChecks enables /health/live and /health/ready.
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger sets the app logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithCookieOptions configures the cookies set through Context.SetCookie.
func WithCookieOptions(opts ...CookieOption) Option {
	return internal.WithCookieOptions(opts...)
}

// WithSession enables server-side sessions.
func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

// WithCSRF enables session-bound CSRF tokens. It needs WithSession.
func WithCSRF(secret string) Option {
	return internal.WithCSRF(secret)
}

// WithContainer shares one dependency container between apps.
func WithContainer(c *Container) Option {
	return internal.WithContainer(c)
}

// WithI18n sets the translation bundle and namespace used by Context.T.
func WithI18n(bundle *i18n.I18n, namespace string) Option {
	return internal.WithI18n(bundle, namespace)
}

// Session options

// WithSessionCookieName overrides the "__sid" cookie name.
func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

// WithSessionMaxAge sets the session lifetime in seconds.
func WithSessionMaxAge(seconds int) SessionOption {
	return internal.WithSessionMaxAge(seconds)
}

// WithSessionSecure marks the session cookie Secure.
func WithSessionSecure(secure bool) SessionOption {
	return internal.WithSessionSecure(secure)
}

// Health check options

// WithLivenessPath overrides "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath overrides "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Listen serves app on addr.
func Listen(addr string, app *App) RunOption {
	return internal.Listen(addr, app)
}

// Logger sets the logger used for server lifecycle events.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout bounds graceful shutdown.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook runs fn after the ports are bound and before serving.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function run after the servers stop.
//
//	shorty.ShutdownHook(db.Shutdown(client))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext stops the servers when ctx is cancelled, in addition to SIGINT and SIGTERM.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Dependencies

// Provide registers fn as the constructor of T.
func Provide[T any](c *Container, scope Scope, fn func(*Resolver) (T, error)) {
	internal.Provide(c, scope, fn)
}

// Supply registers a ready process value.
func Supply[T any](c *Container, v T) {
	internal.Supply(c, v)
}

// Resolve resolves T outside a request.
func Resolve[T any](ctx context.Context, c *Container) (T, error) {
	return internal.Resolve[T](ctx, c)
}

// Inject resolves T from inside a provider.
func Inject[T any](r *Resolver) (T, error) {
	return internal.Inject[T](r)
}

// Dep resolves T for the current request. Failures become a 500 HTTPError.
//
//	svc, err := shorty.Dep[*user.Service](c)
//	if err != nil {
//	    return err
//	}
func Dep[T any](c Context) (T, error) {
	return internal.Dep[T](c)
}

// Context helpers

// ContextValue returns the typed context value under key, or the zero value.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param returns a typed path parameter.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query returns a typed query parameter.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Query[T](c, name)
}

func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string, defaultValue T) T {
	return internal.QueryDefault(c, name, defaultValue)
}

// PathEdit parses the path parameter only on FlagEdit routes.
func PathEdit[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.PathEdit[T](c, name)
}

// WithFlag attaches an add/edit/delete flag to a route.
func WithFlag(f Flag) Middleware {
	return internal.WithFlag(f)
}

// CurrentFlag returns the route flag, FlagAdd by default.
func CurrentFlag(c Context) Flag {
	return internal.CurrentFlag(c)
}

// View helpers

// CSRFTokenFromContext returns the CSRF token exposed to components by Render.
func CSRFTokenFromContext(ctx context.Context) string {
	return internal.CSRFTokenFromContext(ctx)
}

// FlashFromContext returns the flash message consumed by Render.
func FlashFromContext(ctx context.Context) *flash.Message {
	return internal.FlashFromContext(ctx)
}

// TranslatorFromContext returns the request translator exposed by Render.
func TranslatorFromContext(ctx context.Context) (*i18n.Translator, bool) {
	return internal.TranslatorFromContext(ctx)
}

// Extractors

// NewExtractor tries sources in order and returns the first non-empty value.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }
func FromQuery(name string) ExtractorSource { return internal.FromQuery(name) }
func FromCookie(name string) ExtractorSource { return internal.FromCookie(name) }
func FromParam(name string) ExtractorSource { return internal.FromParam(name) }
func FromForm(name string) ExtractorSource { return internal.FromForm(name) }

// Errors

// NewHTTPError builds an error rendered with code.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnprocessable(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

func WithError(err error) HTTPErrorOption { return internal.WithError(err) }
func WithTitle(title string) HTTPErrorOption { return internal.WithTitle(title) }
func WithDetail(detail string) HTTPErrorOption { return internal.WithDetail(detail) }
func WithRequestID(id string) HTTPErrorOption { return internal.WithRequestID(id) }
func WithErrorCode(code string) HTTPErrorOption { return internal.WithErrorCode(code) }

// AsHTTPError extracts the HTTPError from an error chain, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// CSRF

// CSRFTokenHandler serves {"token": "..."}.
func CSRFTokenHandler(c Context) error { return internal.CSRFTokenHandler(c) }

// FromHTTP adapts a net/http middleware.
func FromHTTP(mw func(http.Handler) http.Handler) Middleware {
	return internal.FromHTTP(mw)
}
