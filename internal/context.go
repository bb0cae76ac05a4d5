package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/shorty/pkg/binder"
	"github.com/dmitrymomot/shorty/pkg/csrf"
	"github.com/dmitrymomot/shorty/pkg/flash"
	"github.com/dmitrymomot/shorty/pkg/htmx"
	"github.com/dmitrymomot/shorty/pkg/i18n"
	"github.com/dmitrymomot/shorty/pkg/sanitizer"
	"github.com/dmitrymomot/shorty/pkg/session"
	"github.com/dmitrymomot/shorty/pkg/validator"
)

// ValidationErrors is a collection of validation errors.
type ValidationErrors = validator.ValidationErrors

// TranslatorKey is the context key holding the request *i18n.Translator.
type TranslatorKey struct{}

// Component is the interface for renderable templates.
// This is compatible with templ.Component.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// Context provides request/response access and helper methods.
// It also implements context.Context by delegating to the underlying request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the wrapped http.ResponseWriter.
	Response() http.ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// SetContext replaces the request context for the rest of the chain.
	SetContext(ctx context.Context)

	// Param returns the URL parameter value by name.
	Param(name string) string

	// Query returns the query parameter value by name.
	Query(name string) string

	// Form returns the form value by name.
	Form(name string) string

	// Header returns the request header value by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	JSON(code int, v any) error
	String(code int, s string) error
	NoContent(code int) error

	// Redirect redirects to url. htmx requests get HX-Redirect instead.
	Redirect(code int, url string) error

	// Location navigates to path. htmx requests get HX-Location swapping into
	// target, everyone else a 303.
	Location(path, target string) error

	// Error creates an HTTPError without writing a response.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// IsHTMX returns true if the request originated from htmx.
	IsHTMX() bool

	// HTMX returns the htmx request headers.
	HTMX() htmx.Header

	// Render renders a component with the given status code.
	// htmx options and OOB components are only applied to htmx requests.
	Render(code int, component Component, opts ...htmx.RenderOption) error

	// RenderPartial renders partial for htmx requests and fullPage otherwise.
	RenderPartial(code int, fullPage, partial Component, opts ...htmx.RenderOption) error

	// Bind verifies the CSRF payload on unsafe methods, then binds form data,
	// sanitizes, and validates into v.
	// Validation problems are returned separately from system errors.
	Bind(v any) (ValidationErrors, error)

	// BindQuery binds query parameters, sanitizes, and validates into v.
	BindQuery(v any) (ValidationErrors, error)

	// Written returns true if a response has already been written.
	Written() bool

	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context.
	Set(key any, value any)

	// Get retrieves a value from the request context.
	Get(key any) any

	// Cookie returns a cookie value or cookie.ErrNotFound.
	Cookie(name string) (string, error)
	SetCookie(name, value string, maxAge int)
	DeleteCookie(name string)

	// Session returns the current session, loading it on first call.
	// Returns nil, nil when the request carries no session.
	Session() (*session.Session, error)

	// InitSession creates a new session for this request.
	InitSession() error

	// AuthenticateSession binds userID to the session and rotates its token.
	AuthenticateSession(userID string) error

	SessionValue(key string) (any, error)
	SetSessionValue(key string, val any) error
	DeleteSessionValue(key string) error

	// DestroySession removes the session and clears the cookie.
	DestroySession() error

	// Flash reads and clears the pending flash message. Nil when there is none.
	Flash() (*flash.Message, error)

	// SetFlash stores a message for the next rendered page.
	SetFlash(msg flash.Message) error

	// EnsureCSRFToken returns the session CSRF token, creating the session and
	// token when needed.
	EnsureCSRFToken() (string, error)

	// CSRFToken returns the token for views, or "" when none could be issued.
	CSRFToken() string

	// CSRFState reports the CSRF verification progress of this request.
	CSRFState() CSRFState

	// VerifyCSRFHeader checks the X-Csrf-Token header.
	// Returns csrf.ErrTokenMissing as is when the header is absent, and a 401
	// HTTPError when it does not match.
	VerifyCSRFHeader() error

	// Container returns the app dependency container.
	Container() *Container

	// Translator returns the request translator, falling back to the default language.
	Translator() *i18n.Translator

	// T translates key, using def when no translation exists.
	T(key, def string, placeholders ...i18n.M) string

	// Language returns the resolved request language.
	Language() string

	// FormatDateTime renders a timestamp in the request language.
	FormatDateTime(t time.Time) string

	// ResponseWriter returns the wrapped writer.
	ResponseWriter() *ResponseWriter
}

type (
	csrfTokenKey struct{}
	flashKey     struct{}
)

// CSRFTokenFromContext returns the CSRF token exposed to components by Render.
func CSRFTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(csrfTokenKey{}).(string)
	return token
}

// FlashFromContext returns the flash message consumed by Render, if any.
func FlashFromContext(ctx context.Context) *flash.Message {
	msg, _ := ctx.Value(flashKey{}).(*flash.Message)
	return msg
}

// TranslatorFromContext returns the translator exposed to components by Render.
func TranslatorFromContext(ctx context.Context) (*i18n.Translator, bool) {
	tr, ok := ctx.Value(TranslatorKey{}).(*i18n.Translator)
	return tr, ok && tr != nil
}

type requestContext struct {
	request  *http.Request
	response *ResponseWriter
	app      *App
	state    *requestState
}

// newContext builds a Context for one step of the chain. The response writer
// and request state are reused when an outer step already created them.
func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w, htmx.IsHTMX(r))
	}

	st, ok := stateFrom(r.Context())
	if !ok {
		st = &requestState{}
		r = r.WithContext(withState(r.Context(), st))
	}

	return &requestContext{
		request:  r,
		response: rw,
		app:      app,
		state:    st,
	}
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.request, name)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := io.WriteString(c.response, s)
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	htmx.RedirectWithStatus(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Location(path, target string) error {
	htmx.DoLocation(c.response, c.request, path, target)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) IsHTMX() bool {
	return htmx.IsHTMX(c.request)
}

func (c *requestContext) HTMX() htmx.Header {
	if h := htmx.FromContext(c.request.Context()); h.Request {
		return h
	}
	return htmx.ParseHeader(c.request)
}

func (c *requestContext) Render(code int, component Component, opts ...htmx.RenderOption) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")

	c.prepareView()

	isHTMX := c.IsHTMX()
	var cfg *htmx.Config
	if len(opts) > 0 && isHTMX {
		cfg = htmx.NewConfig(opts...)
		cfg.ApplyHeaders(c.response)
	}

	c.response.WriteHeader(code)

	if err := component.Render(c.request.Context(), c.response); err != nil {
		return err
	}

	if cfg != nil {
		for _, oob := range cfg.OOBComponents {
			if err := oob.Render(c.request.Context(), c.response); err != nil {
				return err
			}
		}
	}
	return nil
}

// prepareView exposes per-request view data on the context handed to components.
// It runs before the status line so session changes are still persisted.
func (c *requestContext) prepareView() {
	c.Set(TranslatorKey{}, c.Translator())
	if c.app.csrf != nil {
		c.Set(csrfTokenKey{}, c.CSRFToken())
	}
	if c.app.sessionManager != nil {
		msg, err := c.Flash()
		if err != nil {
			c.LogWarn("failed to read flash message", slog.Any("error", err))
		}
		if msg != nil {
			c.Set(flashKey{}, msg)
		}
	}
}

func (c *requestContext) RenderPartial(code int, fullPage, partial Component, opts ...htmx.RenderOption) error {
	if c.IsHTMX() {
		return c.Render(code, partial, opts...)
	}
	return c.Render(code, fullPage)
}

func (c *requestContext) Bind(v any) (ValidationErrors, error) {
	if err := c.verifyCSRFPayload(); err != nil {
		return nil, err
	}
	return c.bindAndValidate(binder.Form(), v, "bind form")
}

func (c *requestContext) BindQuery(v any) (ValidationErrors, error) {
	return c.bindAndValidate(binder.Query(), v, "bind query")
}

func (c *requestContext) bindAndValidate(bind binder.Func, v any, label string) (ValidationErrors, error) {
	if err := bind(c.request, v); err != nil {
		return nil, ErrBadRequest(http.StatusText(http.StatusBadRequest), WithError(fmt.Errorf("%s: %w", label, err)))
	}
	if err := sanitizer.SanitizeStruct(v); err != nil {
		return nil, fmt.Errorf("sanitize: %w", err)
	}
	if err := validator.ValidateStruct(v); err != nil {
		if validator.IsValidationError(err) {
			ve := validator.ExtractValidationErrors(err)
			ve.Translate(c.Translator().TranslateMessage)
			return ve, nil
		}
		return nil, fmt.Errorf("validate: %w", err)
	}
	return nil, nil
}

func (c *requestContext) Written() bool {
	return c.response.Written()
}

func (c *requestContext) Logger() *slog.Logger {
	return c.app.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.app.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.app.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.app.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.app.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.request.Context(), key, value))
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Cookie(name string) (string, error) {
	return c.app.cookieManager.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, maxAge int) {
	c.app.cookieManager.Set(c.response, name, value, maxAge)
}

func (c *requestContext) DeleteCookie(name string) {
	c.app.cookieManager.Delete(c.response, name)
}

// registerSessionHook persists a dirty session right before the response is written.
func (c *requestContext) registerSessionHook() {
	st := c.state
	if st.hookRegistered {
		return
	}
	st.hookRegistered = true

	ctx := context.WithoutCancel(c.request.Context())
	c.response.OnBeforeWrite(func() {
		if st.session == nil || !st.session.IsDirty() {
			return
		}
		if err := c.app.sessionManager.Store().Update(ctx, st.session); err != nil {
			c.app.logger.ErrorContext(ctx, "failed to save session", slog.Any("error", err))
			return
		}
		st.session.ClearDirty()
	})
}

func (c *requestContext) Session() (*session.Session, error) {
	if c.app.sessionManager == nil {
		return nil, session.ErrNotConfigured
	}
	c.registerSessionHook()

	if c.state.sessionLoaded {
		return c.state.session, nil
	}

	sess, err := c.app.sessionManager.LoadSession(c.request.Context(), c.request)
	if err != nil {
		return nil, err
	}
	c.state.session = sess
	c.state.sessionLoaded = true
	return sess, nil
}

func (c *requestContext) InitSession() error {
	if c.app.sessionManager == nil {
		return session.ErrNotConfigured
	}
	c.registerSessionHook()

	sess, err := c.app.sessionManager.CreateSession(c.request.Context(), c.request)
	if err != nil {
		return err
	}
	c.state.session = sess
	c.state.sessionLoaded = true
	c.app.sessionManager.SaveSession(c.response, sess)
	return nil
}

// ensureSession returns the current session, creating one when absent.
func (c *requestContext) ensureSession() (*session.Session, error) {
	sess, err := c.Session()
	if err != nil {
		return nil, err
	}
	if sess != nil {
		return sess, nil
	}
	if err := c.InitSession(); err != nil {
		return nil, err
	}
	return c.state.session, nil
}

func (c *requestContext) AuthenticateSession(userID string) error {
	sess, err := c.ensureSession()
	if err != nil {
		return err
	}

	sess.UserID = &userID
	if err := c.app.sessionManager.RotateToken(c.request.Context(), sess); err != nil {
		return err
	}
	c.app.sessionManager.SaveSession(c.response, sess)
	return nil
}

func (c *requestContext) SessionValue(key string) (any, error) {
	sess, err := c.Session()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, session.ErrNotFound
	}
	val, _ := sess.GetValue(key)
	return val, nil
}

func (c *requestContext) SetSessionValue(key string, val any) error {
	sess, err := c.ensureSession()
	if err != nil {
		return err
	}
	sess.SetValue(key, val)
	return nil
}

func (c *requestContext) DeleteSessionValue(key string) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}
	sess.DeleteValue(key)
	return nil
}

func (c *requestContext) DestroySession() error {
	if c.app.sessionManager == nil {
		return session.ErrNotConfigured
	}
	if c.state.session != nil {
		if err := c.app.sessionManager.Store().Delete(c.request.Context(), c.state.session.ID); err != nil {
			return err
		}
	}
	c.app.sessionManager.DeleteSession(c.response)

	c.state.session = nil
	c.state.sessionLoaded = true
	c.state.csrfToken = ""
	return nil
}

func (c *requestContext) Flash() (*flash.Message, error) {
	sess, err := c.Session()
	if err != nil || sess == nil {
		return nil, err
	}
	raw, ok := sess.GetValue(flash.SessionKey)
	if !ok {
		return nil, nil
	}
	sess.DeleteValue(flash.SessionKey)

	s, _ := raw.(string)
	msg, err := flash.Decode(s)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *requestContext) SetFlash(msg flash.Message) error {
	encoded, err := flash.Encode(msg)
	if err != nil {
		return err
	}
	return c.SetSessionValue(flash.SessionKey, encoded)
}

func (c *requestContext) EnsureCSRFToken() (string, error) {
	if c.app.csrf == nil {
		return "", ErrCSRFDisabled
	}
	if c.state.csrfToken != "" {
		return c.state.csrfToken, nil
	}
	sess, err := c.ensureSession()
	if err != nil {
		return "", err
	}
	token, err := c.app.csrf.EnsureToken(sess.ID, sess)
	if err != nil {
		return "", err
	}
	c.state.csrfToken = token
	return token, nil
}

func (c *requestContext) CSRFToken() string {
	token, err := c.EnsureCSRFToken()
	if err != nil && !errors.Is(err, ErrCSRFDisabled) {
		c.LogWarn("csrf token unavailable", slog.Any("error", err))
	}
	return token
}

func (c *requestContext) CSRFState() CSRFState {
	return c.state.csrfState()
}

func (c *requestContext) VerifyCSRFHeader() error {
	if c.state.csrfState() == CSRFRejected {
		return ErrUnauthorized(csrfFailedMessage)
	}
	token := c.request.Header.Get(csrf.HeaderName)
	if token == "" {
		return csrf.ErrTokenMissing
	}
	if err := c.verifyCSRF(token); err != nil {
		return rejectCSRF(c, err)
	}
	c.state.advanceCSRF(CSRFHeaderVerified)
	return nil
}

// verifyCSRFPayload checks the csrf_token form field unless the header already passed.
func (c *requestContext) verifyCSRFPayload() error {
	if c.app.csrf == nil || csrf.SafeMethod(c.request.Method) {
		return nil
	}
	switch c.state.csrfState() {
	case CSRFHeaderVerified, CSRFPayloadVerified:
		return nil
	case CSRFRejected:
		return ErrUnauthorized(csrfFailedMessage)
	}

	if err := c.verifyCSRF(c.request.FormValue(csrf.FormField)); err != nil {
		return rejectCSRF(c, err)
	}
	c.state.advanceCSRF(CSRFPayloadVerified)
	return nil
}

func (c *requestContext) verifyCSRF(token string) error {
	if c.app.csrf == nil {
		return ErrCSRFDisabled
	}
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if sess == nil {
		return csrf.ErrNoSession
	}
	return c.app.csrf.Verify(sess, token)
}

func (c *requestContext) Container() *Container {
	return c.app.container
}

func (c *requestContext) Translator() *i18n.Translator {
	if tr, ok := c.Get(TranslatorKey{}).(*i18n.Translator); ok && tr != nil {
		return tr
	}
	return c.app.i18n.Translator(c.app.i18n.DefaultLanguage(), c.app.i18nNamespace)
}

func (c *requestContext) T(key, def string, placeholders ...i18n.M) string {
	return c.Translator().TD(key, def, placeholders...)
}

func (c *requestContext) Language() string {
	return c.Translator().Language()
}

func (c *requestContext) FormatDateTime(t time.Time) string {
	return c.Translator().FormatDateTime(t)
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.response
}
