package user

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/shorty"
	"github.com/dmitrymomot/shorty/internal/views"
	"github.com/dmitrymomot/shorty/middlewares"
	"github.com/dmitrymomot/shorty/pkg/flash"
)

// TokenMaxAge is the lifetime of the login cookie in seconds.
const TokenMaxAge = int(30 * 24 * time.Hour / time.Second)

// LoginHandler serves sign-in and sign-out.
type LoginHandler struct {
	rateLimit int
}

// LoginOption configures a LoginHandler.
type LoginOption func(*LoginHandler)

// WithLoginRateLimit caps login attempts per client IP per minute.
// Zero disables the limit.
func WithLoginRateLimit(perMinute int) LoginOption {
	return func(h *LoginHandler) {
		h.rateLimit = perMinute
	}
}

// NewLoginHandler creates the login handler.
func NewLoginHandler(opts ...LoginOption) *LoginHandler {
	h := &LoginHandler{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes mounts the login form, the login post and logout.
func (h *LoginHandler) Routes(r shorty.Router) {
	post := []shorty.Middleware{VisitorOnly()}
	if h.rateLimit > 0 {
		post = append(post, middlewares.RateLimit(h.rateLimit, time.Minute))
	}

	r.Route("/user-login", func(r shorty.Router) {
		r.GET("/", h.form, VisitorOnly())
		r.POST("/", h.login, post...)
		r.GET("/logout", h.logout, MustBeUser())
	})
}

func (h *LoginHandler) form(c shorty.Context) error {
	return RenderPage(c, http.StatusOK, views.Page{
		Title:   c.T("login.title", "User Login"),
		Content: loginContent(),
	})
}

func (h *LoginHandler) login(c shorty.Context) error {
	var form LoginForm
	errs, err := c.Bind(&form)
	if err != nil {
		return err
	}

	if len(errs) == 0 {
		svc, err := shorty.Dep[*Service](c)
		if err != nil {
			return err
		}
		token, err := svc.Login(c.Context(), form.Username, form.Password)
		switch {
		case err == nil:
			c.SetCookie(TokenCookie, token, TokenMaxAge)
			AddFlash(c, flash.Success(c.T("login.success", "Login success")))
			return c.Redirect(http.StatusSeeOther, "/")
		case !errors.Is(err, ErrInvalidCredentials):
			return err
		}
		c.LogInfo("login rejected", slog.String("username", form.Username))
	}

	AddFlash(c, flash.Error(c.T("login.failed", "Login failed")))
	return c.Redirect(http.StatusSeeOther, LoginPath)
}

func (h *LoginHandler) logout(c shorty.Context) error {
	svc, err := shorty.Dep[*Service](c)
	if err != nil {
		return err
	}
	token, _ := c.Cookie(TokenCookie)
	if err := svc.Logout(c.Context(), token); err != nil {
		c.LogWarn("logout token not revoked", slog.Any("error", err))
	}
	c.DeleteCookie(TokenCookie)
	AddFlash(c, flash.Success(c.T("login.logout_success", "Logout success")))
	return c.Redirect(http.StatusSeeOther, "/")
}
