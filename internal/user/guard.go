package user

import (
	"net/http"

	"github.com/dmitrymomot/shorty"
)

// LoginPath is where anonymous callers are sent.
const LoginPath = "/user-login/"

// MinimumRole rejects callers below min with 401 before the handler runs.
func MinimumRole(min Role) shorty.Middleware {
	return func(next shorty.HandlerFunc) shorty.HandlerFunc {
		return func(c shorty.Context) error {
			id, err := CurrentIdentity(c)
			if err != nil {
				return err
			}
			if !id.Role.AtLeast(min) {
				return shorty.ErrUnauthorized(http.StatusText(http.StatusUnauthorized))
			}
			return next(c)
		}
	}
}

// MustBeUser requires a signed-in caller.
func MustBeUser() shorty.Middleware { return MinimumRole(RoleUser) }

// MustBeRoot requires a root caller.
func MustBeRoot() shorty.Middleware { return MinimumRole(RoleRoot) }

// VisitorOnly rejects signed-in callers with 403. It keeps them off the
// login form.
func VisitorOnly() shorty.Middleware {
	return func(next shorty.HandlerFunc) shorty.HandlerFunc {
		return func(c shorty.Context) error {
			id, err := CurrentIdentity(c)
			if err != nil {
				return err
			}
			if !id.IsVisitor() {
				return shorty.ErrForbidden(http.StatusText(http.StatusForbidden))
			}
			return next(c)
		}
	}
}

// VisitorRedirect sends anonymous callers to loginPath with 303 (HX-Redirect
// for htmx) instead of failing.
func VisitorRedirect(loginPath string) shorty.Middleware {
	return func(next shorty.HandlerFunc) shorty.HandlerFunc {
		return func(c shorty.Context) error {
			id, err := CurrentIdentity(c)
			if err != nil {
				return err
			}
			if id.IsVisitor() {
				return c.Redirect(http.StatusSeeOther, loginPath)
			}
			return next(c)
		}
	}
}
