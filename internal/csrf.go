package internal

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/shorty/pkg/csrf"
)

// CSRFState tracks how far the current request got through CSRF checks.
type CSRFState int

const (
	CSRFUnchecked CSRFState = iota
	CSRFHeaderVerified
	CSRFPayloadVerified
	CSRFRejected
)

func (s CSRFState) String() string {
	switch s {
	case CSRFHeaderVerified:
		return "header_verified"
	case CSRFPayloadVerified:
		return "payload_verified"
	case CSRFRejected:
		return "rejected"
	default:
		return "unchecked"
	}
}

// ErrCSRFDisabled is returned by token operations on an app built without WithCSRF.
var ErrCSRFDisabled = errors.New("csrf: protection is not configured")

const csrfFailedMessage = "Invalid CSRF token"

// CSRFIssue makes sure every request carries a session and a CSRF token,
// so views can always embed one.
func CSRFIssue() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			if _, err := c.EnsureCSRFToken(); err != nil {
				return ErrInternal(http500Message, WithError(err))
			}
			return next(c)
		}
	}
}

// CSRFHeaderCheck verifies the X-Csrf-Token header when present.
// Requests without the header fall through to the payload check done by Bind.
func CSRFHeaderCheck() Middleware {
	return csrfHeaderCheck(false)
}

// CSRFHeaderCheckStrict is CSRFHeaderCheck that rejects unsafe requests without the header.
func CSRFHeaderCheckStrict() Middleware {
	return csrfHeaderCheck(true)
}

func csrfHeaderCheck(strict bool) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			if csrf.SafeMethod(c.Request().Method) {
				return next(c)
			}
			err := c.VerifyCSRFHeader()
			if errors.Is(err, csrf.ErrTokenMissing) && !IsHTTPError(err) {
				if !strict {
					return next(c)
				}
				return rejectCSRF(c, err)
			}
			if err != nil {
				return err
			}
			return next(c)
		}
	}
}

// CSRFTokenHandler serves the session token as {"token": "..."}.
func CSRFTokenHandler(c Context) error {
	token, err := c.EnsureCSRFToken()
	if err != nil {
		return ErrInternal(http500Message, WithError(err))
	}
	c.SetHeader("Cache-Control", "no-store")
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func rejectCSRF(c Context, cause error) error {
	if st, ok := stateFrom(c.Context()); ok {
		st.advanceCSRF(CSRFRejected)
	}
	return ErrUnauthorized(csrfFailedMessage, WithError(cause))
}
