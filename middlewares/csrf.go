package middlewares

import "github.com/dmitrymomot/shorty/internal"

// CSRFIssue makes sure the session carries a CSRF token before the handler runs.
// Use it on routes that render forms.
func CSRFIssue() internal.Middleware {
	return internal.CSRFIssue()
}

// CSRFHeaderCheck verifies the X-CSRF-Token header when present.
// A missing header defers the check to the form payload read by Bind.
func CSRFHeaderCheck() internal.Middleware {
	return internal.CSRFHeaderCheck()
}

// CSRFHeaderCheckStrict verifies the X-CSRF-Token header and rejects requests without it.
func CSRFHeaderCheckStrict() internal.Middleware {
	return internal.CSRFHeaderCheckStrict()
}
