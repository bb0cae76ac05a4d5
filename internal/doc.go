// Package internal implements the web framework behind package shorty.
//
// Import "github.com/dmitrymomot/shorty" instead; it re-exports this API.
//
// # Core Types
//
//   - App: one HTTP application (router, middleware, handlers, sessions, CSRF)
//   - Context: request/response access plus session, flash, CSRF and i18n helpers
//   - Router: interface handlers use to declare routes
//   - Handler: a type that declares routes
//   - Middleware: wraps a HandlerFunc; returns an error to short-circuit
//   - Container: typed dependency providers with transient, request and process scopes
//
// # Request lifecycle
//
// App.ServeHTTP wraps the writer in a ResponseWriter, attaches the request
// cache and the shared request state, then routes. Every global middleware
// receives its own Context value; session, CSRF progress and the writer are
// shared through the request state so they survive the whole chain.
//
// Dirty sessions are saved by a hook that runs right before the first byte is
// written. Anything that changes the session must therefore happen before the
// handler starts writing. Render does this for flash messages and the CSRF
// token: it reads both up front and exposes them to components through
// FlashFromContext and CSRFTokenFromContext.
//
// # Dependencies
//
//	shorty.Provide(c, shorty.ScopeRequest, user.ResolveIdentity)
//
//	func (h *Handler) list(c shorty.Context) error {
//	    id, err := shorty.Dep[user.Identity](c)
//	    if err != nil {
//	        return err
//	    }
//	    ...
//	}
//
// Request-scoped values are memoized in the request cache, so a dependency
// resolved by several middlewares and the handler is built once.
//
// # CSRF
//
// CSRFIssue gives every request a session token. CSRFHeaderCheck verifies the
// X-Csrf-Token header when it is present; otherwise Bind verifies the
// csrf_token form field on unsafe methods. Both failures are 401 and a
// rejected request stays rejected.
//
// # Running
//
//	err := shorty.Run(
//	    shorty.Listen("127.0.0.1:8000", public),
//	    shorty.Listen("127.0.0.1:8001", backoffice),
//	    shorty.ShutdownHook(db.Shutdown(client)),
//	)
//
// Run blocks until SIGINT or SIGTERM, then shuts the servers down and runs
// the shutdown hooks in order.
package internal
