// Package shorty is the web framework the shorty binary is built on: apps made
// of handlers and middleware over chi, server-side sessions, CSRF protection,
// htmx-aware rendering and a typed dependency container with request-scoped
// memoization.
//
// # Apps
//
//	backoffice := shorty.New(
//	    shorty.WithName("backoffice"),
//	    shorty.WithContainer(container),
//	    shorty.WithSession(session.NewSQLiteStore(client)),
//	    shorty.WithCSRF(cfg.Secret),
//	    shorty.WithMiddleware(
//	        middlewares.Recover(),
//	        middlewares.RequestID(),
//	        middlewares.CSRFIssue(),
//	        middlewares.CSRFHeaderCheck(),
//	    ),
//	    shorty.WithHandlers(user.NewLoginHandler(), user.NewHandler()),
//	)
//
//	err := shorty.Run(
//	    shorty.Listen(cfg.Backoffice.Addr(), backoffice),
//	    shorty.ShutdownHook(db.Shutdown(client)),
//	)
//
// # Handlers
//
//	func (h *Handler) Routes(r shorty.Router) {
//	    r.GET("/", h.list, user.MustBeUser())
//	    r.GET("/edit/{id}", h.form, user.MustBeRoot(), shorty.WithFlag(shorty.FlagEdit))
//	}
//
// Route middleware listed first runs first. A middleware that returns an error
// stops the chain and hands the error to the app's ErrorHandler.
//
// # Dependencies
//
// Services are registered once on a Container and resolved per request with
// Dep. ScopeRequest values are memoized for the request, so identity lookups
// shared by several guards hit the database once.
package shorty
