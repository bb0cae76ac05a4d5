package internal

// Handler declares routes on a router.
//
//	func (h *LoginHandler) Routes(r shorty.Router) {
//	    r.GET("/", h.form, user.VisitorOnly())
//	    r.POST("/", h.login, user.VisitorOnly())
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc handles a request. A returned error is passed to the app's ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc. It may short-circuit by returning an error
// without calling next.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders errors returned from handlers.
type ErrorHandler func(Context, error) error
