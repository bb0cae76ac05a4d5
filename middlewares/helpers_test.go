package middlewares_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/dmitrymomot/shorty/internal"
)

type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

// newApp mounts h at GET / behind mw and records the error seen by the error handler.
func newApp(h internal.HandlerFunc, captured *error, mw ...internal.Middleware) *internal.App {
	return internal.New(
		internal.WithMiddleware(mw...),
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			if captured != nil {
				*captured = err
			}
			return internal.DefaultErrorHandler(c, err)
		}),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", h)
		})),
	)
}

func get(app http.Handler, target string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func ok(c internal.Context) error {
	return c.String(http.StatusOK, "ok")
}
