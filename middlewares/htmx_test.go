package middlewares_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/shorty/internal"
	"github.com/dmitrymomot/shorty/middlewares"
	"github.com/dmitrymomot/shorty/pkg/htmx"
)

func TestHTMX(t *testing.T) {
	t.Parallel()

	target := func(c internal.Context) error {
		h := htmx.FromContext(c.Context())
		if !h.Partial() {
			return c.String(http.StatusOK, "page")
		}
		return c.String(http.StatusOK, h.Target)
	}
	app := newApp(target, nil, middlewares.HTMX())

	w := get(app, "/", htmx.HeaderHXRequest, "true", htmx.HeaderHXTarget, "main")
	assert.Equal(t, "main", w.Body.String())
	assert.Equal(t, htmx.HeaderHXRequest, w.Header().Get("Vary"))

	w = get(app, "/", htmx.HeaderHXRequest, "true", htmx.HeaderHXBoosted, "true")
	assert.Equal(t, "page", w.Body.String())

	w = get(app, "/")
	assert.Equal(t, "page", w.Body.String())
}
