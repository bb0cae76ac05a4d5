// Package public serves the public site: the home page and short link
// redirects.
package public

import (
	"embed"
	"errors"
	"net/http"

	"github.com/dmitrymomot/shorty"
	"github.com/dmitrymomot/shorty/internal/shortlink"
	"github.com/dmitrymomot/shorty/internal/views"
	"github.com/dmitrymomot/shorty/pkg/markdown"
)

//go:embed content
var content embed.FS

// Handler serves "/" and "/{path}".
type Handler struct {
	docs *markdown.Renderer
}

// NewHandler renders the embedded pages up front and fails on a broken one.
func NewHandler() (*Handler, error) {
	docs := markdown.NewRenderer(content)
	if err := docs.Warm("content"); err != nil {
		return nil, err
	}
	return &Handler{docs: docs}, nil
}

// Routes serves the home page and redirects every other single-segment path.
func (h *Handler) Routes(r shorty.Router) {
	r.GET("/", h.home)
	r.GET("/{path}", h.redirect)
}

func (h *Handler) home(c shorty.Context) error {
	doc, err := h.docs.Localized("content/home", c.Language())
	if err != nil {
		return err
	}
	title := doc.Title
	if title == "" {
		title = c.T("home.title", "Welcome")
	}
	return views.Render(c, http.StatusOK, views.Page{
		Title: title,
		Bare:  true,
		Content: views.HTML(func(p *views.Printer) {
			p.Raw(`<div class="home-content">`, doc.HTML, "</div>")
		}),
	})
}

func (h *Handler) redirect(c shorty.Context) error {
	svc, err := shorty.Dep[*shortlink.Service](c)
	if err != nil {
		return err
	}
	target, err := svc.Resolve(c.Context(), c.Param("path"))
	if errors.Is(err, shortlink.ErrNotFound) {
		return shorty.ErrNotFound(http.StatusText(http.StatusNotFound), shorty.WithError(err))
	}
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, target)
}
