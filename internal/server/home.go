package server

import (
	"net/http"

	"github.com/dmitrymomot/shorty"
	"github.com/dmitrymomot/shorty/internal/user"
	"github.com/dmitrymomot/shorty/internal/views"
)

// CSRFPath serves the current CSRF token as JSON for scripts.
const CSRFPath = "/csrf/token"

// backofficeHome is the landing page after login and the CSRF endpoint.
type backofficeHome struct{}

func (h backofficeHome) Routes(r shorty.Router) {
	r.GET("/", h.home, user.VisitorRedirect(user.LoginPath))
	r.GET(CSRFPath, shorty.CSRFTokenHandler)
}

func (h backofficeHome) home(c shorty.Context) error {
	title := c.T("home.title", "Welcome")
	content := views.HTML(func(p *views.Printer) {
		p.Raw(`<h1 class="mt-3">`)
		p.Text(title)
		p.Raw("</h1><p>")
		p.T("home.paragraph", "Check out the navigation above")
		p.Raw("</p>")
	})
	return user.RenderPage(c, http.StatusOK, views.Page{
		Title:   title,
		Tag:     views.TagHome,
		Content: content,
	})
}

// notFound sends unmatched routes through the error handler.
func notFound(c shorty.Context) error {
	return shorty.ErrNotFound(http.StatusText(http.StatusNotFound))
}
