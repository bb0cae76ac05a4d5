package user

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/shorty"
	"github.com/dmitrymomot/shorty/internal/views"
	"github.com/dmitrymomot/shorty/pkg/flash"
	"github.com/dmitrymomot/shorty/pkg/htmx"
)

// RenderPage renders page with the layout personalised for the caller.
func RenderPage(c shorty.Context, code int, page views.Page, opts ...htmx.RenderOption) error {
	id, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	page.Viewer = views.Viewer{
		Username: id.Username,
		User:     id.Role.AtLeast(RoleUser),
		Root:     id.IsRoot(),
	}
	return views.Render(c, code, page, opts...)
}

// RenderInvalid re-renders a form page with 422 and the generic validation
// flash.
func RenderInvalid(c shorty.Context, page views.Page) error {
	msg := flash.Error(c.T("validate_flash", "Please check the form above for errors."))
	page.Flash = &msg
	return RenderPage(c, http.StatusUnprocessableEntity, page)
}

// AddFlash stores msg for the next rendered page. A missing session is logged
// and otherwise ignored.
func AddFlash(c shorty.Context, msg flash.Message) {
	if err := c.SetFlash(msg); err != nil {
		c.LogWarn("flash not stored", slog.Any("error", err))
	}
}

// Done flashes msg and sends the client to path, swapping the main content
// area for htmx requests.
func Done(c shorty.Context, msg flash.Message, path string) error {
	AddFlash(c, msg)
	return c.Location(path, views.MainTarget)
}
