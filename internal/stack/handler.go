package stack

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/shorty"
	"github.com/dmitrymomot/shorty/internal/user"
	"github.com/dmitrymomot/shorty/internal/views"
	"github.com/dmitrymomot/shorty/middlewares"
	"github.com/dmitrymomot/shorty/pkg/flash"
	"github.com/dmitrymomot/shorty/pkg/i18n"
)

// Handler serves the error log under /stack. Root only.
type Handler struct{}

// NewHandler creates the error log handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Routes mounts the error log pages.
func (h *Handler) Routes(r shorty.Router) {
	r.Route("/stack", func(r shorty.Router) {
		r.Use(user.VisitorRedirect(user.LoginPath), user.MustBeRoot())

		r.GET("/", h.list)
		r.GET("/view/{id}", h.view)
		r.GET("/clear", h.clear)
		r.DELETE("/clear", h.clear, middlewares.CSRFHeaderCheckStrict())
	})
}

func (h *Handler) list(c shorty.Context) error {
	svc, err := shorty.Dep[*Service](c)
	if err != nil {
		return err
	}
	entries, err := svc.List(c.Context())
	if err != nil {
		return err
	}
	return user.RenderPage(c, http.StatusOK, views.Page{
		Title:   c.T("stack.title", "List Error Stack"),
		Tag:     views.TagStack,
		Content: listContent(entries),
	})
}

func (h *Handler) view(c shorty.Context) error {
	svc, err := shorty.Dep[*Service](c)
	if err != nil {
		return err
	}
	e, err := svc.Get(c.Context(), shorty.Param[int64](c, "id"))
	if errors.Is(err, ErrNotFound) {
		return shorty.ErrNotFound(http.StatusText(http.StatusNotFound), shorty.WithError(err))
	}
	if err != nil {
		return err
	}
	title := c.T("stack.view.title", "Error Stack: {{name}}", i18n.M{"name": e.Name})
	return user.RenderPage(c, http.StatusOK, views.Page{
		Title:   title,
		Tag:     views.TagStack,
		Content: detailContent(title, e),
	})
}

func (h *Handler) clear(c shorty.Context) error {
	svc, err := shorty.Dep[*Service](c)
	if err != nil {
		return err
	}
	n, err := svc.Clear(c.Context())
	if err != nil {
		return err
	}
	c.LogInfo("error stack cleared", slog.Int64("deleted", n))
	return user.Done(c, flash.Success(c.T("stack.flash.cleared", "Successfully clear records older than 30 days")), stackRoot)
}
