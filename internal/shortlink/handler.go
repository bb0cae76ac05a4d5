package shortlink

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/shorty"
	"github.com/dmitrymomot/shorty/internal/user"
	"github.com/dmitrymomot/shorty/internal/views"
	"github.com/dmitrymomot/shorty/middlewares"
	"github.com/dmitrymomot/shorty/pkg/flash"
	"github.com/dmitrymomot/shorty/pkg/validator"
)

// Handler serves the link management pages under /shorty.
type Handler struct{}

// NewHandler creates the link handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Routes mounts the link list and the add, edit and delete actions under /shorty.
func (h *Handler) Routes(r shorty.Router) {
	r.Route("/shorty", func(r shorty.Router) {
		r.Use(user.VisitorRedirect(user.LoginPath))

		r.GET("/", h.list, user.MustBeUser())
		r.GET("/add", h.form, user.MustBeUser(), shorty.WithFlag(shorty.FlagAdd))
		r.POST("/add", h.submit, user.MustBeUser(), shorty.WithFlag(shorty.FlagAdd))
		r.GET("/edit/{id}", h.form, user.MustBeUser(), shorty.WithFlag(shorty.FlagEdit))
		r.POST("/edit/{id}", h.submit, user.MustBeUser(), shorty.WithFlag(shorty.FlagEdit))
		r.GET("/delete/{id}", h.delete, user.MustBeUser(), shorty.WithFlag(shorty.FlagDelete))
		r.DELETE("/delete/{id}", h.delete, user.MustBeUser(), middlewares.CSRFHeaderCheckStrict(), shorty.WithFlag(shorty.FlagDelete))
	})
}

// httpError maps service errors to responses.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return shorty.ErrNotFound(http.StatusText(http.StatusNotFound), shorty.WithError(err))
	case errors.Is(err, ErrForbidden):
		return shorty.ErrForbidden(http.StatusText(http.StatusForbidden), shorty.WithError(err))
	}
	return err
}

func (h *Handler) list(c shorty.Context) error {
	svc, err := shorty.Dep[*Service](c)
	if err != nil {
		return err
	}
	viewer, err := user.CurrentIdentity(c)
	if err != nil {
		return err
	}
	links, err := svc.List(c.Context())
	if err != nil {
		return err
	}
	return user.RenderPage(c, http.StatusOK, views.Page{
		Title:   c.T("shorty.title", "Shorty"),
		Tag:     views.TagShorty,
		Content: listContent(links, viewer),
	})
}

func (h *Handler) page(c shorty.Context, form LinkForm, errs validator.ValidationErrors) views.Page {
	title := c.T("shorty.form.title_add", "Add Url")
	if shorty.CurrentFlag(c) == shorty.FlagEdit {
		title = c.T("shorty.form.title_edit", "Edit Url")
	}
	return views.Page{
		Title:   title,
		Tag:     views.TagShorty,
		Content: formContent(title, c.Request().URL.Path, form, errs),
	}
}

// form serves both the add and the edit form.
func (h *Handler) form(c shorty.Context) error {
	var form LinkForm
	if shorty.CurrentFlag(c) == shorty.FlagEdit {
		svc, err := shorty.Dep[*Service](c)
		if err != nil {
			return err
		}
		who, err := user.CurrentIdentity(c)
		if err != nil {
			return err
		}
		link, err := svc.Get(c.Context(), who, shorty.PathEdit[int64](c, "id"))
		if err != nil {
			return httpError(err)
		}
		form = LinkForm{Path: link.Path, Redirect: link.Redirect}
	}
	return user.RenderPage(c, http.StatusOK, h.page(c, form, nil))
}

func (h *Handler) submit(c shorty.Context) error {
	svc, err := shorty.Dep[*Service](c)
	if err != nil {
		return err
	}
	who, err := user.CurrentIdentity(c)
	if err != nil {
		return err
	}
	editing := shorty.CurrentFlag(c) == shorty.FlagEdit
	id := shorty.PathEdit[int64](c, "id")

	// ownership is reported before any validation feedback
	if editing {
		if _, err := svc.Get(c.Context(), who, id); err != nil {
			return httpError(err)
		}
	}

	var form LinkForm
	errs, err := c.Bind(&form)
	if err != nil {
		return err
	}
	if len(errs) == 0 {
		if editing {
			err = svc.Update(c.Context(), who, id, form)
		} else {
			_, err = svc.Create(c.Context(), who, form)
		}
		if ve := validator.ExtractValidationErrors(err); len(ve) > 0 {
			ve.Translate(c.Translator().TranslateMessage)
			errs = ve
		} else if err != nil {
			return httpError(err)
		}
	}
	if len(errs) > 0 {
		return user.RenderInvalid(c, h.page(c, form, errs))
	}

	msg := flash.Success(c.T("shorty.flash.added", "Successfully added URL"))
	if editing {
		msg = flash.Success(c.T("shorty.flash.edited", "Successfully edited URL"))
	}
	return user.Done(c, msg, linkRoot)
}

func (h *Handler) delete(c shorty.Context) error {
	svc, err := shorty.Dep[*Service](c)
	if err != nil {
		return err
	}
	who, err := user.CurrentIdentity(c)
	if err != nil {
		return err
	}
	if err := svc.Delete(c.Context(), who, shorty.Param[int64](c, "id")); err != nil {
		return httpError(err)
	}
	return user.Done(c, flash.Success(c.T("shorty.flash.deleted", "Successfully deleted URL")), linkRoot)
}
