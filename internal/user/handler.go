package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/shorty"
	"github.com/dmitrymomot/shorty/internal/views"
	"github.com/dmitrymomot/shorty/pkg/flash"
	"github.com/dmitrymomot/shorty/pkg/i18n"
	"github.com/dmitrymomot/shorty/pkg/validator"
)

// Handler serves the account management pages under /user.
type Handler struct{}

// NewHandler creates the account handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Routes mounts account management under /user. Listing needs a login, changes need root.
func (h *Handler) Routes(r shorty.Router) {
	r.Route("/user", func(r shorty.Router) {
		r.Use(VisitorRedirect(LoginPath))

		r.GET("/", h.list, MustBeUser())
		r.GET("/edit/{id}", h.editForm, MustBeRoot())
		r.POST("/edit/{id}", h.edit, MustBeRoot())
		r.GET("/edit-password/{id}", h.passwordForm, MustBeRoot())
		r.POST("/edit-password/{id}", h.password, MustBeRoot())
		r.GET("/add-user", h.addForm, MustBeRoot())
		r.POST("/add-user", h.add, MustBeRoot())
		r.GET("/sign-out/{id}", h.signOut, MustBeRoot())
	})
}

func userNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return shorty.ErrNotFound(http.StatusText(http.StatusNotFound), shorty.WithError(err))
	}
	return err
}

// validationFailure extracts rule violations reported by the service and
// translates them for the caller.
func validationFailure(c shorty.Context, err error) (validator.ValidationErrors, bool) {
	ve := validator.ExtractValidationErrors(err)
	if len(ve) == 0 {
		return nil, false
	}
	ve.Translate(c.Translator().TranslateMessage)
	return ve, true
}

func (h *Handler) list(c shorty.Context) error {
	svc, err := shorty.Dep[*Service](c)
	if err != nil {
		return err
	}
	viewer, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	users, err := svc.List(c.Context())
	if err != nil {
		return err
	}
	return RenderPage(c, http.StatusOK, views.Page{
		Title:   c.T("user.list.title", "List of Users"),
		Tag:     views.TagUser,
		Content: listContent(users, viewer),
	})
}

func (h *Handler) editPage(c shorty.Context, form ProfileForm, errs validator.ValidationErrors) views.Page {
	title := c.T("user.form.title_edit", "Edit User")
	return views.Page{
		Title:   title,
		Tag:     views.TagUser,
		Content: profileContent(title, c.Request().URL.Path, form, errs),
	}
}

func (h *Handler) editForm(c shorty.Context) error {
	svc, err := shorty.Dep[*Service](c)
	if err != nil {
		return err
	}
	id := shorty.Param[int64](c, "id")
	u, err := svc.Get(c.Context(), id)
	if err != nil {
		return userNotFound(err)
	}
	form := ProfileForm{Username: u.Username, Role: u.Role.String()}
	return RenderPage(c, http.StatusOK, h.editPage(c, form, nil))
}

func (h *Handler) edit(c shorty.Context) error {
	svc, err := shorty.Dep[*Service](c)
	if err != nil {
		return err
	}
	id := shorty.Param[int64](c, "id")

	var form ProfileForm
	errs, err := c.Bind(&form)
	if err != nil {
		return err
	}
	if len(errs) == 0 {
		err = svc.UpdateProfile(c.Context(), id, form)
		if ve, ok := validationFailure(c, err); ok {
			errs = ve
		} else if err != nil {
			return userNotFound(err)
		}
	}
	if len(errs) > 0 {
		return RenderInvalid(c, h.editPage(c, form, errs))
	}

	return Done(c, flash.Success(c.T("user.flash.edited", "Successfully edited user id: {{user_id}}", i18n.M{"user_id": id})), userRoot)
}

func (h *Handler) passwordPage(c shorty.Context, errs validator.ValidationErrors) views.Page {
	title := c.T("user.form.title_edit_password", "Edit User Password")
	return views.Page{
		Title:   title,
		Tag:     views.TagUser,
		Content: passwordContent(title, c.Request().URL.Path, errs),
	}
}

func (h *Handler) passwordForm(c shorty.Context) error {
	svc, err := shorty.Dep[*Service](c)
	if err != nil {
		return err
	}
	if _, err := svc.Get(c.Context(), shorty.Param[int64](c, "id")); err != nil {
		return userNotFound(err)
	}
	return RenderPage(c, http.StatusOK, h.passwordPage(c, nil))
}

func (h *Handler) password(c shorty.Context) error {
	svc, err := shorty.Dep[*Service](c)
	if err != nil {
		return err
	}
	id := shorty.Param[int64](c, "id")
	if _, err := svc.Get(c.Context(), id); err != nil {
		return userNotFound(err)
	}

	var form PasswordForm
	errs, err := c.Bind(&form)
	if err != nil {
		return err
	}
	if len(errs) == 0 {
		err = svc.UpdatePassword(c.Context(), id, form)
		if ve, ok := validationFailure(c, err); ok {
			errs = ve
		} else if err != nil {
			return userNotFound(err)
		}
	}
	if len(errs) > 0 {
		return RenderInvalid(c, h.passwordPage(c, errs))
	}

	return Done(c, flash.Success(c.T("user.flash.password_edited", "Successfully edited password for user id: {{user_id}}", i18n.M{"user_id": id})), userRoot)
}

func (h *Handler) addPage(c shorty.Context, form NewUserForm, errs validator.ValidationErrors) views.Page {
	title := c.T("user.form.title_add", "Add User")
	return views.Page{
		Title:   title,
		Tag:     views.TagUser,
		Content: newUserContent(title, form, errs),
	}
}

func (h *Handler) addForm(c shorty.Context) error {
	return RenderPage(c, http.StatusOK, h.addPage(c, NewUserForm{}, nil))
}

func (h *Handler) add(c shorty.Context) error {
	svc, err := shorty.Dep[*Service](c)
	if err != nil {
		return err
	}

	var form NewUserForm
	errs, err := c.Bind(&form)
	if err != nil {
		return err
	}
	if len(errs) == 0 {
		_, err = svc.Create(c.Context(), form)
		if ve, ok := validationFailure(c, err); ok {
			errs = ve
		} else if err != nil {
			return err
		}
	}
	if len(errs) > 0 {
		return RenderInvalid(c, h.addPage(c, form, errs))
	}

	return Done(c, flash.Success(c.T("user.flash.created", "Successfully created user: {{username}}", i18n.M{"username": form.Username})), userRoot)
}

func (h *Handler) signOut(c shorty.Context) error {
	svc, err := shorty.Dep[*Service](c)
	if err != nil {
		return err
	}
	id := shorty.Param[int64](c, "id")
	placeholders := i18n.M{"user_id": id}

	if err := svc.SignOut(c.Context(), id); err != nil {
		c.LogError("sign out failed", slog.Int64("user_id", id), slog.Any("error", err))
		return Done(c, flash.Error(c.T("user.flash.sign_out_failed", "Failed to sign out user id: {{user_id}}", placeholders)), userRoot)
	}
	return Done(c, flash.Success(c.T("user.flash.signed_out", "Successfully signed out user id: {{user_id}}", placeholders)), userRoot)
}
