package user

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/shorty/internal/views"
	"github.com/dmitrymomot/shorty/pkg/i18n"
	"github.com/dmitrymomot/shorty/pkg/validator"
)

const userRoot = "/user/"

func loginContent() templ.Component {
	return views.HTML(func(p *views.Printer) {
		ctx := p.Context()
		p.Heading(views.Translate(ctx, "login.title", "User Login"))
		p.Raw(`<form class="form" method="post"`)
		p.Attr("action", LoginPath)
		p.Raw(">")
		p.CSRF()
		p.Raw(`<input class="form-item" type="text" name="username" autocomplete="username"`)
		p.Attr("placeholder", views.Translate(ctx, "login.username", "Username"))
		p.Raw(`><input class="form-item" type="password" name="password" autocomplete="current-password"`)
		p.Attr("placeholder", views.Translate(ctx, "login.password", "Password"))
		p.Raw(">")
		p.FormClose(views.Translate(ctx, "login.submit", "Login"))
	})
}

func listContent(users []User, viewer Identity) templ.Component {
	return views.HTML(func(p *views.Printer) {
		ctx := p.Context()
		p.Heading(views.Translate(ctx, "user.list.title", "List of Users"))
		p.Raw(`<table class="table-full"><thead><tr><th>`)
		p.T("user.list.id", "Id")
		p.Raw("</th><th>")
		p.T("user.list.username", "Username")
		p.Raw("</th><th>")
		p.T("user.list.role", "Role")
		p.Raw("</th>")
		if viewer.IsRoot() {
			p.Raw(`<th class="action">`)
			p.T("user.list.action", "Action")
			p.Raw("</th>")
		}
		p.Raw("</tr></thead><tbody>")
		for _, u := range users {
			id := strconv.FormatInt(u.ID, 10)
			p.Raw("<tr><td>")
			p.Int(u.ID)
			p.Raw("</td><td>")
			p.Text(u.Username)
			p.Raw("</td><td>")
			p.Text(u.Role.String())
			p.Raw("</td>")
			if viewer.IsRoot() {
				p.Raw(`<td class="actions">`)
				p.NavLink(userRoot+"edit/"+id, views.Translate(ctx, "user.list.edit", "Edit User"))
				p.NavLink(userRoot+"edit-password/"+id, views.Translate(ctx, "user.list.password", "Edit Password"))
				signOut := userRoot + "sign-out/" + id
				p.Raw("<a")
				p.Attr("href", signOut)
				p.Attr("hx-get", signOut)
				p.Attr("hx-target", views.MainTarget)
				p.Attr("hx-confirm", views.Translate(ctx, "user.list.sign_out_confirm",
					"Are you sure you want to log out '{{username}}'?", i18n.M{"username": u.Username}))
				p.Raw(">")
				p.T("user.list.sign_out", "Sign Out User")
				p.Raw("</a></td>")
			}
			p.Raw("</tr>")
		}
		p.Raw("</tbody></table>")
		if viewer.IsRoot() {
			p.Raw(`<div class="text-right mt-3">`)
			p.NavLink(userRoot+"add-user", views.Translate(ctx, "user.list.add", "Add Users"))
			p.Raw("</div>")
		}
	})
}

func roleOptions() []views.Option {
	roles := AssignableRoles()
	opts := make([]views.Option, 0, len(roles))
	for _, r := range roles {
		opts = append(opts, views.Option{Value: r.String(), Label: r.String()})
	}
	return opts
}

func usernameField(p *views.Printer, value string, errs validator.ValidationErrors) {
	ctx := p.Context()
	p.Field(views.Field{
		Label:       views.Translate(ctx, "user.form.username", "Username:"),
		Name:        "username",
		Value:       value,
		Placeholder: views.Translate(ctx, "user.form.username_placeholder", "Username"),
		Errors:      errs.Get("username"),
	})
}

func passwordFields(p *views.Printer, errs validator.ValidationErrors) {
	ctx := p.Context()
	p.Field(views.Field{
		Label:       views.Translate(ctx, "user.form.password", "Password:"),
		Name:        "password",
		Type:        "password",
		Placeholder: views.Translate(ctx, "user.form.password_placeholder", "Password"),
		Errors:      errs.Get("password"),
	})
	p.Field(views.Field{
		Label:       views.Translate(ctx, "user.form.password_confirm", "Password Confirm:"),
		Name:        "password_confirm",
		Type:        "password",
		Placeholder: views.Translate(ctx, "user.form.password_confirm_placeholder", "Password Confirm"),
		Errors:      errs.Get("password_confirm"),
	})
}

func roleField(p *views.Printer, value string, errs validator.ValidationErrors) {
	if value == "" {
		value = RoleUser.String()
	}
	p.Select(views.Translate(p.Context(), "user.form.role", "Role:"), "role", value, roleOptions(), errs.Get("role"))
}

func profileContent(title, action string, form ProfileForm, errs validator.ValidationErrors) templ.Component {
	return views.HTML(func(p *views.Printer) {
		p.Heading(title)
		p.FormOpen(views.FormAttrs{Action: action})
		usernameField(p, form.Username, errs)
		roleField(p, form.Role, errs)
		p.FormClose(views.Translate(p.Context(), "user.form.submit_edit", "Edit"))
	})
}

func passwordContent(title, action string, errs validator.ValidationErrors) templ.Component {
	return views.HTML(func(p *views.Printer) {
		p.Heading(title)
		p.FormOpen(views.FormAttrs{Action: action})
		passwordFields(p, errs)
		p.FormClose(views.Translate(p.Context(), "user.form.submit_password", "Submit"))
	})
}

func newUserContent(title string, form NewUserForm, errs validator.ValidationErrors) templ.Component {
	return views.HTML(func(p *views.Printer) {
		p.Heading(title)
		p.FormOpen(views.FormAttrs{Action: userRoot + "add-user"})
		usernameField(p, form.Username, errs)
		passwordFields(p, errs)
		roleField(p, form.Role, errs)
		p.FormClose(views.Translate(p.Context(), "user.form.submit_add", "Add"))
	})
}
