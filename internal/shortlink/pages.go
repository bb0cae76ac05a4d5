package shortlink

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/shorty/internal/user"
	"github.com/dmitrymomot/shorty/internal/views"
	"github.com/dmitrymomot/shorty/pkg/i18n"
	"github.com/dmitrymomot/shorty/pkg/validator"
)

const linkRoot = "/shorty/"

func listContent(links []Link, viewer user.Identity) templ.Component {
	return views.HTML(func(p *views.Printer) {
		ctx := p.Context()
		p.Heading(views.Translate(ctx, "shorty.title", "Shorty"))
		p.Raw(`<table class="table-full"><thead><tr>`)
		for _, h := range [][2]string{
			{"shorty.head.id", "ID"},
			{"shorty.head.path", "Path"},
			{"shorty.head.redirect", "Redirect URL"},
			{"shorty.head.created_at", "Created At"},
			{"shorty.head.created_by", "Created By"},
		} {
			p.Raw("<th>")
			p.T(h[0], h[1])
			p.Raw("</th>")
		}
		p.Raw(`<th class="action">`)
		p.T("shorty.head.action", "Action")
		p.Raw("</th></tr></thead><tbody>")

		for _, l := range links {
			id := strconv.FormatInt(l.ID, 10)
			p.Raw("<tr><td>")
			p.Int(l.ID)
			p.Raw("</td><td>")
			p.Text(l.Path)
			p.Raw("</td><td>")
			p.Text(l.Redirect)
			p.Raw("</td><td>")
			p.Time(l.CreatedAt)
			p.Raw("</td><td>")
			p.Text(l.Creator)
			p.Raw(`</td><td class="action">`)
			if viewer.CanManage(l.CreatedBy) {
				p.NavLink(linkRoot+"edit/"+id, views.Translate(ctx, "shorty.action.edit", "Edit Url"))
				del := linkRoot + "delete/" + id
				p.Raw(" <a")
				p.Attr("href", del)
				p.Attr("hx-delete", del)
				p.Attr("hx-target", views.MainTarget)
				p.Attr("hx-confirm", views.Translate(ctx, "shorty.confirm_delete",
					"Are you sure you want to delete '{{id}}'?", i18n.M{"id": l.ID}))
				p.Raw(">")
				p.T("shorty.action.delete", "Delete Url")
				p.Raw("</a>")
			}
			p.Raw("</td></tr>")
		}
		p.Raw(`</tbody></table><div class="text-right mt-3">`)
		p.NavLink(linkRoot+"add", views.Translate(ctx, "shorty.action.add", "Add Url"))
		p.Raw("</div>")
	})
}

func formContent(title, action string, form LinkForm, errs validator.ValidationErrors) templ.Component {
	return views.HTML(func(p *views.Printer) {
		ctx := p.Context()
		p.Heading(title)
		p.FormOpen(views.FormAttrs{Action: action})
		p.Field(views.Field{
			Label:       views.Translate(ctx, "shorty.form.path", "Path:"),
			Name:        "url_path",
			Value:       form.Path,
			Placeholder: views.Translate(ctx, "shorty.form.path_placeholder", "Path"),
			Errors:      errs.Get("url_path"),
		})
		p.Field(views.Field{
			Label:       views.Translate(ctx, "shorty.form.redirect", "Redirect To:"),
			Name:        "url_redirect",
			Value:       form.Redirect,
			Placeholder: views.Translate(ctx, "shorty.form.redirect_placeholder", "Redirect To"),
			Errors:      errs.Get("url_redirect"),
		})
		p.FormClose(views.Translate(ctx, "shorty.form.submit", "Save"))
	})
}
