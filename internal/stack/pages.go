package stack

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/shorty/internal/views"
)

const stackRoot = "/stack/"

func listContent(entries []Entry) templ.Component {
	return views.HTML(func(p *views.Printer) {
		ctx := p.Context()
		p.Heading(views.Translate(ctx, "stack.title", "List Error Stack"))
		p.Raw(`<div class="text-right mb-3"><a`)
		clear := stackRoot + "clear"
		p.Attr("href", clear)
		p.Attr("hx-delete", clear)
		p.Attr("hx-target", views.MainTarget)
		p.Attr("hx-confirm", views.Translate(ctx, "stack.confirm_clear",
			"Are you sure you want to clear all error stacks older than 30 days?"))
		p.Raw(">")
		p.T("stack.action.clear", "Clear Older than 30 days")
		p.Raw(`</a></div><table class="table-full"><thead><tr>`)
		for _, h := range [][2]string{
			{"stack.head.id", "ID"},
			{"stack.head.name", "Name"},
			{"stack.head.summary", "Summary"},
			{"stack.head.reported_at", "Reported At"},
		} {
			p.Raw("<th>")
			p.T(h[0], h[1])
			p.Raw("</th>")
		}
		p.Raw(`<th class="action">`)
		p.T("stack.head.action", "Action")
		p.Raw("</th></tr></thead><tbody>")

		for _, e := range entries {
			p.Raw("<tr><td>")
			p.Int(e.ID)
			p.Raw("</td><td>")
			p.Text(e.Name)
			p.Raw("</td><td>")
			p.Text(e.Summary)
			p.Raw("</td><td>")
			p.Time(e.ReportedAt)
			p.Raw(`</td><td class="action">`)
			p.NavLink(stackRoot+"view/"+strconv.FormatInt(e.ID, 10),
				views.Translate(ctx, "stack.action.view", "View Error Details"))
			p.Raw("</td></tr>")
		}
		p.Raw("</tbody></table>")
	})
}

func detailContent(title string, e Entry) templ.Component {
	return views.HTML(func(p *views.Printer) {
		p.Heading(title)
		p.Raw(`<dl class="error-detail"><dt>`)
		p.T("stack.view.reported_at", "Reported At")
		p.Raw("</dt><dd>")
		p.Time(e.ReportedAt)
		p.Raw("</dd><dt>")
		p.T("stack.view.summary", "Summary")
		p.Raw("</dt><dd>")
		p.Text(e.Summary)
		p.Raw("</dd><dt>")
		p.T("stack.view.stack", "Stack")
		p.Raw(`</dt><dd><pre class="error-stack">`)
		p.Text(e.Stack)
		p.Raw("</pre></dd></dl>")
		p.Raw(`<div class="mt-3">`)
		p.NavLink(stackRoot, views.Translate(p.Context(), "stack.action.back", "Back"))
		p.Raw("</div>")
	})
}
