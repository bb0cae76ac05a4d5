package views

import "github.com/a-h/templ"

// ErrorContent is the body of an error page.
func ErrorContent(title, message string) templ.Component {
	return HTML(func(p *Printer) {
		p.Raw(`<div class="error-page">`)
		p.Heading(title)
		if message != "" {
			p.Raw(`<p class="error-message">`)
			p.Text(message)
			p.Raw("</p>")
		}
		p.Raw(`<p><a href="/">`)
		p.T("error.back", "Back to home")
		p.Raw("</a></p></div>")
	})
}
