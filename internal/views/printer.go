package views

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/shorty"
	"github.com/dmitrymomot/shorty/pkg/i18n"
)

// Printer writes HTML and keeps the first write error.
type Printer struct {
	ctx context.Context
	w   io.Writer
	err error
}

// HTML builds a component from fn.
//
//	views.HTML(func(p *views.Printer) {
//	    p.Raw("<h1>")
//	    p.T("stack.title", "Error Stack")
//	    p.Raw("</h1>")
//	})
func HTML(fn func(p *Printer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &Printer{ctx: ctx, w: w}
		fn(p)
		return p.err
	})
}

// Context returns the render context.
func (p *Printer) Context() context.Context {
	return p.ctx
}

// Raw writes trusted markup.
func (p *Printer) Raw(parts ...string) {
	for _, s := range parts {
		if p.err != nil {
			return
		}
		_, p.err = io.WriteString(p.w, s)
	}
}

// Text writes escaped text.
func (p *Printer) Text(s string) {
	p.Raw(templ.EscapeString(s))
}

// Int writes a number.
func (p *Printer) Int(n int64) {
	p.Raw(strconv.FormatInt(n, 10))
}

// Attr writes ` name="value"` with the value escaped.
func (p *Printer) Attr(name, value string) {
	p.Raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// Render writes a nested component. Nil components are skipped.
func (p *Printer) Render(c templ.Component) {
	if p.err != nil || c == nil {
		return
	}
	p.err = c.Render(p.ctx, p.w)
}

// T writes an escaped translation.
func (p *Printer) T(key, def string, placeholders ...i18n.M) {
	p.Text(Translate(p.ctx, key, def, placeholders...))
}

// Translate resolves key with the request translator, falling back to def
// with placeholders applied.
func Translate(ctx context.Context, key, def string, placeholders ...i18n.M) string {
	if tr, ok := shorty.TranslatorFromContext(ctx); ok {
		return tr.TD(key, def, placeholders...)
	}
	if len(placeholders) == 0 {
		return def
	}
	merged := i18n.M{}
	for _, m := range placeholders {
		for k, v := range m {
			merged[k] = v
		}
	}
	return i18n.ReplacePlaceholders(def, merged)
}

// Time writes t for the client script to convert to local time. The server
// side rendering uses the request language.
func (p *Printer) Time(t time.Time) {
	p.Raw(`<time class="js-date-local"`)
	p.Attr("datetime", t.UTC().Format(time.RFC3339))
	p.Raw(">")
	if tr, ok := shorty.TranslatorFromContext(p.ctx); ok {
		p.Text(tr.FormatDateTime(t))
	} else {
		p.Text(t.UTC().Format(time.DateTime))
	}
	p.Raw("</time>")
}
