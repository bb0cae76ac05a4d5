package views

import (
	"github.com/dmitrymomot/shorty"
	"github.com/dmitrymomot/shorty/pkg/csrf"
)

// Field is a labelled input with its validation messages.
type Field struct {
	Label       string
	Name        string
	Type        string
	Value       string
	Placeholder string
	Errors      []string
}

// Option is one entry of a select box.
type Option struct {
	Value string
	Label string
}

// FormAttrs describes the form element. Forms post through htmx and swap
// the main content area.
type FormAttrs struct {
	Action string
	// Method defaults to post.
	Method string
}

// FormOpen writes the form tag and the CSRF hidden input.
func (p *Printer) FormOpen(f FormAttrs) {
	method := f.Method
	if method == "" {
		method = "post"
	}
	p.Raw(`<form class="form"`)
	p.Attr("action", f.Action)
	p.Attr("method", method)
	p.Attr("hx-"+method, f.Action)
	p.Attr("hx-target", MainTarget)
	p.Raw(">")
	p.CSRF()
}

// FormClose writes the submit button and closes the form.
func (p *Printer) FormClose(submit string) {
	p.Raw(`<div class="form-actions"><button type="submit" class="button">`)
	p.Text(submit)
	p.Raw("</button></div></form>")
}

// CSRF writes the hidden token input when a token is available.
func (p *Printer) CSRF() {
	token := shorty.CSRFTokenFromContext(p.ctx)
	if token == "" {
		return
	}
	p.Raw(`<input type="hidden"`)
	p.Attr("name", csrf.FormField)
	p.Attr("value", token)
	p.Raw(">")
}

// Field writes a label, an input and the field's errors.
func (p *Printer) Field(f Field) {
	typ := f.Type
	if typ == "" {
		typ = "text"
	}
	p.Raw(`<div class="form-field"><label`)
	p.Attr("for", f.Name)
	p.Raw(">")
	p.Text(f.Label)
	p.Raw("</label><input")
	p.Attr("type", typ)
	p.Attr("id", f.Name)
	p.Attr("name", f.Name)
	if typ != "password" {
		p.Attr("value", f.Value)
	}
	if f.Placeholder != "" {
		p.Attr("placeholder", f.Placeholder)
	}
	if len(f.Errors) > 0 {
		p.Raw(` class="input-invalid" aria-invalid="true"`)
	}
	p.Raw(">")
	p.Errors(f.Errors)
	p.Raw("</div>")
}

// Select writes a labelled select box.
func (p *Printer) Select(label, name, selected string, options []Option, errs []string) {
	p.Raw(`<div class="form-field"><label`)
	p.Attr("for", name)
	p.Raw(">")
	p.Text(label)
	p.Raw("</label><select")
	p.Attr("id", name)
	p.Attr("name", name)
	p.Raw(">")
	for _, o := range options {
		p.Raw("<option")
		p.Attr("value", o.Value)
		if o.Value == selected {
			p.Raw(" selected")
		}
		p.Raw(">")
		p.Text(o.Label)
		p.Raw("</option>")
	}
	p.Raw("</select>")
	p.Errors(errs)
	p.Raw("</div>")
}

// Errors writes a list of validation messages. Nothing is written for an
// empty list.
func (p *Printer) Errors(msgs []string) {
	if len(msgs) == 0 {
		return
	}
	p.Raw(`<ul class="validation-error-list">`)
	for _, m := range msgs {
		p.Raw(`<li class="validation-error-message">`)
		p.Text(m)
		p.Raw("</li>")
	}
	p.Raw("</ul>")
}

// Heading writes the page heading.
func (p *Printer) Heading(title string) {
	p.Raw("<h1>")
	p.Text(title)
	p.Raw("</h1>")
}
