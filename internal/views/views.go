// Package views holds the HTML components shared by the backoffice and the
// public site: the page layout, the htmx partial envelope and form helpers.
//
// Components are plain templ.Component values. A handler builds the page body
// and passes it to Render, which picks the full document or the htmx fragment:
//
//	return views.Render(c, http.StatusOK, views.Page{
//	    Title:   "Error Stack",
//	    Tag:     views.TagStack,
//	    Content: list,
//	})
package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/shorty"
	"github.com/dmitrymomot/shorty/pkg/flash"
	"github.com/dmitrymomot/shorty/pkg/htmx"
)

// Brand is appended to every page title.
const Brand = "Shorty"

// MainTarget is the element htmx navigation swaps.
const MainTarget = "#main-content"

// Nav tags, matched against element ids in the sidebar.
const (
	TagHome   = "id-tag-home"
	TagUser   = "id-tag-user"
	TagShorty = "id-tag-shorty"
	TagStack  = "id-tag-stack"
)

// Viewer is what the layout needs to know about the current visitor.
type Viewer struct {
	Username string
	User     bool
	Root     bool
}

// Page is one rendered screen.
type Page struct {
	Content templ.Component
	Head    templ.Component
	Footer  templ.Component
	// Flash replaces the message stored in the session for this render.
	Flash  *flash.Message
	Title  string
	Tag    string
	Viewer Viewer
	// Bare drops the sidebar and top bar. The public site uses it.
	Bare bool
}

func (p Page) title() string {
	if p.Title == "" {
		return "Untitled"
	}
	return p.Title
}

func (p Page) flash(ctx context.Context) *flash.Message {
	if p.Flash != nil {
		return p.Flash
	}
	return shorty.FlashFromContext(ctx)
}

// Render writes p as a fragment for htmx navigation and as a full document
// otherwise.
func Render(c shorty.Context, code int, p Page, opts ...htmx.RenderOption) error {
	if c.HTMX().Partial() {
		return c.Render(code, Partial(p), opts...)
	}
	return c.Render(code, Layout(p))
}

// Partial is the htmx envelope: title, content and out-of-band updates for the
// alert, command and footer slots.
func Partial(page Page) templ.Component {
	return HTML(func(p *Printer) {
		p.Raw("<title>")
		p.Text(page.title() + " | " + Brand)
		p.Raw("</title>")
		p.Render(page.Content)
		p.Raw(`<div id="alert" hx-swap-oob="true">`)
		p.Render(Alert(page.flash(p.Context())))
		p.Raw(`</div><div id="command" hx-swap-oob="true"><span id="tag-update"`)
		p.Attr("data-tag", page.Tag)
		p.Raw(`></span></div><div id="footer" hx-swap-oob="true">`)
		p.Render(page.Footer)
		p.Raw("</div>")
	})
}

// Layout is the full HTML document.
func Layout(page Page) templ.Component {
	return HTML(func(p *Printer) {
		ctx := p.Context()
		p.Raw(`<!DOCTYPE html><html`)
		if tr, ok := shorty.TranslatorFromContext(ctx); ok {
			p.Attr("lang", tr.Language())
		}
		p.Raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		p.Text(page.title() + " | " + Brand)
		p.Raw(`</title><link rel="stylesheet" type="text/css" href="/assets/css/main.css">`)
		p.Raw(`<script src="`, HTMXScript, `" defer></script><script src="/assets/js/main.js" defer></script>`)
		if token := shorty.CSRFTokenFromContext(ctx); token != "" {
			p.Raw(`<meta name="csrf-token"`)
			p.Attr("content", token)
			p.Raw(">")
		}
		p.Render(page.Head)
		p.Raw(`</head><body><div id="alert">`)
		p.Render(Alert(page.flash(ctx)))
		p.Raw("</div>")

		if page.Bare {
			p.Raw(`<div class="container main-content" id="main-content">`)
			p.Render(page.Content)
			p.Raw("</div>")
		} else {
			p.Raw(`<div class="wrapper"><div class="sidebar-wrapper">`)
			p.Render(navigation(page.Viewer, page.Tag))
			p.Raw(`</div><div class="content-wrapper">`)
			p.Render(topBar(page.Viewer))
			p.Raw(`<div class="container main-content" id="main-content">`)
			p.Render(page.Content)
			p.Raw("</div></div></div>")
		}

		p.Raw(`<div id="command"></div><div id="footer">`)
		p.Render(page.Footer)
		p.Raw("</div></body></html>")
	})
}

// HTMXScript is the htmx build loaded by the layout.
const HTMXScript = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"

// Alert renders a flash message, or nothing for nil.
func Alert(msg *flash.Message) templ.Component {
	return HTML(func(p *Printer) {
		if msg == nil || msg.Message == "" {
			return
		}
		p.Raw("<div")
		p.Attr("class", msg.Class())
		p.Raw(">")
		p.Text(msg.Message)
		p.Raw("</div>")
	})
}
