package views

import (
	"github.com/a-h/templ"

	"github.com/dmitrymomot/shorty/pkg/i18n"
)

type navItem struct {
	visible func(Viewer) bool
	name    string
	key     string
	url     string
	tag     string
}

func everyone(Viewer) bool { return true }
func users(v Viewer) bool  { return v.User }
func roots(v Viewer) bool  { return v.Root }

var navItems = []navItem{
	{name: "Home", key: "nav.home", url: "/", tag: TagHome, visible: everyone},
	{name: "User", key: "nav.user", url: "/user/", tag: TagUser, visible: users},
	{name: "Shorty", key: "nav.shorty", url: "/shorty/", tag: TagShorty, visible: users},
	{name: "Stack", key: "nav.stack", url: "/stack/", tag: TagStack, visible: roots},
}

func navigation(v Viewer, current string) templ.Component {
	return HTML(func(p *Printer) {
		p.Raw(`<nav class="nav-content"><div class="nav-home">`)
		p.NavLink("/", Brand)
		p.Raw(`</div><div class="navigation">`)
		for _, item := range navItems {
			if !item.visible(v) {
				continue
			}
			class := "nav-item"
			if item.tag == current {
				class += " nav-item-active"
			}
			p.Raw("<div")
			p.Attr("class", class)
			p.Attr("id", item.tag)
			p.Raw(">")
			p.NavLink(item.url, Translate(p.Context(), item.key, item.name))
			p.Raw("</div>")
		}
		p.Raw("</div></nav>")
	})
}

func topBar(v Viewer) templ.Component {
	return HTML(func(p *Printer) {
		p.Raw(`<div class="top-bar-user">`)
		if v.User {
			p.NavLink("/user/", Translate(p.Context(), "top.hello", "Hello, {{username}}", i18n.M{"username": v.Username}))
			p.Raw(`<a class="top-bar-logout" href="/user-login/logout">`)
			p.T("top.logout", "Click here to logout")
			p.Raw("</a>")
		} else {
			p.Raw(`<a href="/user-login/">`)
			p.T("top.visitor", "You're a visitor, click here to login")
			p.Raw("</a>")
		}
		p.Raw("</div>")
	})
}

// NavLink writes an anchor that htmx loads into the main content area and
// pushes onto the history.
func (p *Printer) NavLink(url, label string) {
	p.Raw("<a")
	p.Attr("href", url)
	p.Attr("hx-get", url)
	p.Raw(` hx-push-url="true"`)
	p.Attr("hx-target", MainTarget)
	p.Raw(">")
	p.Text(label)
	p.Raw("</a>")
}
