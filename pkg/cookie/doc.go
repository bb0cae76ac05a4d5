// Package cookie reads and writes plain HTTP cookies with shared attributes.
//
//	m := cookie.New(cookie.WithSecure(cfg.SecureCookies))
//	m.Set(w, "login_token", token, 30*24*3600)
//	token, err := m.Get(r, "login_token")
package cookie
