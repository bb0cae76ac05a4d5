package htmx

import "net/http"

// RedirectWithStatus sends a full page redirect. htmx requests get
// HX-Redirect on a 200, since htmx ignores the header on 3xx responses.
// Everything else gets a plain redirect with status.
func RedirectWithStatus(w http.ResponseWriter, r *http.Request, target string, status int) {
	if !IsHTMX(r) {
		http.Redirect(w, r, target, status)
		return
	}
	w.Header().Set(HeaderHXRedirect, target)
	w.WriteHeader(http.StatusOK)
}
