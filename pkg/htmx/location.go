package htmx

import (
	"encoding/json"
	"net/http"
)

// LocationOptions is the JSON payload of the HX-Location header.
type LocationOptions struct {
	Path   string `json:"path"`
	Target string `json:"target,omitempty"`
	Swap   string `json:"swap,omitempty"`
	Select string `json:"select,omitempty"`
}

// DoLocation navigates the client to path.
// htmx requests get 200 with HX-Location targeting target; others get 303.
func DoLocation(w http.ResponseWriter, r *http.Request, path, target string) {
	LocationWithOptions(w, r, LocationOptions{Path: path, Target: target})
}

// LocationWithOptions navigates the client with full HX-Location options.
func LocationWithOptions(w http.ResponseWriter, r *http.Request, opts LocationOptions) {
	if !IsHTMX(r) {
		http.Redirect(w, r, opts.Path, http.StatusSeeOther)
		return
	}

	value := opts.Path
	if opts.Target != "" || opts.Swap != "" || opts.Select != "" {
		if b, err := json.Marshal(opts); err == nil {
			value = string(b)
		}
	}
	w.Header().Set(HeaderHXLocation, value)
	w.WriteHeader(http.StatusOK)
}
