// Package htmx reads htmx request headers and writes htmx-aware responses.
//
// Every helper degrades to plain HTTP for non-htmx requests: a location change
// becomes a 303 redirect and render options that only make sense to htmx are
// skipped.
//
//	// Capture request headers once, early in the middleware chain.
//	r = r.WithContext(htmx.WithHeader(r.Context(), htmx.ParseHeader(r)))
//
//	// Navigate the client, swapping #main-content in place.
//	htmx.DoLocation(w, r, "/user/", "#main-content")
package htmx
