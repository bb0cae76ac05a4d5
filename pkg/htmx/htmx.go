package htmx

import (
	"context"
	"net/http"
)

// IsHTMX returns true if the request originated from HTMX.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HeaderHXRequest) == "true"
}

// Header holds the htmx request headers.
type Header struct {
	CurrentURL            string
	Prompt                string
	Target                string
	TriggerName           string
	Trigger               string
	Boosted               bool
	HistoryRestoreRequest bool
	Request               bool
}

// ParseHeader reads the htmx request headers from r.
func ParseHeader(r *http.Request) Header {
	h := r.Header
	return Header{
		Boosted:               h.Get(HeaderHXBoosted) == "true",
		CurrentURL:            h.Get(HeaderHXCurrentURL),
		HistoryRestoreRequest: h.Get(HeaderHXHistoryRestoreRequest) == "true",
		Prompt:                h.Get(HeaderHXPrompt),
		Request:               h.Get(HeaderHXRequest) == "true",
		Target:                h.Get(HeaderHXTarget),
		TriggerName:           h.Get(HeaderHXTriggerName),
		Trigger:               h.Get(HeaderHXTrigger),
	}
}

// Partial reports whether the client expects a fragment rather than a full page.
// History restores and boosted navigation want the whole document.
func (h Header) Partial() bool {
	return h.Request && !h.Boosted && !h.HistoryRestoreRequest
}

type headerKey struct{}

// WithHeader stores h in ctx.
func WithHeader(ctx context.Context, h Header) context.Context {
	return context.WithValue(ctx, headerKey{}, h)
}

// FromContext returns the header captured by WithHeader.
// The zero Header is returned when nothing was captured.
func FromContext(ctx context.Context) Header {
	h, _ := ctx.Value(headerKey{}).(Header)
	return h
}
