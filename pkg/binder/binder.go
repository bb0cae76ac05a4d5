// Package binder decodes request forms and query strings into tagged structs.
//
//	type addURLForm struct {
//		Path     string `form:"url_path"`
//		Redirect string `form:"url_redirect"`
//	}
//
// Values are matched on the `form` tag and weakly typed, so "42" binds into
// int fields and "on" into bool fields.
package binder

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrDecode wraps any failure to map values onto the target.
var ErrDecode = errors.New("binder: decode failed")

// maxMemory bounds multipart parsing.
const maxMemory = 8 << 20

// Func binds a request into v.
type Func func(r *http.Request, v any) error

// Form returns a binder reading the request body form (and the query string for GET).
func Form() Func {
	return func(r *http.Request, v any) error {
		if err := parseForm(r); err != nil {
			return fmt.Errorf("parse form: %w", err)
		}
		values := r.PostForm
		if r.Method == http.MethodGet || r.Method == http.MethodHead || len(values) == 0 {
			values = r.Form
		}
		return Values(values, v)
	}
}

// Query returns a binder reading only the URL query string.
func Query() Func {
	return func(r *http.Request, v any) error {
		return Values(r.URL.Query(), v)
	}
}

// Values decodes url.Values into v.
func Values(values url.Values, v any) error {
	input := make(map[string]any, len(values))
	for key, vals := range values {
		switch len(vals) {
		case 0:
		case 1:
			input[key] = vals[0]
		default:
			input[key] = vals
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "form",
		WeaklyTypedInput: true,
		Result:           v,
	})
	if err != nil {
		return errors.Join(ErrDecode, err)
	}
	if err := dec.Decode(input); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

func parseForm(r *http.Request) error {
	if r.MultipartForm != nil || r.PostForm != nil {
		return nil
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxMemory)
	}
	return r.ParseForm()
}
