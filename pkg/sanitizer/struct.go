package sanitizer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrNotStructPointer is returned when SanitizeStruct gets anything but a struct pointer.
var ErrNotStructPointer = errors.New("sanitizer: expected pointer to struct")

var transforms = map[string]func(string) string{
	"trim":  Trim,
	"strip": StripHTML,
	"lower": strings.ToLower,
	"html":  SanitizeHTML,
}

// SanitizeStruct applies `sanitize` tag rules to string fields in order:
//
//	Username string `sanitize:"strip,trim"`
//
// Nested structs are walked. Unknown rules are an error.
func SanitizeStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer
	}
	return sanitizeValue(rv.Elem())
}

func sanitizeValue(rv reflect.Value) error {
	rt := rv.Type()
	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := rv.Field(i)

		if fv.Kind() == reflect.Struct {
			if err := sanitizeValue(fv); err != nil {
				return err
			}
			continue
		}

		tag := field.Tag.Get("sanitize")
		if tag == "" || tag == "-" || fv.Kind() != reflect.String {
			continue
		}

		s := fv.String()
		for rule := range strings.SplitSeq(tag, ",") {
			fn, ok := transforms[strings.TrimSpace(rule)]
			if !ok {
				return fmt.Errorf("sanitizer: unknown rule %q on field %s", rule, field.Name)
			}
			s = fn(s)
		}
		fv.SetString(s)
	}
	return nil
}
