package validator

import (
	"errors"
	"strings"
)

// ValidationError is a single field failure.
type ValidationError struct {
	TranslationValues map[string]any
	Field             string
	Message           string
	TranslationKey    string
}

// ValidationErrors collects failures in field order.
type ValidationErrors []ValidationError

// TranslateFunc resolves a translation key into a message.
type TranslateFunc func(key string, values map[string]any) string

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, ve := range e {
		parts = append(parts, ve.Field+": "+ve.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a failure for field.
func (e *ValidationErrors) Add(field, key, message string, values map[string]any) {
	*e = append(*e, ValidationError{
		Field:             field,
		Message:           message,
		TranslationKey:    key,
		TranslationValues: values,
	})
}

// Has reports whether field has at least one failure.
func (e ValidationErrors) Has(field string) bool {
	for _, ve := range e {
		if ve.Field == field {
			return true
		}
	}
	return false
}

// Get returns the messages for field.
func (e ValidationErrors) Get(field string) []string {
	var msgs []string
	for _, ve := range e {
		if ve.Field == field {
			msgs = append(msgs, ve.Message)
		}
	}
	return msgs
}

// Translate rewrites messages in place. Entries without a key are left alone.
func (e ValidationErrors) Translate(fn TranslateFunc) {
	if fn == nil {
		return
	}
	for i := range e {
		if e[i].TranslationKey == "" {
			continue
		}
		if msg := fn(e[i].TranslationKey, e[i].TranslationValues); msg != "" && msg != e[i].TranslationKey {
			e[i].Message = msg
		}
	}
}

// IsValidationError reports whether err carries ValidationErrors.
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// ExtractValidationErrors returns the ValidationErrors in err, or nil.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
