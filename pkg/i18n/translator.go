package i18n

import (
	"time"
)

// Translator fixes the language and namespace of an I18n bundle.
type Translator struct {
	i18n      *I18n
	language  string
	namespace string
}

// NewTranslator panics on a nil bundle. An empty language means the default.
func NewTranslator(i18n *I18n, language, namespace string) *Translator {
	if i18n == nil {
		panic("i18n: service is not provided")
	}
	if language == "" {
		language = i18n.DefaultLanguage()
	}
	return &Translator{
		i18n:      i18n,
		language:  language,
		namespace: namespace,
	}
}

func (t *Translator) T(key string, placeholders ...M) string {
	return t.i18n.T(t.language, t.namespace, key, placeholders...)
}

// TD translates key with a default text for missing translations.
func (t *Translator) TD(key, def string, placeholders ...M) string {
	return t.i18n.TD(t.language, t.namespace, key, def, placeholders...)
}

// TranslateMessage matches validator.TranslateFunc:
//
//	ve.Translate(tr.TranslateMessage)
func (t *Translator) TranslateMessage(key string, values map[string]any) string {
	return t.i18n.T(t.language, t.namespace, key, values)
}

// FormatDateTime renders a timestamp using the "date_time" template, RFC 3339 by default.
func (t *Translator) FormatDateTime(tm time.Time) string {
	return t.TD("date_time", "{{date}}", M{"date": tm.Format(time.RFC3339)})
}

func (t *Translator) Language() string {
	return t.language
}

func (t *Translator) Namespace() string {
	return t.namespace
}
