package i18n

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLang is used when WithDefaultLanguage is not given.
const DefaultLang = "en"

var (
	ErrEmptyLanguage  = errors.New("i18n: empty language tag")
	ErrEmptyNamespace = errors.New("i18n: empty namespace")
	ErrInvalidFile    = errors.New("i18n: invalid translation file")
)

// I18n is an immutable translation bundle, safe for concurrent use.
type I18n struct {
	// "lang:namespace:key.path" -> template
	translations map[string]string
	matcher      language.Matcher
	defaultLang  string
	languages    []string
}

// Option configures the I18n instance during construction.
type Option func(*I18n) error

// New builds a bundle from the given options.
func New(opts ...Option) (*I18n, error) {
	i := &I18n{
		translations: make(map[string]string),
		defaultLang:  DefaultLang,
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	i.languages = i.collectLanguages()

	tags := make([]language.Tag, 0, len(i.languages))
	for _, lang := range i.languages {
		tags = append(tags, language.Make(lang))
	}
	i.matcher = language.NewMatcher(tags)

	return i, nil
}

// WithDefaultLanguage sets the fallback language.
func WithDefaultLanguage(lang string) Option {
	return func(i *I18n) error {
		if lang == "" {
			return ErrEmptyLanguage
		}
		i.defaultLang = lang
		return nil
	}
}

// WithTranslations registers a nested translation map for lang and namespace.
func WithTranslations(lang, namespace string, translations map[string]any) Option {
	return func(i *I18n) error {
		if lang == "" {
			return ErrEmptyLanguage
		}
		if namespace == "" {
			return ErrEmptyNamespace
		}
		i.add(lang, namespace, translations)
		return nil
	}
}

func (i *I18n) add(lang, namespace string, translations map[string]any) {
	for key, value := range flatten(translations, "") {
		i.translations[buildKey(lang, namespace, key)] = value
	}
}

// Lookup returns the template for key, falling back to the base and default language.
func (i *I18n) Lookup(lang, namespace, key string) (string, bool) {
	candidates := []string{lang}
	if base := baseLanguage(lang); base != lang {
		candidates = append(candidates, base)
	}
	if !slices.Contains(candidates, i.defaultLang) {
		candidates = append(candidates, i.defaultLang)
	}

	for _, l := range candidates {
		if v, ok := i.translations[buildKey(l, namespace, key)]; ok {
			return v, true
		}
	}
	return "", false
}

// T translates key, returning the key itself when no translation exists.
func (i *I18n) T(lang, namespace, key string, placeholders ...M) string {
	return i.TD(lang, namespace, key, key, placeholders...)
}

// TD translates key, returning def (with placeholders applied) when no translation exists.
func (i *I18n) TD(lang, namespace, key, def string, placeholders ...M) string {
	tmpl, ok := i.Lookup(lang, namespace, key)
	if !ok {
		tmpl = def
	}
	return ReplacePlaceholders(tmpl, merge(placeholders))
}

// Match picks the best supported language for the given Accept-Language
// values. An empty or unparsable header yields the default language.
func (i *I18n) Match(acceptLanguage ...string) string {
	var tags []language.Tag
	for _, header := range acceptLanguage {
		parsed, _, err := language.ParseAcceptLanguage(header)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return i.defaultLang
	}
	_, idx, conf := i.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(i.languages) {
		return i.defaultLang
	}
	return i.languages[idx]
}

// Supports reports whether lang has at least one translation or is the default.
func (i *I18n) Supports(lang string) bool {
	return slices.Contains(i.languages, lang)
}

// Languages returns the supported languages, default first.
func (i *I18n) Languages() []string {
	return slices.Clone(i.languages)
}

// DefaultLanguage returns the fallback language.
func (i *I18n) DefaultLanguage() string {
	return i.defaultLang
}

// Translator binds the bundle to a language and namespace.
func (i *I18n) Translator(lang, namespace string) *Translator {
	return NewTranslator(i, lang, namespace)
}

func (i *I18n) collectLanguages() []string {
	seen := map[string]bool{i.defaultLang: true}
	var others []string
	for key := range i.translations {
		lang, _, _ := strings.Cut(key, ":")
		if !seen[lang] {
			seen[lang] = true
			others = append(others, lang)
		}
	}
	slices.Sort(others)
	return append([]string{i.defaultLang}, others...)
}

func buildKey(lang, namespace, key string) string {
	return lang + ":" + namespace + ":" + key
}

func flatten(data map[string]any, prefix string) map[string]string {
	result := make(map[string]string)

	for key, value := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		switch v := value.(type) {
		case string:
			result[fullKey] = v
		case map[string]any:
			maps.Copy(result, flatten(v, fullKey))
		default:
			result[fullKey] = fmt.Sprint(v)
		}
	}

	return result
}

// baseLanguage strips the region: "en-GB" -> "en".
func baseLanguage(lang string) string {
	if i := strings.IndexByte(lang, '-'); i > 0 {
		return lang[:i]
	}
	return lang
}
