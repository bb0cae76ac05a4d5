package middlewares

import (
	"github.com/dmitrymomot/shorty/internal"
	"github.com/dmitrymomot/shorty/pkg/i18n"
)

const (
	// LangQueryParam switches the language for one request and persists the choice.
	LangQueryParam = "lang"
	// LangCookie remembers the chosen language.
	LangCookie = "lang"

	langCookieMaxAge = 365 * 24 * 60 * 60
)

// I18nConfig configures the I18n middleware.
type I18nConfig struct {
	Namespace string
	Extractor internal.Extractor
	Persist   bool
	custom    bool
}

// I18nOption configures I18nConfig.
type I18nOption func(*I18nConfig)

// WithI18nNamespace sets the namespace of the request translator.
func WithI18nNamespace(ns string) I18nOption {
	return func(cfg *I18nConfig) {
		cfg.Namespace = ns
	}
}

// WithI18nExtractor replaces the ?lang, cookie chain. Accept-Language is always the fallback.
func WithI18nExtractor(ext internal.Extractor) I18nOption {
	return func(cfg *I18nConfig) {
		cfg.Extractor = ext
		cfg.custom = true
	}
}

// WithI18nPersist stores a language chosen through ?lang in the lang cookie.
func WithI18nPersist() I18nOption {
	return func(cfg *I18nConfig) {
		cfg.Persist = true
	}
}

// I18n resolves the request language from ?lang, then the lang cookie,
// then Accept-Language. Unsupported explicit choices are ignored.
// The resulting translator is what Context.T and rendered views use.
func I18n(bundle *i18n.I18n, opts ...I18nOption) internal.Middleware {
	cfg := &I18nConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if !cfg.custom {
		cfg.Extractor = internal.NewExtractor(
			internal.FromQuery(LangQueryParam),
			internal.FromCookie(LangCookie),
		)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			lang, ok := cfg.Extractor.Extract(c)
			if !ok || !bundle.Supports(lang) {
				lang = bundle.Match(c.Header("Accept-Language"))
			} else if cfg.Persist && c.Query(LangQueryParam) == lang {
				c.SetCookie(LangCookie, lang, langCookieMaxAge)
			}

			c.Set(internal.TranslatorKey{}, bundle.Translator(lang, cfg.Namespace))
			return next(c)
		}
	}
}
