// Package i18n loads YAML translations and resolves the request language.
//
// Translations are keyed by language, namespace and dotted key. Lookups fall
// back from "en-GB" to "en" and then to the default language; a missing key
// yields the caller-supplied default.
//
//	//go:embed locales
//	var locales embed.FS
//
//	sub, _ := fs.Sub(locales, "locales")
//	bundle, err := i18n.New(
//		i18n.WithDefaultLanguage("en"),
//		i18n.WithYAMLDir(sub),
//	)
//
//	tr := bundle.Translator(bundle.Match(r.Header.Get("Accept-Language")), "app")
//	tr.TD("login.title", "User Login")
package i18n
