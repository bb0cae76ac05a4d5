package server

import (
	"embed"
	"io/fs"

	"github.com/dmitrymomot/shorty/pkg/i18n"
)

// Namespace is the translation namespace both apps render with.
const Namespace = "app"

//go:embed locales
var locales embed.FS

// Translations loads the embedded locales/{lang}/app.yaml files. English is
// the fallback language.
func Translations() (*i18n.I18n, error) {
	return i18n.New(i18n.WithYAMLDir(Locales()), i18n.WithDefaultLanguage("en"))
}

// Locales is the embedded {lang}/app.yaml tree.
func Locales() fs.FS {
	dir, err := fs.Sub(locales, "locales")
	if err != nil {
		panic(err)
	}
	return dir
}
