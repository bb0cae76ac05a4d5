package i18n_test

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shorty/pkg/i18n"
)

func newBundle(t *testing.T) *i18n.I18n {
	t.Helper()
	fsys := fstest.MapFS{
		"en/app.yaml": {Data: []byte("login:\n  title: User Login\n  hello: \"Hello, {{username}}\"\n")},
		"fr/app.yml":  {Data: []byte("login:\n  title: Connexion\n")},
		"README.md":   {Data: []byte("ignored")},
	}
	b, err := i18n.New(i18n.WithDefaultLanguage("en"), i18n.WithYAMLDir(fsys))
	require.NoError(t, err)
	return b
}

func TestTranslate(t *testing.T) {
	t.Parallel()
	b := newBundle(t)

	assert.Equal(t, []string{"en", "fr"}, b.Languages())
	assert.Equal(t, "Connexion", b.T("fr", "app", "login.title"))
	assert.Equal(t, "Connexion", b.T("fr-CA", "app", "login.title"))
	assert.Equal(t, "Hello, admin", b.T("fr", "app", "login.hello", i18n.M{"username": "admin"}))
	assert.Equal(t, "login.missing", b.T("en", "app", "login.missing"))
	assert.Equal(t, "Bye, admin", b.TD("en", "app", "login.bye", "Bye, {{username}}", i18n.M{"username": "admin"}))
}

func TestMatch(t *testing.T) {
	t.Parallel()
	b := newBundle(t)

	assert.Equal(t, "fr", b.Match("fr-FR,fr;q=0.9,en;q=0.5"))
	assert.Equal(t, "en", b.Match("de-DE"))
	assert.Equal(t, "en", b.Match(""))
	assert.Equal(t, "en", b.Match("es-ES,es;q=0.9"))
	assert.Equal(t, "en", b.Match("en;q=bogus"))
	assert.Equal(t, "fr", b.Match("es", "fr-CA"))
	assert.True(t, b.Supports("fr"))
	assert.False(t, b.Supports("de"))
}

func TestTranslator(t *testing.T) {
	t.Parallel()
	b := newBundle(t)

	tr := b.Translator("", "app")
	assert.Equal(t, "en", tr.Language())
	assert.Equal(t, "User Login", tr.T("login.title"))
	assert.Equal(t, "fallback", tr.TD("nope", "fallback"))
	assert.Equal(t, "validation.required", tr.TranslateMessage("validation.required", nil))

	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-05-01T10:00:00Z", tr.FormatDateTime(ts))
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	_, err := i18n.New(i18n.WithDefaultLanguage(""))
	require.ErrorIs(t, err, i18n.ErrEmptyLanguage)

	_, err = i18n.New(i18n.WithTranslations("en", "", map[string]any{"a": "b"}))
	require.ErrorIs(t, err, i18n.ErrEmptyNamespace)

	_, err = i18n.New(i18n.WithYAMLDir(fstest.MapFS{"app.yaml": {Data: []byte("a: b")}}))
	require.ErrorIs(t, err, i18n.ErrInvalidFile)

	_, err = i18n.New(i18n.WithYAMLDir(fstest.MapFS{"en/app.yaml": {Data: []byte("a: [")}}))
	require.ErrorIs(t, err, i18n.ErrInvalidFile)

	assert.Panics(t, func() { i18n.NewTranslator(nil, "en", "app") })
}
