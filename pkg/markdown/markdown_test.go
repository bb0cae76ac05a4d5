package markdown_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shorty/pkg/markdown"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"home.md":    {Data: []byte("---\ntitle: Welcome\n---\n# Hello\n\nSome *text*.\n")},
		"home.de.md": {Data: []byte("---\ntitle: Willkommen\n---\n# Hallo\n")},
		"plain.md":   {Data: []byte("| a | b |\n|---|---|\n| 1 | 2 |\n")},
		"broken.md":  {Data: []byte("---\ntitle: [unclosed\n")},
	}
}

func TestRender(t *testing.T) {
	t.Parallel()
	r := markdown.NewRenderer(testFS())

	doc, err := r.Render("home.md")
	require.NoError(t, err)
	assert.Equal(t, "Welcome", doc.Title)
	assert.Contains(t, doc.HTML, "<h1>Hello</h1>")
	assert.Contains(t, doc.HTML, "<em>text</em>")

	again, err := r.Render("home.md")
	require.NoError(t, err)
	assert.Same(t, doc, again)

	doc, err = r.Render("plain.md")
	require.NoError(t, err)
	assert.Empty(t, doc.Title)
	assert.Contains(t, doc.HTML, "<table>")

	_, err = r.Render("broken.md")
	assert.ErrorIs(t, err, markdown.ErrInvalidFrontmatter)

	_, err = r.Render("missing.md")
	assert.ErrorIs(t, err, markdown.ErrNotFound)
}

func TestLocalized(t *testing.T) {
	t.Parallel()
	r := markdown.NewRenderer(testFS())

	doc, err := r.Localized("home", "de")
	require.NoError(t, err)
	assert.Equal(t, "Willkommen", doc.Title)

	doc, err = r.Localized("home", "fr")
	require.NoError(t, err)
	assert.Equal(t, "Welcome", doc.Title)

	doc, err = r.Localized("home", "")
	require.NoError(t, err)
	assert.Equal(t, "Welcome", doc.Title)
}

func TestWarm(t *testing.T) {
	t.Parallel()

	fsys := testFS()
	assert.ErrorIs(t, markdown.NewRenderer(fsys).Warm("."), markdown.ErrInvalidFrontmatter)

	delete(fsys, "broken.md")
	require.NoError(t, markdown.NewRenderer(fsys).Warm("."))
}
