package shortlink_test

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shorty/internal/shortlink"
	"github.com/dmitrymomot/shorty/internal/user"
)

func TestHandler(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("visitors are sent to login", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		b := &browser{t: t, app: f.app, cookies: map[string]*http.Cookie{}}

		w := b.get("/shorty/")
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, user.LoginPath, w.Header().Get("Location"))
	})

	t.Run("list shows actions to owners only", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		mine, err := f.links.Create(ctx, f.alice, shortlink.LinkForm{Path: "mine", Redirect: "https://a.example"})
		require.NoError(t, err)
		theirs, err := f.links.Create(ctx, f.bob, shortlink.LinkForm{Path: "theirs", Redirect: "https://b.example"})
		require.NoError(t, err)

		w := f.signIn(t, "alice", strongPassword).get("/shorty/")
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "https://b.example")
		assert.Contains(t, body, `href="/shorty/edit/`+strconv.FormatInt(mine, 10)+`"`)
		assert.NotContains(t, body, `href="/shorty/edit/`+strconv.FormatInt(theirs, 10)+`"`)
		assert.Contains(t, body, "js-date-local")
	})

	t.Run("add", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		b := f.signIn(t, "alice", strongPassword)
		token := b.csrf("/shorty/add")

		w := b.send(http.MethodPost, "/shorty/add", url.Values{"csrf_token": {token}, "url_path": {"Not_Kebab"}, "url_redirect": {"nope"}})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Must be kebab case")
		assert.Contains(t, w.Body.String(), "Must be a valid URL")

		w = b.send(http.MethodPost, "/shorty/add", url.Values{"csrf_token": {token}, "url_path": {" my-link "}, "url_redirect": {"https://example.com"}})
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/shorty/", w.Header().Get("Location"))

		target, err := f.links.Resolve(ctx, "my-link")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", target)

		assert.Contains(t, b.get("/shorty/").Body.String(), "Successfully added URL")

		w = b.send(http.MethodPost, "/shorty/add", url.Values{"csrf_token": {token}, "url_path": {"my-link"}, "url_redirect": {"https://example.org"}})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Path is already taken")
	})

	t.Run("edit checks ownership", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id, err := f.links.Create(ctx, f.alice, shortlink.LinkForm{Path: "docs", Redirect: "https://a.example"})
		require.NoError(t, err)
		path := "/shorty/edit/" + strconv.FormatInt(id, 10)

		bob := f.signIn(t, "bob", strongPassword)
		assert.Equal(t, http.StatusForbidden, bob.get(path).Code)
		token := bob.csrf("/shorty/add")
		w := bob.send(http.MethodPost, path, url.Values{"csrf_token": {token}, "url_path": {"x"}, "url_redirect": {"https://x.example"}})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, http.StatusNotFound, bob.get("/shorty/edit/999").Code)

		alice := f.signIn(t, "alice", strongPassword)
		page := alice.get(path)
		require.Equal(t, http.StatusOK, page.Code)
		assert.Contains(t, page.Body.String(), `value="docs"`)
		assert.Contains(t, page.Body.String(), "Edit Url")

		token = alice.csrf(path)
		w = alice.send(http.MethodPost, path, url.Values{"csrf_token": {token}, "url_path": {"docs-v2"}, "url_redirect": {"https://a2.example"}})
		require.Equal(t, http.StatusSeeOther, w.Code)

		target, err := f.links.Resolve(ctx, "docs-v2")
		require.NoError(t, err)
		assert.Equal(t, "https://a2.example", target)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id, err := f.links.Create(ctx, f.alice, shortlink.LinkForm{Path: "docs", Redirect: "https://a.example"})
		require.NoError(t, err)
		path := "/shorty/delete/" + strconv.FormatInt(id, 10)

		bob := f.signIn(t, "bob", strongPassword)
		assert.Equal(t, http.StatusForbidden, bob.get(path).Code)

		root := f.signIn(t, user.DefaultAdminName, user.DefaultAdminPassword)
		w := root.get(path)
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/shorty/", w.Header().Get("Location"))

		_, err = f.links.Resolve(ctx, "docs")
		assert.ErrorIs(t, err, shortlink.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, root.get(path).Code)
	})

	t.Run("htmx delete needs the csrf header", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id, err := f.links.Create(ctx, f.alice, shortlink.LinkForm{Path: "docs", Redirect: "https://a.example"})
		require.NoError(t, err)
		path := "/shorty/delete/" + strconv.FormatInt(id, 10)

		alice := f.signIn(t, "alice", strongPassword)
		assert.Equal(t, http.StatusUnauthorized, alice.send(http.MethodDelete, path, nil).Code)
		assert.Equal(t, http.StatusUnauthorized, alice.send(http.MethodDelete, path, nil, "X-Csrf-Token", "forged").Code)
		_, err = f.links.Resolve(ctx, "docs")
		require.NoError(t, err)

		page := alice.get("/shorty/").Body.String()
		assert.Contains(t, page, `<meta name="csrf-token" content="`)

		token := alice.csrf("/shorty/add")
		w := alice.send(http.MethodDelete, path, nil, "X-Csrf-Token", token)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		_, err = f.links.Resolve(ctx, "docs")
		assert.ErrorIs(t, err, shortlink.ErrNotFound)
	})
}
