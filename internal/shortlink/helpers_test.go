package shortlink_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shorty"
	"github.com/dmitrymomot/shorty/internal/migrations"
	"github.com/dmitrymomot/shorty/internal/shortlink"
	"github.com/dmitrymomot/shorty/internal/user"
	"github.com/dmitrymomot/shorty/pkg/db"
	"github.com/dmitrymomot/shorty/pkg/password"
	"github.com/dmitrymomot/shorty/pkg/session"
)

const strongPassword = "Correct-Horse-Battery-9"

func openDB(t *testing.T) *db.Client {
	t.Helper()
	ctx := context.Background()
	client, err := db.Open(ctx, db.Config{Path: db.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, db.Migrate(ctx, client, migrations.FS))
	return client
}

type fixture struct {
	db    *db.Client
	app   *shorty.App
	users *user.Service
	links *shortlink.Service
	root  user.Identity
	alice user.Identity
	bob   user.Identity
}

// newFixture seeds a root admin and two plain users.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	client := openDB(t)

	c := shorty.NewContainer()
	shorty.Supply(c, client)
	shorty.Supply(c, slog.New(slog.NewTextHandler(io.Discard, nil)))
	user.Register(c, user.WithPasswordParams(password.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}))
	shortlink.Register(c)

	users, err := shorty.Resolve[*user.Service](ctx, c)
	require.NoError(t, err)
	links, err := shorty.Resolve[*shortlink.Service](ctx, c)
	require.NoError(t, err)
	_, err = users.EnsureAdmin(ctx)
	require.NoError(t, err)

	f := &fixture{db: client, users: users, links: links}
	f.root = user.Identity{ID: 1, Username: user.DefaultAdminName, Role: user.RoleRoot}
	for _, u := range []struct {
		dst  *user.Identity
		name string
	}{{&f.alice, "alice"}, {&f.bob, "bob"}} {
		id, err := users.Create(ctx, user.NewUserForm{Username: u.name, Password: strongPassword, PasswordConfirm: strongPassword, Role: "user"})
		require.NoError(t, err)
		*u.dst = user.Identity{ID: id, Username: u.name, Role: user.RoleUser}
	}

	f.app = shorty.New(
		shorty.WithContainer(c),
		shorty.WithSession(session.NewSQLiteStore(client)),
		shorty.WithCSRF("test-secret-test-secret-test-secret"),
		shorty.WithHandlers(user.NewLoginHandler(), shortlink.NewHandler()),
	)
	return f
}

// browser keeps cookies between requests.
type browser struct {
	t       *testing.T
	app     http.Handler
	cookies map[string]*http.Cookie
}

var csrfInput = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// signIn logs in as username and returns the browser holding the session.
func (f *fixture) signIn(t *testing.T, username, pass string) *browser {
	t.Helper()
	b := &browser{t: t, app: f.app, cookies: map[string]*http.Cookie{}}
	token := b.csrf(user.LoginPath)
	w := b.send(http.MethodPost, user.LoginPath, url.Values{"csrf_token": {token}, "username": {username}, "password": {pass}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.NotNil(t, b.cookies[user.TokenCookie])
	return b
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.app.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (b *browser) send(method, target string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return b.do(req)
}

func (b *browser) csrf(target string) string {
	b.t.Helper()
	w := b.get(target)
	m := csrfInput.FindStringSubmatch(w.Body.String())
	require.Len(b.t, m, 2, "no csrf token on %s (status %d)", target, w.Code)
	return m[1]
}
