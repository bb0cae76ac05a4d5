package stack_test

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
	"github.com/dmitrymomot/shorty/internal/stack"
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
	app  *shorty.App
	repo *stack.Repository
	svc  *stack.Service
}

// newFixture seeds the root admin and a plain user named alice.
func newFixture(t *testing.T, opts ...shorty.Option) *fixture {
	t.Helper()
	ctx := context.Background()
	client := openDB(t)

	c := shorty.NewContainer()
	shorty.Supply(c, client)
	shorty.Supply(c, slog.New(slog.NewTextHandler(io.Discard, nil)))
	user.Register(c, user.WithPasswordParams(password.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}))
	stack.Register(c, stack.Options{})

	users, err := shorty.Resolve[*user.Service](ctx, c)
	require.NoError(t, err)
	_, err = users.EnsureAdmin(ctx)
	require.NoError(t, err)
	_, err = users.Create(ctx, user.NewUserForm{Username: "alice", Password: strongPassword, PasswordConfirm: strongPassword, Role: "user"})
	require.NoError(t, err)

	f := &fixture{}
	f.repo, err = shorty.Resolve[*stack.Repository](ctx, c)
	require.NoError(t, err)
	f.svc, err = shorty.Resolve[*stack.Service](ctx, c)
	require.NoError(t, err)

	f.app = shorty.New(append([]shorty.Option{
		shorty.WithContainer(c),
		shorty.WithSession(session.NewSQLiteStore(client)),
		shorty.WithCSRF("test-secret-test-secret-test-secret"),
		shorty.WithHandlers(user.NewLoginHandler(), stack.NewHandler()),
	}, opts...)...)
	return f
}

type browser struct {
	t       *testing.T
	app     http.Handler
	cookies map[string]*http.Cookie
}

var (
	csrfInput = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)
	csrfMeta  = regexp.MustCompile(`<meta name="csrf-token" content="([^"]+)"`)
)

func (f *fixture) visitor(t *testing.T) *browser {
	return &browser{t: t, app: f.app, cookies: map[string]*http.Cookie{}}
}

func (f *fixture) signIn(t *testing.T, username, pass string) *browser {
	t.Helper()
	b := f.visitor(t)
	token := b.csrf(user.LoginPath)
	w := b.send(http.MethodPost, user.LoginPath, url.Values{"csrf_token": {token}, "username": {username}, "password": {pass}})
	require.Equal(t, http.StatusSeeOther, w.Code)
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

func (b *browser) get(target string, headers ...string) *httptest.ResponseRecorder {
	return b.send(http.MethodGet, target, nil, headers...)
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

// pageToken reads the token htmx sends as X-Csrf-Token.
func (b *browser) pageToken(target string) string {
	b.t.Helper()
	w := b.get(target)
	m := csrfMeta.FindStringSubmatch(w.Body.String())
	require.Len(b.t, m, 2, "no csrf meta tag on %s (status %d)", target, w.Code)
	return m[1]
}
