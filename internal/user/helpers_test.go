package user_test

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
	"github.com/dmitrymomot/shorty/internal/user"
	"github.com/dmitrymomot/shorty/pkg/db"
	"github.com/dmitrymomot/shorty/pkg/password"
	"github.com/dmitrymomot/shorty/pkg/session"
)

// cheap keeps argon2 fast in tests.
var cheap = password.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func openDB(t *testing.T) *db.Client {
	t.Helper()
	ctx := context.Background()
	client, err := db.Open(ctx, db.Config{Path: db.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, db.Migrate(ctx, client, migrations.FS))
	return client
}

func newService(t *testing.T) (*user.Service, *user.Repository) {
	t.Helper()
	repo := user.NewRepository(openDB(t))
	return user.NewService(repo, user.WithPasswordParams(cheap)), repo
}

type routes func(r shorty.Router)

func (f routes) Routes(r shorty.Router) { f(r) }

// env is a backoffice app with the account pages and a seeded admin.
type env struct {
	app  *shorty.App
	svc  *user.Service
	repo *user.Repository
}

func newEnv(t *testing.T, handlers ...shorty.Handler) *env {
	t.Helper()
	client := openDB(t)

	c := shorty.NewContainer()
	shorty.Supply(c, client)
	shorty.Supply(c, slog.New(slog.NewTextHandler(io.Discard, nil)))
	user.Register(c, user.WithPasswordParams(cheap))

	ctx := context.Background()
	svc, err := shorty.Resolve[*user.Service](ctx, c)
	require.NoError(t, err)
	repo, err := shorty.Resolve[*user.Repository](ctx, c)
	require.NoError(t, err)
	_, err = svc.EnsureAdmin(ctx)
	require.NoError(t, err)

	handlers = append([]shorty.Handler{user.NewLoginHandler(), user.NewHandler()}, handlers...)
	app := shorty.New(
		shorty.WithContainer(c),
		shorty.WithSession(session.NewSQLiteStore(client)),
		shorty.WithCSRF("test-secret-test-secret-test-secret"),
		shorty.WithHandlers(handlers...),
	)
	return &env{app: app, svc: svc, repo: repo}
}

// browser keeps cookies between requests.
type browser struct {
	t       *testing.T
	app     http.Handler
	cookies map[string]*http.Cookie
}

func (e *env) browser(t *testing.T) *browser {
	return &browser{t: t, app: e.app, cookies: map[string]*http.Cookie{}}
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
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return b.do(req)
}

func (b *browser) post(target string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return b.do(req)
}

var csrfInput = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// csrf loads a page and returns the token embedded in its form.
func (b *browser) csrf(target string) string {
	b.t.Helper()
	w := b.get(target)
	m := csrfInput.FindStringSubmatch(w.Body.String())
	require.Len(b.t, m, 2, "no csrf token on %s: %s", target, w.Body.String())
	return m[1]
}

func (b *browser) login(username, pass string) *httptest.ResponseRecorder {
	b.t.Helper()
	token := b.csrf(user.LoginPath)
	return b.post(user.LoginPath, url.Values{"csrf_token": {token}, "username": {username}, "password": {pass}})
}
