package server_test

import (
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/shorty"
	"github.com/dmitrymomot/shorty/internal/config"
	"github.com/dmitrymomot/shorty/internal/migrations"
	"github.com/dmitrymomot/shorty/internal/server"
	"github.com/dmitrymomot/shorty/internal/shortlink"
	"github.com/dmitrymomot/shorty/internal/user"
	"github.com/dmitrymomot/shorty/pkg/db"
)

func openDB(t *testing.T) *db.Client {
	t.Helper()
	ctx := context.Background()
	client, err := db.Open(ctx, db.Config{Path: db.MemoryPath})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, client, migrations.FS))
	return client
}

func newServer(t *testing.T, mutate ...func(*config.Config)) *server.Server {
	t.Helper()
	return serverOn(t, openDB(t), mutate...)
}

func serverOn(t *testing.T, client *db.Client, mutate ...func(*config.Config)) *server.Server {
	t.Helper()
	ctx := context.Background()

	cfg := config.Default()
	cfg.Security.CSRFSecret = "test-secret-test-secret-test-secret"
	for _, fn := range mutate {
		fn(&cfg)
	}

	s, err := server.New(ctx, &cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server.WithDB(client))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

type browser struct {
	t       *testing.T
	app     http.Handler
	cookies map[string]*http.Cookie
}

var csrfInput = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func newBrowser(t *testing.T, app http.Handler) *browser {
	return &browser{t: t, app: app, cookies: map[string]*http.Cookie{}}
}

func (b *browser) send(method, target string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
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

func (b *browser) login(username, pass string) {
	b.t.Helper()
	page := b.get(user.LoginPath)
	m := csrfInput.FindStringSubmatch(page.Body.String())
	require.Len(b.t, m, 2)
	w := b.send(http.MethodPost, user.LoginPath, url.Values{"csrf_token": {m[1]}, "username": {username}, "password": {pass}})
	require.Equal(b.t, http.StatusSeeOther, w.Code)
}

func TestBackoffice(t *testing.T) {
	t.Parallel()
	s := newServer(t)
	require.NoError(t, s.Jobs().Start(context.Background()))
	t.Cleanup(func() { _ = s.Jobs().Stop(context.Background()) })

	t.Run("security headers and request id", func(t *testing.T) {
		w := newBrowser(t, s.Backoffice).get(user.LoginPath)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
	})

	t.Run("home needs a login", func(t *testing.T) {
		w := newBrowser(t, s.Backoffice).get("/")
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, user.LoginPath, w.Header().Get("Location"))
	})

	t.Run("readiness", func(t *testing.T) {
		w := newBrowser(t, s.Backoffice).get("/health/ready")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("assets", func(t *testing.T) {
		w := newBrowser(t, s.Backoffice).get("/assets/css/main.css")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown route renders the error page", func(t *testing.T) {
		w := newBrowser(t, s.Backoffice).get("/no/such/page")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Back to home")
	})

	t.Run("language switch", func(t *testing.T) {
		b := newBrowser(t, s.Backoffice)
		w := b.get(user.LoginPath + "?lang=de")
		assert.Contains(t, w.Body.String(), "Benutzeranmeldung")
		assert.Contains(t, w.Body.String(), `lang="de"`)

		w = b.get(user.LoginPath)
		assert.Contains(t, w.Body.String(), "Benutzeranmeldung", "choice persists in the lang cookie")
	})

	t.Run("login then manage a link with the csrf header", func(t *testing.T) {
		b := newBrowser(t, s.Backoffice)
		b.login(user.DefaultAdminName, user.DefaultAdminPassword)

		w := b.get("/")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Check out the navigation above")
		assert.Contains(t, w.Body.String(), "Login success")

		w = b.get(server.CSRFPath)
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.NotEmpty(t, body.Token)

		w = b.send(http.MethodPost, "/shorty/add",
			url.Values{"url_path": {"docs"}, "url_redirect": {"https://example.com/docs"}},
			"X-Csrf-Token", body.Token, "HX-Request", "true")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("HX-Location"), "/shorty/")

		w = b.send(http.MethodPost, "/shorty/add",
			url.Values{"url_path": {"other"}, "url_redirect": {"https://example.com"}},
			"X-Csrf-Token", "forged")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		pub := newBrowser(t, s.Public).get("/docs")
		assert.Equal(t, http.StatusSeeOther, pub.Code)
		assert.Equal(t, "https://example.com/docs", pub.Header().Get("Location"))
	})
}

func TestPublic(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	w := newBrowser(t, s.Public).get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Hello</h1>")

	w = newBrowser(t, s.Public).get("/?lang=de")
	assert.Contains(t, w.Body.String(), "<h1>Hallo</h1>")

	w = newBrowser(t, s.Public).get("/missing-link")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicIsStateless(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := openDB(t)
	s := serverOn(t, client)

	links, err := shorty.Resolve[*shortlink.Service](ctx, s.Container())
	require.NoError(t, err)
	root := user.Identity{ID: 1, Username: user.DefaultAdminName, Role: user.RoleRoot}
	_, err = links.Create(ctx, root, shortlink.LinkForm{Path: "docs", Redirect: "https://example.com/docs"})
	require.NoError(t, err)

	sessions := func() int {
		var n int
		require.NoError(t, client.WithConn(ctx, func(ctx context.Context, conn bun.IDB) error {
			n, err = conn.NewSelect().Table("sessions").Count(ctx)
			return err
		}))
		return n
	}
	before := sessions()

	b := newBrowser(t, s.Public)
	for range 20 {
		w := b.get("/docs")
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Empty(t, w.Result().Cookies())
	}
	assert.Equal(t, http.StatusOK, b.get("/?lang=de").Code)
	assert.Equal(t, http.StatusNotFound, b.get("/missing-link").Code)
	assert.Equal(t, http.StatusOK, b.get("/health/live").Code)
	assert.NotContains(t, b.cookies, "__sid")
	assert.Contains(t, b.cookies, "lang")

	w := newBrowser(t, s.Backoffice).get("/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies())

	assert.Equal(t, before, sessions())
}

func TestRedisSessions(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	s := newServer(t, func(c *config.Config) {
		c.Session.Driver = config.DriverRedis
		c.Redis.URL = "redis://" + mr.Addr()
	})

	b := newBrowser(t, s.Backoffice)
	b.login(user.DefaultAdminName, user.DefaultAdminPassword)
	assert.NotEmpty(t, mr.Keys())
	assert.Equal(t, http.StatusOK, b.get("/").Code)

	w := newBrowser(t, s.Backoffice).get("/health/ready?format=json")
	var probe struct {
		Checks map[string]struct {
			Status string `json:"status"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &probe))
	assert.Equal(t, "healthy", probe.Checks["redis"].Status)
	assert.Equal(t, "healthy", probe.Checks["sqlite"].Status)
}

func TestRedirectCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mr := miniredis.RunT(t)
	s := newServer(t, func(c *config.Config) {
		c.Redis.URL = "redis://" + mr.Addr()
	})

	links, err := shorty.Resolve[*shortlink.Service](ctx, s.Container())
	require.NoError(t, err)
	root := user.Identity{ID: 1, Username: user.DefaultAdminName, Role: user.RoleRoot}
	id, err := links.Create(ctx, root, shortlink.LinkForm{Path: "docs", Redirect: "https://example.com/docs"})
	require.NoError(t, err)

	w := newBrowser(t, s.Public).get("/docs")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "https://example.com/docs", w.Header().Get("Location"))
	assert.True(t, mr.Exists("shorty:redirect:docs"))

	require.NoError(t, links.Delete(ctx, root, id))
	assert.False(t, mr.Exists("shorty:redirect:docs"))
	assert.Equal(t, http.StatusNotFound, newBrowser(t, s.Public).get("/docs").Code)
}

// Every English key must have a German counterpart and the reverse.
func TestTranslationsComplete(t *testing.T) {
	t.Parallel()

	bundle, err := server.Translations()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"en", "de"}, bundle.Languages())

	keys := func(lang string) []string {
		data, err := fs.ReadFile(server.Locales(), lang+"/app.yaml")
		require.NoError(t, err)
		var tree map[string]any
		require.NoError(t, yaml.Unmarshal(data, &tree))
		var out []string
		var walk func(prefix string, m map[string]any)
		walk = func(prefix string, m map[string]any) {
			for k, v := range m {
				if sub, ok := v.(map[string]any); ok {
					walk(prefix+k+".", sub)
					continue
				}
				out = append(out, prefix+k)
			}
		}
		walk("", tree)
		return out
	}
	assert.ElementsMatch(t, keys("en"), keys("de"))

	tr := bundle.Translator("de", server.Namespace)
	assert.Equal(t, "Fehler: boom", tr.T("stack.view.title", map[string]any{"name": "boom"}))
}
