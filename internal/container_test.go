package internal_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shorty/internal"
)

type settings struct{ name string }

type requestUser struct{ name string }

type greeter struct{ text string }

type unregistered struct{}

func TestResolveScopes(t *testing.T) {
	t.Parallel()

	t.Run("process value is built once", func(t *testing.T) {
		t.Parallel()
		c := internal.NewContainer()
		var calls atomic.Int32
		internal.Provide(c, internal.ScopeProcess, func(*internal.Resolver) (*settings, error) {
			calls.Add(1)
			return &settings{name: "cfg"}, nil
		})

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s, err := internal.Resolve[*settings](context.Background(), c)
				assert.NoError(t, err)
				assert.Equal(t, "cfg", s.name)
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("process errors are retried", func(t *testing.T) {
		t.Parallel()
		c := internal.NewContainer()
		fail := errors.New("not yet")
		calls := 0
		internal.Provide(c, internal.ScopeProcess, func(*internal.Resolver) (*settings, error) {
			calls++
			if calls == 1 {
				return nil, fail
			}
			return &settings{name: "ok"}, nil
		})

		_, err := internal.Resolve[*settings](context.Background(), c)
		require.ErrorIs(t, err, fail)
		var ce *internal.ContextError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, internal.OtherError, ce.Kind)

		s, err := internal.Resolve[*settings](context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, "ok", s.name)
	})

	t.Run("transient builds every time", func(t *testing.T) {
		t.Parallel()
		c := internal.NewContainer()
		calls := 0
		internal.Provide(c, internal.ScopeTransient, func(*internal.Resolver) (greeter, error) {
			calls++
			return greeter{text: "hi"}, nil
		})
		for range 3 {
			_, err := internal.Resolve[greeter](context.Background(), c)
			require.NoError(t, err)
		}
		assert.Equal(t, 3, calls)
	})

	t.Run("supply and inject", func(t *testing.T) {
		t.Parallel()
		c := internal.NewContainer()
		internal.Supply(c, &settings{name: "supplied"})
		internal.Provide(c, internal.ScopeTransient, func(r *internal.Resolver) (greeter, error) {
			s, err := internal.Inject[*settings](r)
			if err != nil {
				return greeter{}, err
			}
			return greeter{text: "hello " + s.name}, nil
		})

		g, err := internal.Resolve[greeter](context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, "hello supplied", g.text)
	})

	t.Run("unregistered type is a config error", func(t *testing.T) {
		t.Parallel()
		_, err := internal.Resolve[unregistered](context.Background(), internal.NewContainer())
		var ce *internal.ContextError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, internal.ConfigError, ce.Kind)
		assert.ErrorIs(t, err, internal.ErrNotRegistered)
	})

	t.Run("request scope outside a request", func(t *testing.T) {
		t.Parallel()
		c := internal.NewContainer()
		internal.Provide(c, internal.ScopeRequest, func(*internal.Resolver) (requestUser, error) {
			return requestUser{}, nil
		})
		_, err := internal.Resolve[requestUser](context.Background(), c)
		var ce *internal.ContextError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, internal.RequestError, ce.Kind)
	})

	t.Run("nested config error is not rewrapped", func(t *testing.T) {
		t.Parallel()
		c := internal.NewContainer()
		internal.Provide(c, internal.ScopeTransient, func(r *internal.Resolver) (greeter, error) {
			_, err := internal.Inject[unregistered](r)
			return greeter{}, err
		})
		_, err := internal.Resolve[greeter](context.Background(), c)
		var ce *internal.ContextError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, internal.ConfigError, ce.Kind)
	})
}

func TestProvideReplacedDependency(t *testing.T) {
	t.Parallel()
	c := internal.NewContainer()
	internal.Supply(c, &requestUser{name: "a"})
	internal.Provide(c, internal.ScopeProcess, func(*internal.Resolver) (*settings, error) {
		return &settings{name: "first"}, nil
	})
	internal.Provide(c, internal.ScopeProcess, func(*internal.Resolver) (*settings, error) {
		return &settings{name: "second"}, nil
	})
	internal.Provide(c, internal.ScopeProcess, func(r *internal.Resolver) (*greeter, error) {
		s, err := internal.Inject[*settings](r)
		if err != nil {
			return nil, err
		}
		return &greeter{text: "hello " + s.name}, nil
	})

	done := make(chan *greeter, 1)
	go func() {
		g, err := internal.Resolve[*greeter](context.Background(), c)
		assert.NoError(t, err)
		done <- g
	}()

	select {
	case g := <-done:
		require.NotNil(t, g)
		assert.Equal(t, "hello second", g.text)
	case <-time.After(2 * time.Second):
		t.Fatal("resolving a dependent of a replaced provider did not return")
	}
}

func TestDepInRequest(t *testing.T) {
	t.Parallel()

	c := internal.NewContainer()
	var builds atomic.Int32
	internal.Provide(c, internal.ScopeRequest, func(r *internal.Resolver) (requestUser, error) {
		builds.Add(1)
		req, err := r.Request()
		if err != nil {
			return requestUser{}, err
		}
		return requestUser{name: req.Query("name")}, nil
	})

	memo := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(ctx internal.Context) error {
			if _, err := internal.Dep[requestUser](ctx); err != nil {
				return err
			}
			return next(ctx)
		}
	}

	app := internal.New(
		internal.WithContainer(c),
		internal.WithMiddleware(memo),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", func(ctx internal.Context) error {
				u, err := internal.Dep[requestUser](ctx)
				if err != nil {
					return err
				}
				return ctx.String(http.StatusOK, u.name)
			}, memo, memo)
			r.GET("/broken", func(ctx internal.Context) error {
				_, err := internal.Dep[unregistered](ctx)
				return err
			})
		})),
	)

	w := serve(app, httptest.NewRequest(http.MethodGet, "/?name=admin", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
	assert.Equal(t, int32(1), builds.Load(), "one build across global, route middleware and handler")

	serve(app, httptest.NewRequest(http.MethodGet, "/?name=other", nil))
	assert.Equal(t, int32(2), builds.Load(), "cache is not shared between requests")

	w = serve(app, httptest.NewRequest(http.MethodGet, "/broken", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
