package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shorty/pkg/cache"
)

type clock struct {
	now time.Time
	mu  sync.Mutex
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("set get delete", func(t *testing.T) {
		t.Parallel()
		m := cache.NewMemory[string]()

		_, err := m.Get(ctx, "docs")
		require.ErrorIs(t, err, cache.ErrNotFound)

		require.NoError(t, m.Set(ctx, "docs", "https://example.com/docs"))
		v, err := m.Get(ctx, "docs")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/docs", v)

		require.NoError(t, m.Delete(ctx, "docs", "missing"))
		_, err = m.Get(ctx, "docs")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("entries expire", func(t *testing.T) {
		t.Parallel()
		clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		m := cache.NewMemory[string](cache.WithTTL(time.Minute), cache.WithClock(clk.Now))

		require.NoError(t, m.Set(ctx, "a", "1"))
		clk.Advance(59 * time.Second)
		_, err := m.Get(ctx, "a")
		require.NoError(t, err)

		clk.Advance(time.Second)
		_, err = m.Get(ctx, "a")
		require.ErrorIs(t, err, cache.ErrNotFound)
		assert.Equal(t, 0, m.Len())
	})

	t.Run("least recently used is evicted", func(t *testing.T) {
		t.Parallel()
		m := cache.NewMemory[int](cache.WithMaxEntries(2))

		require.NoError(t, m.Set(ctx, "a", 1))
		require.NoError(t, m.Set(ctx, "b", 2))
		_, err := m.Get(ctx, "a")
		require.NoError(t, err)
		require.NoError(t, m.Set(ctx, "c", 3))

		_, err = m.Get(ctx, "b")
		require.ErrorIs(t, err, cache.ErrNotFound)
		_, err = m.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 2, m.Len())
	})

	t.Run("closed", func(t *testing.T) {
		t.Parallel()
		m := cache.NewMemory[string]()
		require.NoError(t, m.Close())

		_, err := m.Get(ctx, "a")
		require.ErrorIs(t, err, cache.ErrClosed)
		require.ErrorIs(t, m.Set(ctx, "a", "b"), cache.ErrClosed)
	})
}

func TestRedis(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := cache.NewRedis[string](client, "test:redirect:", time.Minute)

	_, err := c.Get(ctx, "docs")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, c.Set(ctx, "docs", "https://example.com"))
	assert.True(t, mr.Exists("test:redirect:docs"))
	assert.Equal(t, time.Minute, mr.TTL("test:redirect:docs"))

	v, err := c.Get(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", v)

	mr.FastForward(time.Minute)
	_, err = c.Get(ctx, "docs")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, c.Set(ctx, "docs", "x"))
	require.NoError(t, c.Delete(ctx, "docs"))
	assert.False(t, mr.Exists("test:redirect:docs"))

	require.NoError(t, mr.Set("test:redirect:bad", "{not json"))
	_, err = c.Get(ctx, "bad")
	require.ErrorIs(t, err, cache.ErrDecode)
}

func TestLoader(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("loads once then serves from cache", func(t *testing.T) {
		t.Parallel()
		l := cache.NewLoader[string](cache.NewMemory[string]())
		var calls atomic.Int32
		load := func(context.Context) (string, error) {
			calls.Add(1)
			return "target", nil
		}

		for range 3 {
			v, err := l.Load(ctx, "k", load)
			require.NoError(t, err)
			assert.Equal(t, "target", v)
		}
		assert.Equal(t, int32(1), calls.Load())

		require.NoError(t, l.Forget(ctx, "k"))
		_, err := l.Load(ctx, "k", load)
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("errors are not cached", func(t *testing.T) {
		t.Parallel()
		l := cache.NewLoader[string](cache.NewMemory[string]())
		boom := errors.New("boom")
		calls := 0
		load := func(context.Context) (string, error) {
			calls++
			if calls == 1 {
				return "", boom
			}
			return "ok", nil
		}

		_, err := l.Load(ctx, "k", load)
		require.ErrorIs(t, err, boom)
		v, err := l.Load(ctx, "k", load)
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
	})

	t.Run("broken cache degrades to the loader", func(t *testing.T) {
		t.Parallel()
		m := cache.NewMemory[string]()
		require.NoError(t, m.Close())
		l := cache.NewLoader[string](m)

		v, err := l.Load(ctx, "k", func(context.Context) (string, error) { return "direct", nil })
		require.NoError(t, err)
		assert.Equal(t, "direct", v)
	})
}
