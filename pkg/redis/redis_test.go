package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shorty/pkg/redis"
)

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Open(ctx, "")
		require.ErrorIs(t, err, redis.ErrEmptyConnectionURL)

		for _, url := range []string{"http://localhost:6379", "localhost:6379"} {
			_, err := redis.Open(ctx, url)
			require.ErrorIs(t, err, redis.ErrFailedToParseURL, url)
		}
	})

	t.Run("connects and checks health", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)

		client, err := redis.Open(ctx, "redis://"+mr.Addr(), redis.WithPoolSize(2))
		require.NoError(t, err)

		require.NoError(t, redis.Healthcheck(client)(ctx))
		require.NoError(t, redis.Shutdown(client)(ctx))
		require.ErrorIs(t, redis.Healthcheck(client)(ctx), redis.ErrHealthcheckFailed)
	})

	t.Run("gives up after retries", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := redis.Open(ctx, "redis://"+addr,
			redis.WithRetry(2, 10*time.Millisecond),
			redis.WithTimeouts(100*time.Millisecond, 100*time.Millisecond),
		)
		require.ErrorIs(t, err, redis.ErrConnectionFailed)
	})

	t.Run("context cancelled while waiting", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err := redis.Open(cctx, "redis://"+addr, redis.WithRetry(5, time.Second))
		require.ErrorIs(t, err, redis.ErrConnectionFailed)
		assert.True(t, errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled))
	})
}

func TestHealthcheckNilClient(t *testing.T) {
	t.Parallel()
	require.ErrorIs(t, redis.Healthcheck(nil)(context.Background()), redis.ErrHealthcheckFailed)
}
