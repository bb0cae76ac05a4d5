// Package cache keeps short-lived lookups in front of a slower source.
//
// Two backends implement Cache: Memory (a bounded LRU with a fixed TTL) and
// Redis (shared between processes). Loader puts either one in front of a
// load function and collapses concurrent misses for the same key.
//
//	c := cache.NewMemory[string](cache.WithTTL(time.Minute))
//	l := cache.NewLoader[string](c)
//	target, err := l.Load(ctx, "docs", func(ctx context.Context) (string, error) {
//	    return repo.Redirect(ctx, "docs")
//	})
package cache

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound = errors.New("cache: key not found")
	ErrClosed   = errors.New("cache: closed")
	ErrEncode   = errors.New("cache: failed to encode value")
	ErrDecode   = errors.New("cache: failed to decode value")
)

// Cache stores values of type V under string keys.
type Cache[V any] interface {
	// Get returns ErrNotFound for a missing or expired key.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V) error
	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// Loader reads through a Cache.
type Loader[V any] struct {
	cache Cache[V]
	group singleflight.Group
}

// NewLoader returns a Loader backed by c.
func NewLoader[V any](c Cache[V]) *Loader[V] {
	return &Loader[V]{cache: c}
}

// Load returns the cached value for key or calls fn and stores its result.
// Errors from fn are returned as is and never cached. A failing cache is
// treated as a miss, so the loader degrades to calling fn directly.
func (l *Loader[V]) Load(ctx context.Context, key string, fn func(context.Context) (V, error)) (V, error) {
	if v, err := l.cache.Get(ctx, key); err == nil {
		return v, nil
	}

	res, err, _ := l.group.Do(key, func() (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return v, err
		}
		_ = l.cache.Set(context.WithoutCancel(ctx), key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	v, ok := res.(V)
	if !ok {
		var zero V
		return zero, fmt.Errorf("%w: unexpected %T", ErrDecode, res)
	}
	return v, nil
}

// Forget drops keys from the cache. Later loads call fn again.
func (l *Loader[V]) Forget(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		l.group.Forget(k)
	}
	return l.cache.Delete(ctx, keys...)
}
