// Package reqcache memoizes values for the lifetime of a single HTTP request.
//
// A Cache holds at most one value per Go type. The first GetOrInit call for a
// type runs the constructor; later calls for the same type return the stored
// value. Constructor errors are never stored, so a later call retries.
//
// Callers racing on the same type serialize on a per-type lock, which guarantees
// a single construction attempt at a time. Constructors may resolve other types
// from the same cache without deadlocking.
package reqcache

import (
	"context"
	"net/http"
	"reflect"
	"sync"
)

type ctxKey struct{}

// Cache is a per-request, type-keyed memoization store.
type Cache struct {
	slots map[reflect.Type]*slot
	mu    sync.Mutex
}

type slot struct {
	value any
	mu    sync.Mutex
	ready bool
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{slots: make(map[reflect.Type]*slot)}
}

// slotFor returns the slot for t, creating it on first use.
func (c *Cache) slotFor(t reflect.Type) *slot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[t]
	if !ok {
		s = &slot{}
		c.slots[t] = s
	}
	return s
}

// Len returns the number of constructed values.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, s := range c.slots {
		s.mu.Lock()
		if s.ready {
			n++
		}
		s.mu.Unlock()
	}
	return n
}

// GetOrInit returns the cached value of type T or builds it with fn.
func GetOrInit[T any](c *Cache, fn func() (T, error)) (T, error) {
	s := c.slotFor(reflect.TypeFor[T]())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return s.value.(T), nil
	}

	v, err := fn()
	if err != nil {
		var zero T
		return zero, err
	}

	s.value = v
	s.ready = true
	return v, nil
}

// Lookup returns the cached value of type T if it was already constructed.
func Lookup[T any](c *Cache) (T, bool) {
	s := c.slotFor(reflect.TypeFor[T]())

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		var zero T
		return zero, false
	}
	return s.value.(T), true
}

// WithCache attaches a fresh cache to ctx.
func WithCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, New())
}

// FromContext returns the cache attached to ctx.
func FromContext(ctx context.Context) (*Cache, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Cache)
	return c, ok && c != nil
}

// MustFromContext returns the cache attached to ctx.
// It panics when the request was not routed through Middleware.
func MustFromContext(ctx context.Context) *Cache {
	c, ok := FromContext(ctx)
	if !ok {
		panic("reqcache: request cache not found")
	}
	return c
}

// Middleware attaches a new cache to every request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithCache(r.Context())))
	})
}
