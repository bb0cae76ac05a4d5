package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

const (
	DefaultTTL        = 5 * time.Minute
	DefaultMaxEntries = 10_000
)

// MemoryOption configures a Memory cache.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
}

// WithTTL sets how long an entry stays readable after Set.
func WithTTL(d time.Duration) MemoryOption {
	return func(c *memoryConfig) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithMaxEntries bounds the cache. The least recently used entry is evicted
// when the bound is reached.
func WithMaxEntries(n int) MemoryOption {
	return func(c *memoryConfig) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *memoryConfig) {
		c.now = now
	}
}

type memoryEntry[V any] struct {
	expires time.Time
	value   V
	key     string
}

// Memory is an in-process LRU cache with a fixed TTL. Expired entries are
// dropped lazily on access or when they fall off the LRU tail.
type Memory[V any] struct {
	cfg    memoryConfig
	items  map[string]*list.Element
	order  *list.List
	mu     sync.Mutex
	closed bool
}

// NewMemory returns an empty Memory cache.
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	cfg := memoryConfig{now: time.Now, ttl: DefaultTTL, maxEntries: DefaultMaxEntries}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Memory[V]{
		cfg:   cfg,
		items: make(map[string]*list.Element),
		order: list.New(),
	}
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	var zero V
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return zero, ErrClosed
	}
	el, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	e := el.Value.(*memoryEntry[V])
	if !m.cfg.now().Before(e.expires) {
		m.remove(el)
		return zero, ErrNotFound
	}
	m.order.MoveToFront(el)
	return e.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	expires := m.cfg.now().Add(m.cfg.ttl)
	if el, ok := m.items[key]; ok {
		e := el.Value.(*memoryEntry[V])
		e.value, e.expires = value, expires
		m.order.MoveToFront(el)
		return nil
	}
	for m.order.Len() >= m.cfg.maxEntries {
		m.remove(m.order.Back())
	}
	m.items[key] = m.order.PushFront(&memoryEntry[V]{key: key, value: value, expires: expires})
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	for _, k := range keys {
		if el, ok := m.items[k]; ok {
			m.remove(el)
		}
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

// Close drops every entry. Later calls return ErrClosed.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.items = nil
	m.order.Init()
	return nil
}

func (m *Memory[V]) remove(el *list.Element) {
	m.order.Remove(el)
	delete(m.items, el.Value.(*memoryEntry[V]).key)
}
