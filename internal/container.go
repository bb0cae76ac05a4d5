package internal

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/shorty/pkg/reqcache"
)

// Scope controls how long a provided value lives.
type Scope int

const (
	// ScopeTransient builds a new value on every resolution.
	ScopeTransient Scope = iota
	// ScopeRequest builds once per request and memoizes in the request cache.
	ScopeRequest
	// ScopeProcess builds once per process. Failed builds are retried.
	ScopeProcess
)

// ErrorKind classifies resolution failures.
type ErrorKind int

const (
	// ConfigError means the type was never registered.
	ConfigError ErrorKind = iota
	// RequestError means a request-scoped value was resolved outside a request.
	RequestError
	// OtherError wraps a provider failure.
	OtherError
)

func (k ErrorKind) String() string {
	switch k {
	case ConfigError:
		return "config error"
	case RequestError:
		return "request error"
	default:
		return "other error"
	}
}

var (
	ErrNotRegistered = errors.New("container: type not registered")
	ErrNoRequest     = errors.New("container: no request in scope")
)

// ContextError reports why a dependency could not be resolved.
type ContextError struct {
	Err  error
	Type string
	Kind ErrorKind
}

func (e *ContextError) Error() string {
	return fmt.Sprintf("resolve %s: %s: %v", e.Type, e.Kind, e.Err)
}

func (e *ContextError) Unwrap() error {
	return e.Err
}

type provider struct {
	build func(*Resolver) (any, error)
	value any
	key   string
	mu    sync.Mutex
	scope Scope
	ready bool
}

// Container is a typed provider registry.
// Register everything before serving; registration is not synchronized with resolution.
type Container struct {
	providers map[reflect.Type]*provider
	group     singleflight.Group
	mu        sync.RWMutex
	seq       int
}

// NewContainer returns an empty container.
func NewContainer() *Container {
	return &Container{providers: make(map[reflect.Type]*provider)}
}

// Provide registers fn as the constructor of T. A later registration replaces an earlier one.
func Provide[T any](c *Container, scope Scope, fn func(*Resolver) (T, error)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.providers[reflect.TypeFor[T]()] = &provider{
		scope: scope,
		key:   c.nextKey(),
		build: func(r *Resolver) (any, error) {
			return fn(r)
		},
	}
}

// Supply registers a ready process value.
func Supply[T any](c *Container, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.providers[reflect.TypeFor[T]()] = &provider{
		scope: ScopeProcess,
		key:   c.nextKey(),
		value: v,
		ready: true,
	}
}

// nextKey names a provider's singleflight call. Keys are never reused, so a
// replaced provider cannot share a key with a live one. Callers hold c.mu.
func (c *Container) nextKey() string {
	c.seq++
	return strconv.Itoa(c.seq)
}

func (c *Container) lookup(t reflect.Type) *provider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.providers[t]
}

// Resolver is handed to providers. It carries the resolution context and,
// inside a request, the request itself.
type Resolver struct {
	ctx       context.Context
	req       Context
	container *Container
}

// Context returns the resolution context.
func (r *Resolver) Context() context.Context {
	return r.ctx
}

// Request returns the current request context, or a RequestError outside a request.
func (r *Resolver) Request() (Context, error) {
	if r.req == nil {
		return nil, &ContextError{Kind: RequestError, Err: ErrNoRequest}
	}
	return r.req, nil
}

// Container returns the container being resolved from.
func (r *Resolver) Container() *Container {
	return r.container
}

// Inject resolves another dependency from inside a provider.
func Inject[T any](r *Resolver) (T, error) {
	return resolve[T](r)
}

// Resolve resolves T without a request, e.g. at boot or in CLI commands.
func Resolve[T any](ctx context.Context, c *Container) (T, error) {
	return resolve[T](&Resolver{ctx: ctx, container: c})
}

// Dep resolves T for the current request. Any failure becomes a 500 HTTPError
// carrying the cause.
func Dep[T any](c Context) (T, error) {
	v, err := resolve[T](&Resolver{ctx: c.Context(), req: c, container: c.Container()})
	if err != nil {
		var zero T
		return zero, ErrInternal(http500Message, WithError(err))
	}
	return v, nil
}

const http500Message = "Internal Server Error"

func resolve[T any](r *Resolver) (T, error) {
	var zero T
	t := reflect.TypeFor[T]()

	if r.container == nil {
		return zero, &ContextError{Kind: ConfigError, Type: t.String(), Err: ErrNotRegistered}
	}
	p := r.container.lookup(t)
	if p == nil {
		return zero, &ContextError{Kind: ConfigError, Type: t.String(), Err: ErrNotRegistered}
	}

	var (
		v   any
		err error
	)
	switch p.scope {
	case ScopeTransient:
		v, err = p.build(r)
	case ScopeRequest:
		if r.req == nil {
			return zero, &ContextError{Kind: RequestError, Type: t.String(), Err: ErrNoRequest}
		}
		cache := reqcache.MustFromContext(r.req.Context())
		return wrapResolveErr(reqcache.GetOrInit(cache, func() (T, error) {
			built, err := p.build(r)
			if err != nil {
				return zero, err
			}
			return built.(T), nil
		}))
	case ScopeProcess:
		v, err = r.container.process(r, p)
	}
	if err != nil {
		return wrapResolveErr(zero, err)
	}
	return v.(T), nil
}

// process builds a process value once. Concurrent first callers share a single build.
func (c *Container) process(r *Resolver, p *provider) (any, error) {
	p.mu.Lock()
	if p.ready {
		v := p.value
		p.mu.Unlock()
		return v, nil
	}
	p.mu.Unlock()

	v, err, _ := c.group.Do(p.key, func() (any, error) {
		p.mu.Lock()
		if p.ready {
			v := p.value
			p.mu.Unlock()
			return v, nil
		}
		p.mu.Unlock()

		// process values must not capture the request that happened to build them
		v, err := p.build(&Resolver{ctx: context.WithoutCancel(r.ctx), container: c})
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.value, p.ready = v, true
		p.mu.Unlock()
		return v, nil
	})
	return v, err
}

func wrapResolveErr[T any](v T, err error) (T, error) {
	if err == nil {
		return v, nil
	}
	var ce *ContextError
	if errors.As(err, &ce) {
		return v, err
	}
	return v, &ContextError{Kind: OtherError, Type: reflect.TypeFor[T]().String(), Err: err}
}
