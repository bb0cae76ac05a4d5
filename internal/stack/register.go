package stack

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/shorty"
	"github.com/dmitrymomot/shorty/pkg/db"
)

// Options tunes the registered components. Zero values mean defaults.
type Options struct {
	Retention time.Duration
	QueueSize int
}

// Register adds the error log providers to c. It expects *db.Client and
// *slog.Logger to be supplied. The *Sink starts its writer on first resolve
// and must be closed by whoever resolved it.
func Register(c *shorty.Container, opts Options) {
	shorty.Provide(c, shorty.ScopeProcess, func(r *shorty.Resolver) (*Repository, error) {
		client, err := shorty.Inject[*db.Client](r)
		if err != nil {
			return nil, err
		}
		return NewRepository(client), nil
	})
	shorty.Provide(c, shorty.ScopeProcess, func(r *shorty.Resolver) (*Service, error) {
		repo, err := shorty.Inject[*Repository](r)
		if err != nil {
			return nil, err
		}
		return NewService(repo, WithRetention(opts.Retention)), nil
	})
	shorty.Provide(c, shorty.ScopeProcess, func(r *shorty.Resolver) (*Sink, error) {
		repo, err := shorty.Inject[*Repository](r)
		if err != nil {
			return nil, err
		}
		l, err := shorty.Inject[*slog.Logger](r)
		if err != nil {
			return nil, err
		}
		return NewSink(repo, WithSinkLogger(l), WithQueueSize(opts.QueueSize)), nil
	})
}
