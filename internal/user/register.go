package user

import (
	"log/slog"

	"github.com/dmitrymomot/shorty"
	"github.com/dmitrymomot/shorty/pkg/db"
)

// Register adds the account providers to c. It expects *db.Client and
// *slog.Logger to be supplied.
func Register(c *shorty.Container, opts ...ServiceOption) {
	shorty.Provide(c, shorty.ScopeProcess, func(r *shorty.Resolver) (*Repository, error) {
		client, err := shorty.Inject[*db.Client](r)
		if err != nil {
			return nil, err
		}
		return NewRepository(client), nil
	})
	shorty.Provide(c, shorty.ScopeProcess, func(r *shorty.Resolver) (IdentityFinder, error) {
		repo, err := shorty.Inject[*Repository](r)
		if err != nil {
			return nil, err
		}
		return repo, nil
	})
	shorty.Provide(c, shorty.ScopeProcess, func(r *shorty.Resolver) (*Service, error) {
		repo, err := shorty.Inject[*Repository](r)
		if err != nil {
			return nil, err
		}
		l, err := shorty.Inject[*slog.Logger](r)
		if err != nil {
			return nil, err
		}
		return NewService(repo, append([]ServiceOption{WithServiceLogger(l)}, opts...)...), nil
	})
	shorty.Provide(c, shorty.ScopeRequest, ResolveIdentity)
}
