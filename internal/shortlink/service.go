package shortlink

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/shorty/internal/user"
	"github.com/dmitrymomot/shorty/pkg/cache"
	"github.com/dmitrymomot/shorty/pkg/logger"
	"github.com/dmitrymomot/shorty/pkg/validator"
)

// Service applies ownership and uniqueness rules on top of Repository.
// Every check that precedes a write runs in the same transaction as the write.
type Service struct {
	repo      *Repository
	redirects *cache.Loader[string]
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithRedirectCache serves Resolve from c. Writes evict the paths they touch.
func WithRedirectCache(c cache.Cache[string]) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.redirects = cache.NewLoader(c)
		}
	}
}

// WithServiceLogger sets the logger used for cache failures.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService returns a Service backed by repo.
func NewService(repo *Repository, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every link ordered by id.
func (s *Service) List(ctx context.Context) ([]Link, error) {
	return s.repo.List(ctx)
}

// Get returns the link if who may manage it.
func (s *Service) Get(ctx context.Context, who user.Identity, id int64) (Link, error) {
	return owned(ctx, s.repo, who, id)
}

// Create stores a link owned by who.
func (s *Service) Create(ctx context.Context, who user.Identity, form LinkForm) (int64, error) {
	if who.IsVisitor() {
		return 0, ErrForbidden
	}
	var id int64
	err := s.repo.InTx(ctx, func(ctx context.Context, repo *Repository) error {
		if err := checkPath(ctx, repo, form.Path, 0); err != nil {
			return err
		}
		newID, err := repo.Create(ctx, form.Path, form.Redirect, who.ID)
		id = newID
		return err
	})
	if err != nil {
		return 0, err
	}
	s.evict(ctx, form.Path)
	return id, nil
}

// Update changes the path and target of a link who may manage.
func (s *Service) Update(ctx context.Context, who user.Identity, id int64, form LinkForm) error {
	var old string
	err := s.repo.InTx(ctx, func(ctx context.Context, repo *Repository) error {
		link, err := owned(ctx, repo, who, id)
		if err != nil {
			return err
		}
		old = link.Path
		if err := checkPath(ctx, repo, form.Path, id); err != nil {
			return err
		}
		return repo.Update(ctx, id, form.Path, form.Redirect)
	})
	if err != nil {
		return err
	}
	s.evict(ctx, old, form.Path)
	return nil
}

// Delete removes a link who may manage.
func (s *Service) Delete(ctx context.Context, who user.Identity, id int64) error {
	var path string
	err := s.repo.InTx(ctx, func(ctx context.Context, repo *Repository) error {
		link, err := owned(ctx, repo, who, id)
		if err != nil {
			return err
		}
		path = link.Path
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.evict(ctx, path)
	return nil
}

// Resolve returns the redirect target of a public short path.
func (s *Service) Resolve(ctx context.Context, path string) (string, error) {
	if path == "" || len(path) > MaxPathLength {
		return "", ErrNotFound
	}
	if s.redirects == nil {
		return s.repo.Redirect(ctx, path)
	}
	return s.redirects.Load(ctx, path, func(ctx context.Context) (string, error) {
		return s.repo.Redirect(ctx, path)
	})
}

// evict is best effort: a stale entry lives at most one cache TTL.
func (s *Service) evict(ctx context.Context, paths ...string) {
	if s.redirects == nil {
		return
	}
	if err := s.redirects.Forget(context.WithoutCancel(ctx), paths...); err != nil {
		s.logger.WarnContext(ctx, "redirect cache eviction failed",
			slog.Any("paths", paths), slog.Any("error", err))
	}
}

func owned(ctx context.Context, repo *Repository, who user.Identity, id int64) (Link, error) {
	link, err := repo.Get(ctx, id)
	if err != nil {
		return Link{}, err
	}
	if !who.CanManage(link.CreatedBy) {
		return Link{}, ErrForbidden
	}
	return link, nil
}

func checkPath(ctx context.Context, repo *Repository, path string, exceptID int64) error {
	taken, err := repo.PathTaken(ctx, path, exceptID)
	if err != nil {
		return err
	}
	if taken {
		var ve validator.ValidationErrors
		ve.Add("url_path", "validation.path_taken", "Path is already taken", nil)
		return ve
	}
	return nil
}
