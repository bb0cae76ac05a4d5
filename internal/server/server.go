// Package server assembles the public site and the backoffice from the
// process configuration and owns the resources they share.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/shorty"
	"github.com/dmitrymomot/shorty/internal/config"
	"github.com/dmitrymomot/shorty/internal/migrations"
	"github.com/dmitrymomot/shorty/internal/public"
	"github.com/dmitrymomot/shorty/internal/shortlink"
	"github.com/dmitrymomot/shorty/internal/stack"
	"github.com/dmitrymomot/shorty/internal/user"
	"github.com/dmitrymomot/shorty/internal/views"
	"github.com/dmitrymomot/shorty/middlewares"
	"github.com/dmitrymomot/shorty/pkg/cache"
	"github.com/dmitrymomot/shorty/pkg/cookie"
	"github.com/dmitrymomot/shorty/pkg/db"
	"github.com/dmitrymomot/shorty/pkg/i18n"
	"github.com/dmitrymomot/shorty/pkg/job"
	"github.com/dmitrymomot/shorty/pkg/logger"
	"github.com/dmitrymomot/shorty/pkg/redis"
	"github.com/dmitrymomot/shorty/pkg/session"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 15 * time.Second
	sentryFlush     = 2 * time.Second
)

// Server holds both apps and everything they share.
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	db         *db.Client
	redis      goredis.UniversalClient
	container  *shorty.Container
	bundle     *i18n.I18n
	store      session.Store
	sink       *stack.Sink
	jobs       *job.Manager
	Public     *shorty.App
	Backoffice *shorty.App
}

// Option customises New.
type Option func(*Server)

// WithDB uses an already open and migrated client instead of opening
// cfg.Database.
func WithDB(client *db.Client) Option {
	return func(s *Server) {
		s.db = client
	}
}

// WithRedis uses client for redis sessions and the redirect cache instead
// of dialing cfg.Redis.URL.
func WithRedis(client goredis.UniversalClient) Option {
	return func(s *Server) {
		s.redis = client
	}
}

// New opens the database, migrates it, registers every service and builds
// both apps. Close releases what New opened.
func New(ctx context.Context, cfg *config.Config, l *slog.Logger, opts ...Option) (*Server, error) {
	if l == nil {
		l = logger.NewNope()
	}
	s := &Server{cfg: cfg, logger: l}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.open(ctx); err != nil {
		return nil, errors.Join(err, s.Close(ctx))
	}
	if err := s.build(ctx); err != nil {
		return nil, errors.Join(err, s.Close(ctx))
	}
	return s, nil
}

func (s *Server) open(ctx context.Context) error {
	if s.db == nil {
		client, err := db.Open(ctx, s.cfg.Database, db.WithLogger(s.logger))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		s.db = client
		if err := db.Migrate(ctx, client, migrations.FS); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	if s.redis == nil && s.cfg.Redis.URL != "" {
		client, err := redis.Open(ctx, s.cfg.Redis.URL, redis.WithPoolSize(s.cfg.Redis.PoolSize))
		if err != nil {
			return fmt.Errorf("open redis: %w", err)
		}
		s.redis = client
	}

	switch s.cfg.Session.Driver {
	case config.DriverRedis:
		if s.redis == nil {
			return fmt.Errorf("%w: redis session driver without a redis client", config.ErrInvalid)
		}
		s.store = session.NewRedisStore(s.redis, s.cfg.Session.RedisPrefix)
	default:
		s.store = session.NewSQLiteStore(s.db)
	}
	return nil
}

func (s *Server) build(ctx context.Context) error {
	bundle, err := Translations()
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}
	s.bundle = bundle

	s.container = NewContainer(s.cfg, s.db, s.logger, s.redirectCache())

	users, err := shorty.Resolve[*user.Service](ctx, s.container)
	if err != nil {
		return err
	}
	created, err := users.EnsureAdmin(ctx)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if created {
		s.logger.WarnContext(ctx, "created the default root account, change its password",
			slog.String("username", user.DefaultAdminName))
	}

	if s.sink, err = shorty.Resolve[*stack.Sink](ctx, s.container); err != nil {
		return err
	}
	if s.jobs, err = s.scheduler(ctx); err != nil {
		return err
	}

	home, err := public.NewHandler()
	if err != nil {
		return fmt.Errorf("public content: %w", err)
	}

	secret := s.cfg.Security.CSRFSecret
	if secret == "" {
		if secret, err = randomSecret(); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "generated a random csrf secret, tokens will not survive restarts")
	}

	s.Backoffice = shorty.New(append(s.backoffice(secret),
		shorty.WithHandlers(
			backofficeHome{},
			user.NewLoginHandler(user.WithLoginRateLimit(s.cfg.Security.LoginRateLimit)),
			user.NewHandler(),
			shortlink.NewHandler(),
			stack.NewHandler(),
		),
		shorty.WithStaticFiles("/assets/", views.Assets, "assets"),
	)...)
	s.Public = shorty.New(append(s.common("public"),
		shorty.WithHandlers(home),
		shorty.WithStaticFiles("/assets/", views.Assets, "assets"),
	)...)
	return nil
}

// NewContainer supplies the shared singletons and registers every domain.
// A nil redirects cache makes every public lookup hit the database.
func NewContainer(cfg *config.Config, client *db.Client, l *slog.Logger, redirects cache.Cache[string]) *shorty.Container {
	c := shorty.NewContainer()
	shorty.Supply(c, cfg)
	shorty.Supply(c, client)
	shorty.Supply(c, l)
	user.Register(c)
	shortlink.Register(c, shortlink.WithRedirectCache(redirects))
	stack.Register(c, stack.Options{
		Retention: cfg.Stack.Retention,
		QueueSize: cfg.Stack.Buffer,
	})
	return c
}

// redirectCache picks the backend for public redirects: Redis when a client
// is open, process memory otherwise.
func (s *Server) redirectCache() cache.Cache[string] {
	rc := s.cfg.Redirects
	switch {
	case rc.TTL <= 0:
		return nil
	case s.redis != nil:
		return cache.NewRedis[string](s.redis, rc.RedisPrefix, rc.TTL)
	default:
		return cache.NewMemory[string](cache.WithTTL(rc.TTL), cache.WithMaxEntries(rc.MaxEntries))
	}
}

// common is the option set both apps share. The public app stops here, so
// anonymous redirects never create a session.
func (s *Server) common(name string, extra ...shorty.Middleware) []shorty.Option {
	sec := s.cfg.Security
	checks := []shorty.HealthOption{
		shorty.WithReadinessCheck("sqlite", db.Healthcheck(s.db)),
		shorty.WithReadinessCheck("jobs", job.Healthcheck(s.jobs)),
	}
	if s.redis != nil {
		checks = append(checks, shorty.WithReadinessCheck("redis", redis.Healthcheck(s.redis)))
	}

	chain := []shorty.Middleware{
		middlewares.Recover(),
		middlewares.RequestID(),
		middlewares.HTMX(),
		middlewares.SecureHeaders(middlewares.SecureConfig{
			AllowedHosts: sec.AllowedHosts,
			HSTSSeconds:  sec.HSTSSeconds,
			SSLRedirect:  sec.SSLRedirect,
			Development:  sec.Development,
		}),
		middlewares.I18n(s.bundle, middlewares.WithI18nNamespace(Namespace), middlewares.WithI18nPersist()),
	}
	chain = append(chain, extra...)
	chain = append(chain, middlewares.Timeout(requestTimeout))

	return []shorty.Option{
		shorty.WithName(name),
		shorty.WithLogger(s.logger.With(slog.String("app", name))),
		shorty.WithContainer(s.container),
		shorty.WithI18n(s.bundle, Namespace),
		shorty.WithCookieOptions(cookie.WithSecure(s.cfg.Session.CookieSecure)),
		shorty.WithMiddleware(chain...),
		shorty.WithErrorHandler(stack.ErrorHandler(s.sink)),
		shorty.WithNotFoundHandler(notFound),
		shorty.WithHealthChecks(checks...),
	}
}

// backoffice adds sessions and CSRF protection to the shared options.
func (s *Server) backoffice(secret string) []shorty.Option {
	return append(s.common("backoffice", middlewares.CSRFIssue(), middlewares.CSRFHeaderCheck()),
		shorty.WithSession(s.store,
			shorty.WithSessionMaxAge(int(s.cfg.Session.MaxAge/time.Second)),
			shorty.WithSessionSecure(s.cfg.Session.CookieSecure),
		),
		shorty.WithCSRF(secret),
	)
}

// scheduler registers the periodic maintenance tasks.
func (s *Server) scheduler(ctx context.Context) (*job.Manager, error) {
	svc, err := shorty.Resolve[*stack.Service](ctx, s.container)
	if err != nil {
		return nil, err
	}
	opts := []job.Option{
		job.WithLogger(s.logger.With(slog.String("component", "jobs"))),
		job.WithScheduledTask(stack.NewPurgeTask(svc, s.cfg.Stack.PurgeSchedule)),
	}
	if store, ok := s.store.(*session.SQLiteStore); ok {
		opts = append(opts, job.WithScheduledTask(&sessionPurge{store: store}))
	}
	return job.NewManager(opts...)
}

// RunOptions listens on both addresses and ties the scheduler, the error
// sink and the connections to the process lifecycle.
func (s *Server) RunOptions() []shorty.RunOption {
	return []shorty.RunOption{
		shorty.Logger(s.logger),
		shorty.ShutdownTimeout(shutdownTimeout),
		shorty.Listen(s.cfg.Public.Addr(), s.Public),
		shorty.Listen(s.cfg.Backoffice.Addr(), s.Backoffice),
		shorty.StartupHook(s.jobs.StartFunc()),
		shorty.ShutdownHook(s.jobs.Shutdown()),
		shorty.ShutdownHook(s.Close),
		shorty.ShutdownHook(logger.SentryFlush(sentryFlush)),
	}
}

// Jobs returns the maintenance scheduler.
func (s *Server) Jobs() *job.Manager {
	return s.jobs
}

// Container returns the dependency container shared by both apps.
func (s *Server) Container() *shorty.Container {
	return s.container
}

// Close drains the error sink, then closes redis and the database.
func (s *Server) Close(ctx context.Context) error {
	var errs []error
	if s.sink != nil {
		errs = append(errs, s.sink.Close(ctx))
		s.sink = nil
	}
	if s.redis != nil {
		errs = append(errs, redis.Shutdown(s.redis)(ctx))
		s.redis = nil
	}
	if s.db != nil {
		errs = append(errs, db.Shutdown(s.db)(ctx))
		s.db = nil
	}
	return errors.Join(errs...)
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// sessionPurge removes expired rows from the sqlite session table.
type sessionPurge struct {
	store *session.SQLiteStore
}

func (t *sessionPurge) Name() string     { return "purge_expired_sessions" }
func (t *sessionPurge) Schedule() string { return "@hourly" }

func (t *sessionPurge) Handle(ctx context.Context) error {
	_, err := t.store.DeleteExpired(ctx, time.Now())
	return err
}
