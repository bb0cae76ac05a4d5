package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/shorty/pkg/logger"
)

// ErrNoListeners is returned by Run without any Listen option.
var ErrNoListeners = errors.New("run: no listeners configured")

// RunOption configures Run.
type RunOption func(*runConfig)

type listener struct {
	app     *App
	address string
}

type runConfig struct {
	baseCtx         context.Context
	logger          *slog.Logger
	listeners       []listener
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration
}

func buildRunConfig(opts ...RunOption) *runConfig {
	cfg := &runConfig{
		baseCtx:         context.Background(),
		logger:          logger.NewNope(),
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Listen serves app on addr. Run accepts any number of listeners.
//
//	shorty.Run(
//	    shorty.Listen(cfg.Public.Addr, public),
//	    shorty.Listen(cfg.Backoffice.Addr, backoffice),
//	)
func Listen(addr string, app *App) RunOption {
	return func(c *runConfig) {
		if addr != "" && app != nil {
			c.listeners = append(c.listeners, listener{app: app, address: addr})
		}
	}
}

// Logger sets the runtime logger.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout bounds the graceful shutdown of servers and hooks.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// StartupHook runs fn after the listeners are bound and before serving.
// Its context is cancelled when shutdown begins.
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// ShutdownHook registers a cleanup function run after the servers stop,
// in registration order.
//
//	shorty.ShutdownHook(db.Shutdown(client))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// WithContext sets the parent context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}

// Run serves every configured app on its own listener and blocks until
// SIGINT, SIGTERM, cancellation of the base context, or a server failure.
func Run(opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if len(cfg.listeners) == 0 {
		return ErrNoListeners
	}
	log := cfg.logger

	ctx, cancel := signal.NotifyContext(cfg.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	servers := make([]*http.Server, 0, len(cfg.listeners))
	sockets := make([]net.Listener, 0, len(cfg.listeners))
	closeSockets := func() {
		for _, ln := range sockets {
			_ = ln.Close()
		}
	}

	for _, l := range cfg.listeners {
		ln, err := net.Listen("tcp", l.address)
		if err != nil {
			closeSockets()
			return fmt.Errorf("listen %s: %w", l.address, err)
		}
		sockets = append(sockets, ln)
		servers = append(servers, &http.Server{
			Handler:           l.app,
			ReadTimeout:       defaultReadTimeout,
			WriteTimeout:      defaultWriteTimeout,
			IdleTimeout:       defaultIdleTimeout,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
			MaxHeaderBytes:    defaultMaxHeaderBytes,
			ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
		})
	}

	for _, hook := range cfg.startupHooks {
		if err := hook(ctx); err != nil {
			closeSockets()
			return fmt.Errorf("startup hook: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, srv := range servers {
		ln := sockets[i]
		name := cfg.listeners[i].app.Name()
		g.Go(func() error {
			log.Info("server starting", slog.String("app", name), slog.String("address", ln.Addr().String()))
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", ln.Addr(), err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down servers")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
		defer shutdownCancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		for _, hook := range cfg.shutdownHooks {
			if err := hook(shutdownCtx); err != nil {
				log.Error("shutdown hook failed", slog.Any("error", err))
				errs = append(errs, err)
			}
		}

		if len(errs) > 0 {
			log.Error("shutdown completed with errors")
			return errors.Join(errs...)
		}
		log.Info("shutdown completed")
		return nil
	})

	return g.Wait()
}
