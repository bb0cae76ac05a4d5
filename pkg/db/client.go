package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/shorty/pkg/logger"
)

// Client owns the single database connection and the lock guarding it.
type Client struct {
	db     *bun.DB
	logger *slog.Logger
	lock   chan struct{}
}

// Option configures a Client.
type Option func(*Client) error

// WithLogger sets the logger used for migration and lock diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) error {
		if l == nil {
			return fmt.Errorf("%w: logger", ErrOptionEmpty)
		}
		c.logger = l
		return nil
	}
}

// Open connects to the SQLite database described by cfg.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if cfg.Path == "" {
		return nil, ErrPathEmpty
	}

	sqldb, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, errors.Join(ErrConnection, err)
	}

	c, err := NewClient(sqldb, opts...)
	if err != nil {
		_ = sqldb.Close()
		return nil, err
	}

	pragmas := []string{"PRAGMA foreign_keys = ON"}
	if cfg.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	if cfg.Path != MemoryPath {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := c.db.ExecContext(ctx, p); err != nil {
			_ = sqldb.Close()
			return nil, errors.Join(ErrInitFailed, fmt.Errorf("%s: %w", p, err))
		}
	}

	if err := c.db.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, errors.Join(ErrConnection, err)
	}

	return c, nil
}

// NewClient wraps an already opened database handle.
// The handle is limited to a single open connection.
func NewClient(sqldb *sql.DB, opts ...Option) (*Client, error) {
	if sqldb == nil {
		return nil, fmt.Errorf("%w: sql.DB", ErrOptionEmpty)
	}

	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)

	c := &Client{
		db:     bun.NewDB(sqldb, sqlitedialect.New()),
		logger: logger.NewNope(),
		lock:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Client) acquire(ctx context.Context) error {
	select {
	case c.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return errors.Join(ErrLock, ctx.Err())
	}
}

func (c *Client) release() {
	<-c.lock
}

// WithConn runs fn while holding the connection lock.
func (c *Client) WithConn(ctx context.Context, fn func(ctx context.Context, conn bun.IDB) error) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	return fn(ctx, c.db)
}

// WithTx runs fn inside one transaction while holding the connection lock.
// The transaction is rolled back when fn returns an error or panics.
func (c *Client) WithTx(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	return c.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

// Close closes the underlying database.
func (c *Client) Close() error {
	return c.db.Close()
}
