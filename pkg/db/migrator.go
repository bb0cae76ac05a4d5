package db

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// Migrate applies every pending migration found in migrations.
// Migrations run under the connection lock.
func Migrate(ctx context.Context, c *Client, migrations fs.FS) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	provider, err := goose.NewProvider(goose.DialectSQLite3, c.db.DB, migrations)
	if err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}

	for _, r := range results {
		c.logger.InfoContext(ctx, "migration applied",
			slog.Int64("version", r.Source.Version),
			slog.String("source", r.Source.Path),
			slog.Duration("duration", r.Duration),
		)
	}
	return nil
}
