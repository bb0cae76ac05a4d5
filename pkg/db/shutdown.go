package db

import (
	"context"
	"errors"

	"github.com/uptrace/bun"
)

// Healthcheck returns a readiness probe that pings the database under the lock.
func Healthcheck(c *Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if c == nil {
			return ErrHealthcheckFailed
		}
		err := c.WithConn(ctx, func(ctx context.Context, conn bun.IDB) error {
			var one int
			return conn.NewRaw("SELECT 1").Scan(ctx, &one)
		})
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a hook that closes the database.
func Shutdown(c *Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return c.Close()
	}
}
