package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/shorty/internal/migrations"
	"github.com/dmitrymomot/shorty/pkg/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := db.Open(ctx, cfg.Database, db.WithLogger(appLog))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer client.Close()

		if err := db.Migrate(ctx, client, migrations.FS); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		appLog.InfoContext(ctx, "migrations applied", slog.String("path", cfg.Database.Path))
		return nil
	},
}
