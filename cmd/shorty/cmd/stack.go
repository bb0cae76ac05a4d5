package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/shorty/internal/stack"
	"github.com/dmitrymomot/shorty/pkg/db"
)

var stackCmd = &cobra.Command{
	Use:   "stack",
	Short: "Error log maintenance",
}

var stackPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete error reports older than the retention period",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := db.Open(ctx, cfg.Database, db.WithLogger(appLog))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer client.Close()

		retention := cfg.Stack.Retention
		if d, _ := cmd.Flags().GetDuration("older-than"); d > 0 {
			retention = d
		}
		svc := stack.NewService(stack.NewRepository(client), stack.WithRetention(retention))
		n, err := svc.Clear(ctx)
		if err != nil {
			return fmt.Errorf("purge failed: %w", err)
		}
		appLog.InfoContext(ctx, "error reports purged", slog.Int64("deleted", n), slog.Duration("retention", retention))
		return nil
	},
}

func init() {
	stackPurgeCmd.Flags().Duration("older-than", 0, "override the configured retention, e.g. 720h")
	stackCmd.AddCommand(stackPurgeCmd)
}
