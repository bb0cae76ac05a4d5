// Package cmd is the shorty command line.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/shorty/internal/config"
	"github.com/dmitrymomot/shorty/internal/user"
	"github.com/dmitrymomot/shorty/middlewares"
	"github.com/dmitrymomot/shorty/pkg/logger"
)

var (
	cfg *config.Config
	appLog *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "shorty",
	Short: "URL shortener with a server-rendered backoffice",
	Long: `shorty serves a public redirect site and a backoffice for managing users,
short links and the error log. Both share one SQLite database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if path, _ := cmd.Flags().GetString("db"); path != "" {
			cfg.Database.Path = path
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Log.Level = level
		}
		appLog = logger.New(cfg.Log, os.Stdout, middlewares.RequestIDExtractor(), user.LogExtractor())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (env: APP_DATABASE_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error (env: APP_LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(stackCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
