package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/shorty"
	"github.com/dmitrymomot/shorty/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the public site and the backoffice",
	Long: `Migrates the database, creates the default root account when no account
exists, then serves both apps until SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := server.New(cmd.Context(), cfg, appLog)
		if err != nil {
			return fmt.Errorf("failed to build server: %w", err)
		}
		opts := append(srv.RunOptions(), shorty.WithContext(cmd.Context()))
		return shorty.Run(opts...)
	},
}
