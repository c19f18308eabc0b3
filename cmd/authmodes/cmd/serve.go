package cmd

import (
	"fmt"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/app"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Applies migrations, then serves the API until SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		return application.Run()
	},
}
