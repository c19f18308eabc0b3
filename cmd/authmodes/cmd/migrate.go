package cmd

import (
	"fmt"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/app"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Applies all pending migrations for the configured database driver and exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.OpenMigratedStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied (%s)\n", cfg.DatabaseDriver)
		return nil
	},
}
