package cmd

import (
	"fmt"
	"os"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/app"
	"github.com/spf13/cobra"
)

var cfg app.Config

var rootCmd = &cobra.Command{
	Use:   "authmodes",
	Short: "Email/password auth service with stateless, hybrid and session modes",
	Long: `authmodes serves one account store behind three ways to stay signed in:
a stateless signed token, a short-lived access token with a rotating refresh
token, or a server-side session. Configuration comes from the environment;
flags override it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = app.LoadConfig()

		flags := cmd.Flags()
		if flags.Changed("port") {
			port, err := flags.GetInt("port")
			if err != nil {
				return err
			}
			cfg.Port = port
		}
		if flags.Changed("log-level") {
			level, err := flags.GetString("log-level")
			if err != nil {
				return err
			}
			cfg.LogLevel = level
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().Int("port", 8080, "HTTP server port (env: PORT)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error (env: LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(tokenCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
