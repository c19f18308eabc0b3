package cmd

import (
	"fmt"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/app"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/service"
	"github.com/aussiebroadwan/authmodes/pkg/cryptox"
	"github.com/spf13/cobra"
)

var (
	emailFlag    string
	passwordFlag string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user directly in the database",
	Long: `Creates an account with the given email and password. The account can then
sign in under any mode. A password is generated when --password is omitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}

		password := passwordFlag
		generated := password == ""
		if generated {
			var err error
			if password, err = cryptox.GeneratePassword(); err != nil {
				return fmt.Errorf("failed to generate password: %w", err)
			}
		}

		ctx := cmd.Context()
		db, err := app.OpenMigratedStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		hasher, err := app.NewHasher(cfg)
		if err != nil {
			return err
		}

		user, err := service.NewAccounts(db, hasher).Register(ctx, emailFlag, password, nil)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created user %s (%s)\n", user.Email, user.ID)
		if generated {
			fmt.Fprintf(out, "Password: %s\n", password)
		}
		return nil
	},
}

func init() {
	usersCreateCmd.Flags().StringVar(&emailFlag, "email", "", "Email address (required)")
	usersCreateCmd.Flags().StringVar(&passwordFlag, "password", "", "Password, at least 8 characters (generated when empty)")
	usersCmd.AddCommand(usersCreateCmd)
}
