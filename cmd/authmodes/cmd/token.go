package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aussiebroadwan/authmodes/pkg/jwtx"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Token debugging helpers",
}

var tokenInspectCmd = &cobra.Command{
	Use:   "inspect <jwt>",
	Short: "Print the claims of a token without verifying it",
	Args:  cobra.ExactArgs(1),
	// No configuration needed.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		claims, err := jwtx.DecodeUnverified(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "WARNING: signature NOT verified")
		fmt.Fprintf(out, "user:    %s\n", claims.UserID())
		if claims.Email != "" {
			fmt.Fprintf(out, "email:   %s\n", claims.Email)
		}
		if claims.ExpiresAt != nil {
			exp := claims.ExpiresAt.Time
			state := "valid"
			if time.Now().After(exp) {
				state = "expired"
			}
			fmt.Fprintf(out, "expires: %s (%s)\n", exp.UTC().Format(time.RFC3339), state)
		}

		raw, err := json.MarshalIndent(claims, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(raw))
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenInspectCmd)
}
