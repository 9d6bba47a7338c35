package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var userResetPasswordCmd = &cobra.Command{
	Use:   "reset-password <email> <new-password>",
	Short: "Set a user's password and end their sessions",
	Long: `Replace the password of the user with the given email. Every open
session of that user is invalidated.

Example:
  permctl user reset-password admin@tarl.local 'n3w-passw0rd'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		if err := e.auth.ResetPassword(cmd.Context(), args[0], args[1]); err != nil {
			return fmt.Errorf("reset password for %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", args[0])
		return nil
	},
}

func init() {
	userCmd.AddCommand(userResetPasswordCmd)
}
