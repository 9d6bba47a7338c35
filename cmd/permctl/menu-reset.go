package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var menuResetCmd = &cobra.Command{
	Use:   "reset <user-id>",
	Short: "Drop a user's personal menu order",
	Long: `Delete every personal page position of the user and switch them back
to the default menu order.

Example:
  permctl menu reset 0b8f5c1e-4a55-4d8e-9a43-1f0f2f6f3c21`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", args[0], err)
		}
		e, err := openEnv()
		if err != nil {
			return err
		}
		if err := e.menu.ResetToDefault(cmd.Context(), userID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "menu order reset for %s\n", userID)
		return nil
	},
}

func init() {
	menuCmd.AddCommand(menuResetCmd)
}
