package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <role> <page-name> <action>",
	Short: "Print whether a role may perform an action on a page",
	Long: `Resolve one permission the same way the API does: the page grant
first, then the action row, then the configured missing-action policy.

Example:
  permctl check teacher Students delete`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		allowed, err := e.permissions.CanPerform(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), decision(args[0], args[1], args[2], allowed))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func decision(role, page, action string, allowed bool) string {
	verdict := "denied"
	if allowed {
		verdict = "allowed"
	}
	return fmt.Sprintf("%s: %s %q on %q", verdict, role, action, page)
}
