package main

import (
	"fmt"

	"tarl-insight-hub/internal/model"

	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the recognized action names",
	Long:  `List the built-in action vocabulary plus PERMISSION_EXTRA_ACTIONS.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		for _, name := range model.NewActionSet(cfg.Permission.ExtraActions...).Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
}
