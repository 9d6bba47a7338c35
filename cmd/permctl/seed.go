package main

import (
	"fmt"

	"tarl-insight-hub/internal/service"
	"tarl-insight-hub/pkg/database"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create tables, default pages, grants and the admin user",
	Long: `Run migrations, then insert the default page catalog, the default
role grants and the bootstrap admin account (ADMIN_EMAIL / ADMIN_PASSWORD).

Existing rows are never overwritten, so the command is safe to re-run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		if err := database.Migrate(e.db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if err := service.SeedDefaults(cmd.Context(), e.pageRepo, e.permRepo, e.userRepo, e.cfg.Seed, e.log); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "seed complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
