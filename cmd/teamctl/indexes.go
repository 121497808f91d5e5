package main

import (
	"fmt"

	"courtside/team-ops/internal/app"

	"github.com/spf13/cobra"
)

var indexesCmd = &cobra.Command{
	Use:   "ensure-indexes",
	Short: "Create the store's indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		stores, err := app.OpenStores(cfg.Database)
		if err != nil {
			return err
		}
		defer stores.Close()

		stores.EnsureIndexes(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "indexes ensured")
		return nil
	},
}
