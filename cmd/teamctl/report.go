package main

import (
	"courtside/team-ops/internal/app"

	"github.com/spf13/cobra"
)

var (
	rpeFrom string
	rpeTo   string
)

var rpeCmd = &cobra.Command{
	Use:   "rpe-report",
	Short: "Print the weekly RPE load grid as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Shutdown(cmd.Context())

		rep, err := a.Services.Reports.RPE(cmd.Context(), rpeFrom, rpeTo)
		if err != nil {
			return err
		}
		return rep.Document().WriteCSV(cmd.OutOrStdout())
	},
}

func init() {
	rpeCmd.Flags().StringVar(&rpeFrom, "from", "", "first day, YYYY-MM-DD")
	rpeCmd.Flags().StringVar(&rpeTo, "to", "", "last day, YYYY-MM-DD")
	_ = rpeCmd.MarkFlagRequired("from")
	_ = rpeCmd.MarkFlagRequired("to")
}
