package main

import (
	"fmt"

	"courtside/team-ops/internal/config"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "teamctl",
	Short: "Team operations admin tool",
	Long: `teamctl manages the team-ops document store outside the HTTP server.

It reads the same config.yaml and environment as the server.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory holding config.yaml")

	rootCmd.AddCommand(indexesCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(rpeCmd)
}
