package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satark-labs/scamintel/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "scamintel",
	Short: "Live scam-intelligence cache",
	Long:  "Collects scam reports from news feeds, complaint forums, government advisories and social search, merges them into a keyed local cache, and answers phone/UPI lookups.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
