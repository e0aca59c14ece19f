package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh the cache from all sources",
	Long:  "Fetches scam reports from the news feed, complaint forums, government advisories and social search, merges them into the cache, and persists the result.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, cleanup, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		summary := db.Update(ctx)

		fmt.Printf("Update complete in %dms\n", summary.UpdateTimeMs)
		fmt.Printf("  Reports fetched:  %d\n", summary.TotalReportsFetched)
		fmt.Printf("  New numbers:      %d\n", summary.NewNumbers)
		fmt.Printf("  Total numbers:    %d\n", summary.TotalNumbers)
		fmt.Printf("  Total UPI IDs:    %d\n", summary.TotalUPIs)
		fmt.Println("  By source:")
		for src, n := range summary.Sources {
			fmt.Printf("    %-20s %d\n", src, n)
		}
		if len(summary.SourceErrors) > 0 {
			fmt.Println("  Degraded sources:")
			for src, msg := range summary.SourceErrors {
				fmt.Printf("    %-20s %s\n", src, msg)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
