package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, cleanup, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		stats := db.Stats()

		fmt.Printf("Total reports:     %d\n", stats.TotalReports)
		fmt.Printf("Reported numbers:  %d\n", stats.ReportedNumbers)
		fmt.Printf("Reported UPI IDs:  %d\n", stats.ReportedUPIs)
		fmt.Printf("Recent raw items:  %d\n", stats.RecentNews)
		fmt.Printf("Last updated:      %s (%.1f hours ago)\n",
			stats.LastUpdated.Format(time.RFC3339), stats.HoursSinceUpdate)
		if stats.CacheValid {
			fmt.Println("Cache:             valid")
		} else {
			fmt.Println("Cache:             stale")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
