package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var reportsLimit int

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List recent raw reports",
	Long:  "Lists the most recent raw source items in the retention window, newest first.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, cleanup, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		items := db.RecentReports(reportsLimit)
		if len(items) == 0 {
			fmt.Println("No recent reports. Run 'scamintel update' first.")
			return nil
		}

		for _, item := range items {
			fmt.Printf("[%s] %s  %s\n",
				item.Source, item.Timestamp.Format(time.RFC3339), item.Title)
			if item.Link != "" {
				fmt.Printf("         %s\n", item.Link)
			}
			for _, phone := range item.PhonesFound {
				fmt.Printf("         phone: %s\n", phone)
			}
		}

		return nil
	},
}

func init() {
	reportsCmd.Flags().IntVar(&reportsLimit, "limit", 15, "maximum reports to list")
	rootCmd.AddCommand(reportsCmd)
}
