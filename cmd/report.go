package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	reportPhone string
	reportUPI   string
	reportType  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Manage ad hoc scam reports",
}

var reportAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a scam report against a phone number or UPI handle",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if reportPhone == "" && reportUPI == "" {
			return eris.New("at least one of --phone or --upi is required")
		}

		db, cleanup, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		db.AddReport(ctx, reportPhone, reportUPI, reportType)

		if reportPhone != "" {
			res := db.CheckPhone(reportPhone)
			fmt.Printf("phone %s now has %d report(s)\n", reportPhone, res.Reports)
		}
		if reportUPI != "" {
			res := db.CheckUPI(reportUPI)
			fmt.Printf("upi %s now has %d report(s)\n", reportUPI, res.Reports)
		}

		return nil
	},
}

func init() {
	reportAddCmd.Flags().StringVar(&reportPhone, "phone", "", "phone number to report")
	reportAddCmd.Flags().StringVar(&reportUPI, "upi", "", "UPI handle to report")
	reportAddCmd.Flags().StringVar(&reportType, "type", "Unknown", "scam type label")
	reportCmd.AddCommand(reportAddCmd)
	rootCmd.AddCommand(reportCmd)
}
