package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/satark-labs/scamintel/internal/model"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Look up an identifier in the cache",
}

var checkPhoneCmd = &cobra.Command{
	Use:   "phone <number>",
	Short: "Check whether a phone number has scam reports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, cleanup, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		printCheckResult(args[0], db.CheckPhone(args[0]))
		return nil
	},
}

var checkUPICmd = &cobra.Command{
	Use:   "upi <id>",
	Short: "Check whether a UPI handle has scam reports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, cleanup, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		printCheckResult(args[0], db.CheckUPI(args[0]))
		return nil
	},
}

func printCheckResult(input string, res model.CheckResult) {
	if !res.Found {
		fmt.Printf("%s: no reports on record\n", input)
		return
	}
	fmt.Printf("%s: %d report(s)\n", input, res.Reports)
	if res.FirstSeen != nil {
		fmt.Printf("  First seen: %s\n", res.FirstSeen.Format(time.RFC3339))
	}
	if res.LastSeen != nil {
		fmt.Printf("  Last seen:  %s\n", res.LastSeen.Format(time.RFC3339))
	}
	fmt.Printf("  Scam types: %s\n", strings.Join(res.ScamTypes, ", "))
}

func init() {
	checkCmd.AddCommand(checkPhoneCmd)
	checkCmd.AddCommand(checkUPICmd)
	rootCmd.AddCommand(checkCmd)
}
