package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var limit int

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the wave count and the latest waves",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		c, err := dial(ctx)
		if err != nil {
			return err
		}
		defer c.close()

		prt, err := c.newPortal(nil)
		if err != nil {
			return err
		}
		defer prt.Shutdown()

		if err := prt.Mount(ctx); err != nil {
			return err
		}

		snap := prt.Snapshot()
		if snap.Connected() {
			fmt.Println("Account:", snap.Account)
		}
		fmt.Println("Total waves:", snap.Total)

		records := snap.Records
		if limit > 0 && len(records) > limit {
			records = records[len(records)-limit:]
		}
		for _, r := range records {
			printRecord(r)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().IntVarP(&limit, "limit", "l", 10, "Number of latest waves to print, 0 prints all.")
}
