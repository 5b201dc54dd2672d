package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	message string
	timeout time.Duration
)

// waveCmd represents the wave command
var waveCmd = &cobra.Command{
	Use:   "wave",
	Short: "Send a wave and wait for it to be mined",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
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

		if _, err := prt.Connect(ctx); err != nil {
			return err
		}

		pt, err := prt.Submit(ctx, message)
		if err != nil {
			return err
		}
		fmt.Println("Mining:", pt.Hash())

		if err := pt.Wait(ctx); err != nil {
			return err
		}

		fmt.Println("Mined:", pt.Hash())
		fmt.Println("Total waves:", prt.Snapshot().Total)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(waveCmd)
	waveCmd.Flags().StringVarP(&message, "message", "m", "", "Message to send with the wave.")
	waveCmd.Flags().DurationVarP(&timeout, "timeout", "t", 2*time.Minute, "Time to wait for the wave to be mined.")
}
