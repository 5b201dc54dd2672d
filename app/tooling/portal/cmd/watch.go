package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/waveportal/business/core/portal"
	"github.com/spf13/cobra"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print new waves as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		c, err := dial(ctx)
		if err != nil {
			return err
		}
		defer c.close()

		feed := func(u portal.Update) {
			if u.Kind == portal.KindWave && u.Record != nil {
				printRecord(*u.Record)
			}
		}

		prt, err := c.newPortal(feed)
		if err != nil {
			return err
		}
		defer prt.Shutdown()

		sub, err := prt.Subscribe(ctx)
		if err != nil {
			return err
		}
		defer sub.Close()

		select {
		case <-ctx.Done():
		case <-sub.Done():
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

