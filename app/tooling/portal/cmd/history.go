package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var fromBlock uint64

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the waves logged by the contract since a block",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		c, err := dial(ctx)
		if err != nil {
			return err
		}
		defer c.close()

		waves, err := c.contract.FilterNewWave(ctx, fromBlock)
		if err != nil {
			return err
		}

		for _, w := range waves {
			fmt.Printf("%d  %s  %s  %s\n", w.Raw.BlockNumber, w.Raw.TxHash, w.From, w.Message)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Uint64VarP(&fromBlock, "from", "f", 0, "Block number to start from.")
}
