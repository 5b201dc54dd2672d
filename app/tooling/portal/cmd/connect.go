package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect the account and print its balance",
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

		account, err := prt.Connect(ctx)
		if err != nil {
			return err
		}

		balance, err := c.eth.BalanceAt(ctx, account, nil)
		if err != nil {
			return err
		}

		fmt.Println("Connected:", account)
		fmt.Println("Balance (wei):", balance)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
