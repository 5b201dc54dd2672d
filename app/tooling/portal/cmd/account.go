package cmd

import (
	"fmt"

	"github.com/ardanlabs/waveportal/foundation/wallet"
	"github.com/spf13/cobra"
)

// accountCmd represents the account command
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print address for the specific account",
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, err := wallet.NewKeyFile(keyPath(), false).RequestAccounts(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(accounts[0])

		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
}
