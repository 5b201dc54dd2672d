package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/waveportal/foundation/wallet"
	"github.com/spf13/cobra"
)

var keystorePath string

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the account key file into an encrypted keystore",
	RunE: func(cmd *cobra.Command, args []string) error {
		passphrase := os.Getenv("PORTAL_WALLET_PASSPHRASE")
		if passphrase == "" {
			return errors.New("PORTAL_WALLET_PASSPHRASE must be set")
		}

		ks := wallet.NewKeyStore(keystorePath, nil)

		account, err := ks.Import(wallet.NewKeyFile(keyPath(), false), passphrase)
		if err != nil {
			return err
		}

		fmt.Println("Imported:", account)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&keystorePath, "keystore", "k", "zblock/keystore/", "Path to the keystore directory.")
}
