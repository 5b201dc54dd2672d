// Package cmd contains the wave portal command line client.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/ardanlabs/waveportal/business/core/portal"
	"github.com/ardanlabs/waveportal/foundation/logger"
	"github.com/ardanlabs/waveportal/foundation/wallet"
	"github.com/ardanlabs/waveportal/foundation/waveportal"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	chainURL        string
	contractAddress string
	accountName     string
	walletPath      string
	verbose         bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Wave at the portal from your terminal",

	// Command errors are reported once by Execute without the usage text.
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {

	// Flag defaults can come from a local .env file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "loading .env file:", err)
	}

	rootCmd.PersistentFlags().StringVarP(&chainURL, "url", "u", envOr("PORTAL_CHAIN_URL", "ws://127.0.0.1:8545"), "Url of the chain node.")
	rootCmd.PersistentFlags().StringVarP(&contractAddress, "contract", "c", envOr("PORTAL_CHAIN_CONTRACT_ADDRESS", "0x5FbDB2315678afecb367f032d93F642f64180aa3"), "Address of the WavePortal contract.")
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", envOr("PORTAL_ACCOUNT", "private"), "Name of the private key.")
	rootCmd.PersistentFlags().StringVarP(&walletPath, "account-path", "p", envOr("PORTAL_ACCOUNT_PATH", "zblock/accounts/"), "Path to the directory with private keys.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log portal events to stderr.")
}

func envOr(key string, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func keyPath() string {
	return wallet.KeyPath(walletPath, accountName)
}

// =============================================================================

// client holds the connections used by the commands that talk to the chain.
type client struct {
	eth      *ethclient.Client
	contract *waveportal.Contract
	chainID  *big.Int
}

func dial(ctx context.Context) (client, error) {
	if !common.IsHexAddress(contractAddress) {
		return client{}, fmt.Errorf("invalid contract address %q", contractAddress)
	}

	eth, err := ethclient.DialContext(ctx, chainURL)
	if err != nil {
		return client{}, fmt.Errorf("dialing %s: %w", chainURL, err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return client{}, fmt.Errorf("reading chain id: %w", err)
	}

	contract, err := waveportal.New(common.HexToAddress(contractAddress), eth)
	if err != nil {
		eth.Close()
		return client{}, err
	}

	c := client{
		eth:      eth,
		contract: contract,
		chainID:  chainID,
	}

	return c, nil
}

func (c client) close() {
	c.eth.Close()
}

// newPortal constructs a portal over the key file of the selected account.
// The key file is preauthorized since the user picked it on the command line.
func (c client) newPortal(feed func(portal.Update)) (*portal.Portal, error) {
	var ev portal.EventHandler
	if verbose {
		log, err := logger.New("PORTAL-CLI", "stderr")
		if err != nil {
			return nil, err
		}
		ev = func(v string, args ...any) {
			log.Infow(fmt.Sprintf(v, args...))
		}
	}

	cfg := portal.Config{
		Contract:  c.contract,
		Wallet:    wallet.NewHandle(wallet.NewKeyFile(keyPath(), true)),
		ChainID:   c.chainID,
		EvHandler: ev,
		Feed:      feed,
	}

	return portal.New(cfg)
}

// printRecord writes a single wave to stdout.
func printRecord(r portal.Record) {
	fmt.Printf("%s  %s  %s\n", r.Timestamp.Format("2006-01-02 15:04:05"), r.Address, r.Message)
}
