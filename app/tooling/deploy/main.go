// This program deploys the WavePortal contract funded with a small amount
// of ether and prints the address it was deployed to.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/waveportal/foundation/logger"
	"github.com/ardanlabs/waveportal/foundation/wallet"
	"github.com/ardanlabs/waveportal/foundation/waveportal"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

// errHelp is returned when only the usage was requested.
var errHelp = errors.New("help requested")

type config struct {
	conf.Version
	Chain struct {
		URL string `conf:"default:http://127.0.0.1:8545"`
	}
	Key      string        `conf:"default:zblock/accounts/kennedy.ecdsa"`
	Artifact string        `conf:"default:artifacts/contracts/WavePortal.sol/WavePortal.json"`
	Value    string        `conf:"default:0.001"`
	Timeout  time.Duration `conf:"default:2m"`
}

// deployFunc performs the deployment described by the configuration.
type deployFunc func(ctx context.Context, log *zap.SugaredLogger, cfg config) (waveportal.Deployment, error)

func main() {

	// Construct the application logger.
	log, err := logger.New("DEPLOY")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	code := exitCode(log, run(log, os.Stdout))
	log.Sync()
	os.Exit(code)
}

func run(log *zap.SugaredLogger, w io.Writer) error {

	// Values in a local .env file are loaded into the environment first so
	// they can be picked up by the config parser. The file is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env file: %w", err)
	}

	cfg := config{
		Version: conf.Version{
			Build: build,
			Desc:  "wave portal deployment",
		},
	}

	const prefix = "DEPLOY"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Fprintln(w, help)
			return errHelp
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	return deploy(ctx, log, w, cfg, deployContract)
}

// deploy runs the deployment and prints the address of the contract.
func deploy(ctx context.Context, log *zap.SugaredLogger, w io.Writer, cfg config, fn deployFunc) error {
	dpl, err := fn(ctx, log, cfg)
	if err != nil {
		return err
	}

	log.Infow("deploy", "status", "deployed", "address", dpl.Address, "tx", dpl.TxHash, "block", dpl.BlockNumber)

	fmt.Fprintf(w, "WavePortal address: %s\n", dpl.Address)

	return nil
}

// exitCode reports the process status for the result of a run.
func exitCode(log *zap.SugaredLogger, err error) int {
	switch {
	case err == nil, errors.Is(err, errHelp):
		return 0
	}

	log.Errorw("deploy", "ERROR", err)
	return 1
}

// deployContract sends the creation transaction signed with the configured
// key file and waits for it to be mined.
func deployContract(ctx context.Context, log *zap.SugaredLogger, cfg config) (waveportal.Deployment, error) {
	value, err := waveportal.ToWei(cfg.Value)
	if err != nil {
		return waveportal.Deployment{}, err
	}

	art, err := waveportal.LoadArtifact(cfg.Artifact)
	if err != nil {
		return waveportal.Deployment{}, err
	}

	client, err := ethclient.DialContext(ctx, cfg.Chain.URL)
	if err != nil {
		return waveportal.Deployment{}, fmt.Errorf("dialing %s: %w", cfg.Chain.URL, err)
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return waveportal.Deployment{}, fmt.Errorf("reading chain id: %w", err)
	}

	kf := wallet.NewKeyFile(cfg.Key, false)
	accounts, err := kf.RequestAccounts(ctx)
	if err != nil {
		return waveportal.Deployment{}, err
	}

	opts, err := kf.Transactor(ctx, accounts[0], chainID)
	if err != nil {
		return waveportal.Deployment{}, err
	}

	log.Infow("deploy", "status", "sending", "deployer", accounts[0], "chainid", chainID, "value", value)

	return waveportal.Deploy(ctx, opts, client, art, value)
}
