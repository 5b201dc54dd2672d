package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/waveportal/app/services/portal/handlers"
	"github.com/ardanlabs/waveportal/business/core/portal"
	"github.com/ardanlabs/waveportal/foundation/events"
	"github.com/ardanlabs/waveportal/foundation/logger"
	"github.com/ardanlabs/waveportal/foundation/nameservice"
	"github.com/ardanlabs/waveportal/foundation/retry"
	"github.com/ardanlabs/waveportal/foundation/wallet"
	"github.com/ardanlabs/waveportal/foundation/waveportal"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("PORTAL")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// Values in a local .env file are loaded into the environment first so
	// they can be picked up by the config parser. The file is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env file: %w", err)
	}

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			CorsOrigins     string        `conf:"default:*"`
		}
		Chain struct {
			URL             string        `conf:"default:ws://127.0.0.1:8545"`
			ContractAddress string        `conf:"default:0x5FbDB2315678afecb367f032d93F642f64180aa3"`
			GasLimit        uint64        `conf:"default:300000"`
			Retries         uint64        `conf:"default:0"`
			RetryInterval   time.Duration `conf:"default:500ms"`
			RetryMaxWait    time.Duration `conf:"default:5s"`
		}
		Wallet struct {
			Kind          string `conf:"default:keyfile,help:keyfile|keystore|none"`
			Path          string `conf:"default:zblock/accounts/kennedy.ecdsa"`
			Preauthorized bool   `conf:"default:false"`
			Passphrase    string `conf:"mask"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "wave portal client service",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "PORTAL"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	// The nameservice package provides name resolution for account addresses.
	// The names come from the file names in the accounts folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	// Logging the accounts for documentation in the logs.
	for account, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "account", account)
	}

	// =========================================================================
	// Chain Support

	if !common.IsHexAddress(cfg.Chain.ContractAddress) {
		return fmt.Errorf("invalid contract address %q", cfg.Chain.ContractAddress)
	}

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dialCancel()

	client, err := ethclient.DialContext(dialCtx, cfg.Chain.URL)
	if err != nil {
		return fmt.Errorf("dialing chain %s: %w", cfg.Chain.URL, err)
	}
	defer client.Close()

	chainID, err := client.ChainID(dialCtx)
	if err != nil {
		return fmt.Errorf("reading chain id: %w", err)
	}
	log.Infow("startup", "status", "chain connected", "url", cfg.Chain.URL, "chainid", chainID)

	contract, err := waveportal.New(common.HexToAddress(cfg.Chain.ContractAddress), client)
	if err != nil {
		return fmt.Errorf("binding contract: %w", err)
	}

	// =========================================================================
	// Wallet Support

	provider, err := newProvider(cfg.Wallet.Kind, cfg.Wallet.Path, cfg.Wallet.Preauthorized, cfg.Wallet.Passphrase)
	if err != nil {
		return err
	}

	// =========================================================================
	// Portal Support

	// The portal package accepts a function of this signature to allow the
	// application to log. State updates are sent to any websocket client that
	// is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
	}
	feed := func(u portal.Update) {
		if err := evts.SendJSON(u); err != nil {
			log.Errorw("feed", "ERROR", err)
		}
	}

	prt, err := portal.New(portal.Config{
		Contract: contract,
		Wallet:   wallet.NewHandle(provider),
		ChainID:  chainID,
		GasLimit: cfg.Chain.GasLimit,
		Retry: retry.Policy{
			MaxRetries: cfg.Chain.Retries,
			Initial:    cfg.Chain.RetryInterval,
			Max:        cfg.Chain.RetryMaxWait,
		},
		EvHandler: ev,
		Feed:      feed,
	})
	if err != nil {
		return err
	}
	defer prt.Shutdown()

	mountCtx, mountCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer mountCancel()

	// A failed mount leaves the portal empty. The page still serves and the
	// wallet can still be connected.
	if err := prt.Mount(mountCtx); err != nil {
		log.Errorw("startup", "status", "mount portal", "ERROR", err)
	}

	sub, err := prt.Subscribe(context.Background())
	if err != nil {
		return fmt.Errorf("subscribing to waves: %w", err)
	}
	defer sub.Close()

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The readiness check confirms the chain endpoint still answers.
	check := func(ctx context.Context) error {
		_, err := client.BlockNumber(ctx)
		return err
	}

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, check)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown:    shutdown,
		Log:         log,
		Portal:      prt,
		NS:          ns,
		Evts:        evts,
		CorsOrigins: cfg.Web.CorsOrigins,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-sub.Done():
		return errors.New("wave subscription closed")

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// newProvider constructs the configured wallet provider. A kind of none runs
// the service without a wallet, which leaves the portal read only.
func newProvider(kind string, path string, preauthorized bool, passphrase string) (wallet.Provider, error) {
	switch kind {
	case "keyfile":
		return wallet.NewKeyFile(path, preauthorized), nil

	case "keystore":
		pass := func(common.Address) (string, error) {
			if passphrase == "" {
				return "", errors.New("no keystore passphrase configured")
			}
			return passphrase, nil
		}
		return wallet.NewKeyStore(path, pass), nil

	case "none":
		return nil, nil
	}

	return nil, fmt.Errorf("unknown wallet kind %q", kind)
}
