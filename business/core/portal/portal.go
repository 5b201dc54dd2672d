// Package portal is the core API for the wave portal client. It keeps the
// wallet session, the wave counter and the wave log in sync with the chain
// and runs the transaction lifecycle for new waves.
package portal

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ardanlabs/waveportal/foundation/retry"
	"github.com/ardanlabs/waveportal/foundation/wallet"
	"github.com/ardanlabs/waveportal/foundation/waveportal"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
)

// DefaultGasLimit is the gas limit attached to every wave transaction.
const DefaultGasLimit = 300_000

// Set of error variables for the portal lifecycle.
var (
	ErrProviderAbsent = wallet.ErrProviderAbsent
	ErrNotConnected   = errors.New("wallet not connected")
	ErrNoAccounts     = errors.New("wallet returned no accounts")
	ErrPending        = errors.New("transaction already pending")
)

// EventHandler defines a function that is called when events
// occur in the processing of the portal.
type EventHandler func(v string, args ...any)

// Contract represents the behavior required from the WavePortal binding.
type Contract interface {
	TotalWaves(ctx context.Context) (uint64, error)
	AllWaves(ctx context.Context) ([]waveportal.Wave, error)
	Wave(ctx context.Context, opts *bind.TransactOpts, message string) (waveportal.Transaction, error)
	WatchNewWave(ctx context.Context, sink chan<- waveportal.NewWave) (event.Subscription, error)
}

// =============================================================================

// Config represents the configuration required to start the portal.
type Config struct {
	Contract  Contract
	Wallet    *wallet.Handle
	ChainID   *big.Int
	GasLimit  uint64
	Retry     retry.Policy
	EvHandler EventHandler
	Feed      func(Update)
}

// Portal manages the client side state of the wave portal.
type Portal struct {
	contract  Contract
	wallet    *wallet.Handle
	chainID   *big.Int
	gasLimit  uint64
	retry     retry.Policy
	evHandler EventHandler
	feed      func(Update)

	mu      sync.RWMutex
	account *common.Address
	total   uint64
	records []Record
	keys    map[common.Hash]struct{}
	pending bool
	draft   string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a portal for the configured contract and wallet.
func New(cfg Config) (*Portal, error) {
	if cfg.Contract == nil {
		return nil, errors.New("contract binding is required")
	}

	if cfg.ChainID == nil {
		return nil, errors.New("chain id is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	feed := func(Update) {}
	if cfg.Feed != nil {
		feed = cfg.Feed
	}

	gasLimit := cfg.GasLimit
	if gasLimit == 0 {
		gasLimit = DefaultGasLimit
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := Portal{
		contract:  cfg.Contract,
		wallet:    cfg.Wallet,
		chainID:   cfg.ChainID,
		gasLimit:  gasLimit,
		retry:     cfg.Retry,
		evHandler: ev,
		feed:      feed,
		keys:      make(map[common.Hash]struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}

	return &p, nil
}

// Shutdown cancels the confirmations still in flight and waits for them
// to return.
func (p *Portal) Shutdown() {
	p.evHandler("portal: shutdown: started")
	defer p.evHandler("portal: shutdown: completed")

	p.cancel()
	p.wg.Wait()
}

// Snapshot returns a copy of the current state.
func (p *Portal) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.snapshot()
}

// SetDraft records the message currently typed by the user.
func (p *Portal) SetDraft(message string) {
	p.mu.Lock()
	p.draft = message
	p.mu.Unlock()

	p.publish(KindDraft, nil)
}

// =============================================================================

// snapshot builds a copy of the state. The caller must hold a lock.
func (p *Portal) snapshot() Snapshot {
	s := Snapshot{
		Total:   p.total,
		Pending: p.pending,
		Draft:   p.draft,
		Records: make([]Record, len(p.records)),
	}
	copy(s.Records, p.records)

	if p.account != nil {
		acct := *p.account
		s.Account = &acct
	}

	return s
}

// publish sends an update describing the current state to the feed. It must
// be called without holding the lock.
func (p *Portal) publish(kind string, rec *Record) {
	p.mu.RLock()
	u := Update{
		Kind:    kind,
		Total:   p.total,
		Pending: p.pending,
		Draft:   p.draft,
		Record:  rec,
	}
	if p.account != nil {
		acct := *p.account
		u.Account = &acct
	}
	p.mu.RUnlock()

	p.feed(u)
}
