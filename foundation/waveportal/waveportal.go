// Package waveportal provides a binding to the WavePortal contract so waves
// can be read, sent and watched through any go-ethereum backend.
package waveportal

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// Event and method names as declared in the ABI.
const (
	EventNewWave        = "NewWave"
	methodGetTotalWaves = "getTotalWaves"
	methodGetAllWaves   = "getAllWaves"
	methodWave          = "wave"
)

// ErrReverted is returned when a mined transaction did not succeed.
var ErrReverted = errors.New("transaction reverted")

// Backend is the set of chain calls the binding needs. The ethclient.Client
// satisfies this interface.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Wave is a record as returned by getAllWaves. The field set and order match
// the Solidity struct so the ABI decoder can convert into it.
type Wave struct {
	Waver     common.Address
	Message   string
	Timestamp *big.Int
}

// NewWave represents a NewWave event raised by the contract.
type NewWave struct {
	From      common.Address
	Timestamp *big.Int
	Message   string
	Raw       types.Log
}

// Transaction represents a submitted state change that has not been
// confirmed yet.
type Transaction interface {
	Hash() common.Hash
	Wait(ctx context.Context) (*types.Receipt, error)
}

// =============================================================================

// Contract is a binding to a deployed WavePortal contract.
type Contract struct {
	address common.Address
	abi     abi.ABI
	backend Backend
	bound   *bind.BoundContract
}

// New constructs a binding for the contract at the specified address.
func New(address common.Address, backend Backend) (*Contract, error) {
	parsed, err := ParseABI()
	if err != nil {
		return nil, err
	}

	c := Contract{
		address: address,
		abi:     parsed,
		backend: backend,
		bound:   bind.NewBoundContract(address, parsed, backend, backend, backend),
	}

	return &c, nil
}

// ParseABI returns the parsed form of the embedded ABI.
func ParseABI() (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(ABI))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parsing abi: %w", err)
	}
	return parsed, nil
}

// Address returns the address of the contract.
func (c *Contract) Address() common.Address {
	return c.address
}

// TotalWaves calls getTotalWaves.
func (c *Contract) TotalWaves(ctx context.Context) (uint64, error) {
	var out []any
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, methodGetTotalWaves); err != nil {
		return 0, fmt.Errorf("call %s: %w", methodGetTotalWaves, err)
	}

	total := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	if !total.IsUint64() {
		return 0, fmt.Errorf("call %s: total %s out of range", methodGetTotalWaves, total)
	}

	return total.Uint64(), nil
}

// AllWaves calls getAllWaves.
func (c *Contract) AllWaves(ctx context.Context) ([]Wave, error) {
	var out []any
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, methodGetAllWaves); err != nil {
		return nil, fmt.Errorf("call %s: %w", methodGetAllWaves, err)
	}

	waves := *abi.ConvertType(out[0], new([]Wave)).(*[]Wave)
	return waves, nil
}

// Wave sends a wave transaction with the provided message. The caller owns the
// transact options which carry the signer and the gas limit.
func (c *Contract) Wave(ctx context.Context, opts *bind.TransactOpts, message string) (Transaction, error) {
	opts.Context = ctx

	tx, err := c.bound.Transact(opts, methodWave, message)
	if err != nil {
		return nil, fmt.Errorf("transact %s: %w", methodWave, err)
	}

	return &pendingTx{tx: tx, backend: c.backend}, nil
}

// WatchNewWave subscribes to NewWave events. Events are delivered on the sink
// until the returned subscription is unsubscribed or fails.
func (c *Contract) WatchNewWave(ctx context.Context, sink chan<- NewWave) (event.Subscription, error) {
	logs, sub, err := c.bound.WatchLogs(&bind.WatchOpts{Context: ctx}, EventNewWave)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", EventNewWave, err)
	}

	f := func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()

		for {
			select {
			case log := <-logs:
				evt, err := c.ParseNewWave(log)
				if err != nil {
					return err
				}

				select {
				case sink <- evt:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}

			case err := <-sub.Err():
				return err

			case <-quit:
				return nil
			}
		}
	}

	return event.NewSubscription(f), nil
}

// FilterNewWave returns the NewWave events recorded from the start block
// to the current head.
func (c *Contract) FilterNewWave(ctx context.Context, start uint64) ([]NewWave, error) {
	logs, sub, err := c.bound.FilterLogs(&bind.FilterOpts{Start: start, Context: ctx}, EventNewWave)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", EventNewWave, err)
	}
	defer sub.Unsubscribe()

	var evts []NewWave
	add := func(log types.Log) error {
		evt, err := c.ParseNewWave(log)
		if err != nil {
			return err
		}
		evts = append(evts, evt)
		return nil
	}

	for {
		select {
		case log := <-logs:
			if err := add(log); err != nil {
				return nil, err
			}

		case err := <-sub.Err():
			if err != nil {
				return nil, fmt.Errorf("filter %s: %w", EventNewWave, err)
			}

			// The producer is done, drain what is still buffered.
			for {
				select {
				case log := <-logs:
					if err := add(log); err != nil {
						return nil, err
					}
				default:
					return evts, nil
				}
			}

		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// ParseNewWave decodes a raw log into a NewWave event.
func (c *Contract) ParseNewWave(log types.Log) (NewWave, error) {
	var evt NewWave
	if err := c.bound.UnpackLog(&evt, EventNewWave, log); err != nil {
		return NewWave{}, fmt.Errorf("unpack %s: %w", EventNewWave, err)
	}
	evt.Raw = log

	return evt, nil
}

// =============================================================================

// pendingTx binds a sent transaction to the backend that can report on
// its inclusion.
type pendingTx struct {
	tx      *types.Transaction
	backend bind.DeployBackend
}

// Hash returns the transaction hash.
func (p *pendingTx) Hash() common.Hash {
	return p.tx.Hash()
}

// Wait blocks until the transaction is mined. A receipt with a failed status
// is reported as ErrReverted.
func (p *pendingTx) Wait(ctx context.Context) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, p.backend, p.tx)
	if err != nil {
		return nil, fmt.Errorf("wait mined %s: %w", p.tx.Hash(), err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("tx %s: %w", p.tx.Hash(), ErrReverted)
	}

	return receipt, nil
}
