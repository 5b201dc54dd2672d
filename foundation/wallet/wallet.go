// Package wallet provides the account and signing capability used to
// authorize transactions. A wallet may not be installed at all, which is
// modeled by a Handle without a provider.
package wallet

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// ErrProviderAbsent is returned when no wallet provider is installed.
var ErrProviderAbsent = errors.New("wallet provider absent")

// ErrNotAuthorized is returned when a signer is requested for an account
// the provider has not authorized.
var ErrNotAuthorized = errors.New("account not authorized")

// Provider represents a wallet able to disclose accounts and sign for them.
type Provider interface {

	// Accounts returns the accounts already authorized for use without
	// prompting the user.
	Accounts(ctx context.Context) ([]common.Address, error)

	// RequestAccounts asks the user to authorize accounts for use.
	RequestAccounts(ctx context.Context) ([]common.Address, error)

	// Transactor returns a signer for the specified authorized account.
	Transactor(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error)
}

// Handle is an optional wallet capability.
type Handle struct {
	provider Provider
}

// NewHandle constructs a handle for the provider. A nil provider produces a
// handle that reports the wallet as unavailable.
func NewHandle(provider Provider) *Handle {
	return &Handle{
		provider: provider,
	}
}

// IsAvailable reports whether a wallet provider is installed.
func (h *Handle) IsAvailable() bool {
	return h != nil && h.provider != nil
}

// Provider returns the installed provider or ErrProviderAbsent.
func (h *Handle) Provider() (Provider, error) {
	if !h.IsAvailable() {
		return nil, ErrProviderAbsent
	}
	return h.provider, nil
}
