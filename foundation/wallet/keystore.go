package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
)

// ErrNoKeys is returned when the keystore holds no accounts.
var ErrNoKeys = errors.New("keystore has no accounts")

// Passphrase supplies the passphrase used to unlock an account. It is the
// point where a user is prompted.
type Passphrase func(account common.Address) (string, error)

// KeyStore is a provider backed by an encrypted go-ethereum keystore folder.
type KeyStore struct {
	ks         *keystore.KeyStore
	passphrase Passphrase

	mu       sync.RWMutex
	unlocked map[common.Address]accounts.Account
}

// NewKeyStore opens the keystore in the specified folder.
func NewKeyStore(folder string, passphrase Passphrase) *KeyStore {
	return &KeyStore{
		ks:         keystore.NewKeyStore(folder, keystore.StandardScryptN, keystore.StandardScryptP),
		passphrase: passphrase,
		unlocked:   make(map[common.Address]accounts.Account),
	}
}

// Accounts returns the accounts that have been unlocked.
func (k *KeyStore) Accounts(ctx context.Context) ([]common.Address, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	var addrs []common.Address
	for _, acct := range k.ks.Accounts() {
		if _, exists := k.unlocked[acct.Address]; exists {
			addrs = append(addrs, acct.Address)
		}
	}

	return addrs, nil
}

// RequestAccounts unlocks the first keystore account using the passphrase
// source and returns it followed by any other unlocked accounts.
func (k *KeyStore) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	all := k.ks.Accounts()
	if len(all) == 0 {
		return nil, ErrNoKeys
	}
	acct := all[0]

	k.mu.Lock()
	_, exists := k.unlocked[acct.Address]
	k.mu.Unlock()

	if !exists {
		pass, err := k.passphrase(acct.Address)
		if err != nil {
			return nil, fmt.Errorf("reading passphrase: %w", err)
		}

		if err := k.ks.Unlock(acct, pass); err != nil {
			return nil, fmt.Errorf("unlocking %s: %w", acct.Address, err)
		}

		k.mu.Lock()
		k.unlocked[acct.Address] = acct
		k.mu.Unlock()
	}

	addrs := []common.Address{acct.Address}
	others, _ := k.Accounts(ctx)
	for _, addr := range others {
		if addr != acct.Address {
			addrs = append(addrs, addr)
		}
	}

	return addrs, nil
}

// Transactor returns a keystore backed signer for an unlocked account.
func (k *KeyStore) Transactor(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	k.mu.RLock()
	acct, exists := k.unlocked[account]
	k.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%s: %w", account, ErrNotAuthorized)
	}

	opts, err := bind.NewKeyStoreTransactorWithChainID(k.ks, acct, chainID)
	if err != nil {
		return nil, fmt.Errorf("constructing transactor: %w", err)
	}
	opts.Context = ctx

	return opts, nil
}

// Import adds a private key to the keystore encrypted with the passphrase.
func (k *KeyStore) Import(kf *KeyFile, passphrase string) (common.Address, error) {
	kf.mu.Lock()
	key, err := kf.load()
	kf.mu.Unlock()
	if err != nil {
		return common.Address{}, err
	}

	acct, err := k.ks.ImportECDSA(key, passphrase)
	if err != nil {
		return common.Address{}, fmt.Errorf("importing key: %w", err)
	}

	return acct.Address, nil
}
