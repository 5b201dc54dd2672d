package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeyExtension is the file extension for raw private key files.
const KeyExtension = ".ecdsa"

// KeyFile is a provider backed by a hex encoded private key file.
type KeyFile struct {
	path string

	mu         sync.Mutex
	key        *ecdsa.PrivateKey
	authorized bool
}

// NewKeyFile constructs a provider for the key file at the specified path.
// A preauthorized key file is disclosed by Accounts without a prior request.
func NewKeyFile(path string, preauthorized bool) *KeyFile {
	return &KeyFile{
		path:       path,
		authorized: preauthorized,
	}
}

// KeyPath builds the path to a key file, adding the extension when missing.
func KeyPath(folder string, name string) string {
	if !strings.HasSuffix(name, KeyExtension) {
		name += KeyExtension
	}
	return filepath.Join(folder, name)
}

// Accounts returns the key file account when it has been authorized. A
// missing key file is not an error, it means there is nothing to disclose.
func (kf *KeyFile) Accounts(ctx context.Context) ([]common.Address, error) {
	kf.mu.Lock()
	defer kf.mu.Unlock()

	if !kf.authorized {
		return nil, nil
	}

	key, err := kf.load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	return []common.Address{crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// RequestAccounts loads the key file and authorizes its account.
func (kf *KeyFile) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	kf.mu.Lock()
	defer kf.mu.Unlock()

	key, err := kf.load()
	if err != nil {
		return nil, err
	}
	kf.authorized = true

	return []common.Address{crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// Transactor returns a signer for the key file account.
func (kf *KeyFile) Transactor(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	kf.mu.Lock()
	defer kf.mu.Unlock()

	if !kf.authorized {
		return nil, ErrNotAuthorized
	}

	key, err := kf.load()
	if err != nil {
		return nil, err
	}

	if crypto.PubkeyToAddress(key.PublicKey) != account {
		return nil, fmt.Errorf("%s: %w", account, ErrNotAuthorized)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("constructing transactor: %w", err)
	}
	opts.Context = ctx

	return opts, nil
}

// load reads the private key once and caches it.
func (kf *KeyFile) load() (*ecdsa.PrivateKey, error) {
	if kf.key != nil {
		return kf.key, nil
	}

	key, err := crypto.LoadECDSA(kf.path)
	if err != nil {
		return nil, fmt.Errorf("loading key file: %w", err)
	}
	kf.key = key

	return key, nil
}
