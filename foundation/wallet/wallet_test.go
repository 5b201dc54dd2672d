package wallet_test

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/waveportal/foundation/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	from     = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
)

func writeKey(t *testing.T) string {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to generate a private key: %s", failed, err)
	}

	path := wallet.KeyPath(t.TempDir(), "kennedy")
	if err := crypto.SaveECDSA(path, pk); err != nil {
		t.Fatalf("\t%s\tShould be able to save the private key: %s", failed, err)
	}

	return path
}

// =============================================================================

func Test_Handle(t *testing.T) {
	t.Log("Given the need to detect an installed wallet.")
	{
		t.Logf("\tTest 0:\tWhen no provider is installed.")
		{
			h := wallet.NewHandle(nil)
			if h.IsAvailable() {
				t.Fatalf("\t%s\tTest 0:\tShould report the wallet as unavailable.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould report the wallet as unavailable.", success)

			if _, err := h.Provider(); !errors.Is(err, wallet.ErrProviderAbsent) {
				t.Fatalf("\t%s\tTest 0:\tShould get ErrProviderAbsent: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould get ErrProviderAbsent.", success)

			var nilHandle *wallet.Handle
			if nilHandle.IsAvailable() {
				t.Fatalf("\t%s\tTest 0:\tShould treat a nil handle as unavailable.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould treat a nil handle as unavailable.", success)
		}

		t.Logf("\tTest 1:\tWhen a provider is installed.")
		{
			h := wallet.NewHandle(wallet.NewKeyFile("missing.ecdsa", false))
			if !h.IsAvailable() {
				t.Fatalf("\t%s\tTest 1:\tShould report the wallet as available.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould report the wallet as available.", success)
		}
	}
}

func Test_KeyFile(t *testing.T) {
	path := writeKey(t)
	ctx := context.Background()
	account := common.HexToAddress(from)

	t.Log("Given the need to use a key file as a wallet.")
	{
		t.Logf("\tTest 0:\tWhen the key file was not authorized.")
		{
			kf := wallet.NewKeyFile(path, false)

			accts, err := kf.Accounts(ctx)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to query silently: %s", failed, err)
			}
			if len(accts) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould not disclose any account: %v", failed, accts)
			}
			t.Logf("\t%s\tTest 0:\tShould not disclose any account.", success)

			if _, err := kf.Transactor(ctx, account, big.NewInt(1337)); !errors.Is(err, wallet.ErrNotAuthorized) {
				t.Fatalf("\t%s\tTest 0:\tShould refuse to sign: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould refuse to sign.", success)

			accts, err = kf.RequestAccounts(ctx)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to request accounts: %s", failed, err)
			}
			if len(accts) != 1 || accts[0] != account {
				t.Logf("\t%s\tTest 0:\tgot: %v", failed, accts)
				t.Logf("\t%s\tTest 0:\texp: %s", failed, account)
				t.Fatalf("\t%s\tTest 0:\tShould get back the key file account.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get back the key file account.", success)

			accts, err = kf.Accounts(ctx)
			if err != nil || len(accts) != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould disclose the account once authorized: %v %v", failed, accts, err)
			}
			t.Logf("\t%s\tTest 0:\tShould disclose the account once authorized.", success)

			opts, err := kf.Transactor(ctx, account, big.NewInt(1337))
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to build a signer: %s", failed, err)
			}
			if opts.From != account {
				t.Fatalf("\t%s\tTest 0:\tShould sign from the key file account: %s", failed, opts.From)
			}
			t.Logf("\t%s\tTest 0:\tShould sign from the key file account.", success)
		}

		t.Logf("\tTest 1:\tWhen the key file is preauthorized.")
		{
			kf := wallet.NewKeyFile(path, true)

			accts, err := kf.Accounts(ctx)
			if err != nil || len(accts) != 1 || accts[0] != account {
				t.Fatalf("\t%s\tTest 1:\tShould disclose the account silently: %v %v", failed, accts, err)
			}
			t.Logf("\t%s\tTest 1:\tShould disclose the account silently.", success)
		}

		t.Logf("\tTest 2:\tWhen the key file does not exist.")
		{
			kf := wallet.NewKeyFile(filepath.Join(t.TempDir(), "nobody.ecdsa"), true)

			accts, err := kf.Accounts(ctx)
			if err != nil || len(accts) != 0 {
				t.Fatalf("\t%s\tTest 2:\tShould disclose nothing without error: %v %v", failed, accts, err)
			}
			t.Logf("\t%s\tTest 2:\tShould disclose nothing without error.", success)

			if _, err := kf.RequestAccounts(ctx); err == nil {
				t.Fatalf("\t%s\tTest 2:\tShould fail an explicit request.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould fail an explicit request.", success)
		}
	}
}

func Test_KeyStore(t *testing.T) {
	path := writeKey(t)
	ctx := context.Background()
	account := common.HexToAddress(from)

	const pass = "ardan"

	t.Log("Given the need to use an encrypted keystore as a wallet.")
	{
		t.Logf("\tTest 0:\tWhen the keystore is empty.")
		{
			ks := wallet.NewKeyStore(t.TempDir(), func(common.Address) (string, error) { return pass, nil })

			if _, err := ks.RequestAccounts(ctx); !errors.Is(err, wallet.ErrNoKeys) {
				t.Fatalf("\t%s\tTest 0:\tShould get ErrNoKeys: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould get ErrNoKeys.", success)
		}

		t.Logf("\tTest 1:\tWhen the keystore holds an imported key.")
		{
			var prompts int
			ks := wallet.NewKeyStore(t.TempDir(), func(common.Address) (string, error) {
				prompts++
				return pass, nil
			})

			addr, err := ks.Import(wallet.NewKeyFile(path, false), pass)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to import the key: %s", failed, err)
			}
			if addr != account {
				t.Fatalf("\t%s\tTest 1:\tShould import the right account: %s", failed, addr)
			}
			t.Logf("\t%s\tTest 1:\tShould be able to import the key.", success)

			accts, _ := ks.Accounts(ctx)
			if len(accts) != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould not disclose a locked account.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould not disclose a locked account.", success)

			accts, err = ks.RequestAccounts(ctx)
			if err != nil || len(accts) == 0 || accts[0] != account {
				t.Fatalf("\t%s\tTest 1:\tShould unlock the account: %v %v", failed, accts, err)
			}
			t.Logf("\t%s\tTest 1:\tShould unlock the account.", success)

			if _, err := ks.RequestAccounts(ctx); err != nil || prompts != 1 {
				t.Fatalf("\t%s\tTest 1:\tShould not prompt twice: %d %v", failed, prompts, err)
			}
			t.Logf("\t%s\tTest 1:\tShould not prompt twice.", success)

			opts, err := ks.Transactor(ctx, account, big.NewInt(1337))
			if err != nil || opts.From != account {
				t.Fatalf("\t%s\tTest 1:\tShould be able to build a signer: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould be able to build a signer.", success)
		}
	}
}
