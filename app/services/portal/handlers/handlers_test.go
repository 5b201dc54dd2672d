package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/waveportal/app/services/portal/handlers"
	"github.com/ardanlabs/waveportal/business/core/portal"
	"github.com/ardanlabs/waveportal/foundation/events"
	"github.com/ardanlabs/waveportal/foundation/wallet"
	"github.com/ardanlabs/waveportal/foundation/waveportal"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

var (
	kennedy = common.HexToAddress("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
	pavel   = common.HexToAddress("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
)

// =============================================================================

type pendingTx struct{}

func (pendingTx) Hash() common.Hash {
	return common.HexToHash("0xbeef")
}

func (pendingTx) Wait(ctx context.Context) (*types.Receipt, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type contract struct {
	totalErr error
}

func (c contract) TotalWaves(ctx context.Context) (uint64, error) {
	if c.totalErr != nil {
		return 0, c.totalErr
	}
	return 2, nil
}

func (contract) AllWaves(ctx context.Context) ([]waveportal.Wave, error) {
	waves := []waveportal.Wave{
		{Waver: pavel, Message: "first", Timestamp: big.NewInt(1700000000)},
		{Waver: kennedy, Message: "second", Timestamp: big.NewInt(1700000900)},
	}
	return waves, nil
}

func (contract) Wave(ctx context.Context, opts *bind.TransactOpts, message string) (waveportal.Transaction, error) {
	return pendingTx{}, nil
}

func (contract) WatchNewWave(ctx context.Context, sink chan<- waveportal.NewWave) (event.Subscription, error) {
	return event.NewSubscription(func(quit <-chan struct{}) error {
		<-quit
		return nil
	}), nil
}

type provider struct{}

func (provider) Accounts(ctx context.Context) ([]common.Address, error) {
	return nil, nil
}

func (provider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	return []common.Address{kennedy}, nil
}

func (provider) Transactor(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{From: account, Context: ctx}, nil
}

func newMux(t *testing.T, p wallet.Provider) http.Handler {
	mux, err := newMuxWith(t, p, contract{})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to mount the portal: %s", failed, err)
	}
	return mux
}

// newMuxWith builds the public mux the way the service does, returning the
// mount error alongside a mux that serves regardless.
func newMuxWith(t *testing.T, p wallet.Provider, c contract) (http.Handler, error) {
	prt, err := portal.New(portal.Config{
		Contract: c,
		Wallet:   wallet.NewHandle(p),
		ChainID:  big.NewInt(1337),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the portal: %s", failed, err)
	}
	t.Cleanup(prt.Shutdown)

	mountErr := prt.Mount(context.Background())

	mux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		Portal:   prt,
		Evts:     events.New(),
	})

	return mux, mountErr
}

func do(mux http.Handler, method string, path string, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return w
}

// =============================================================================

func Test_State(t *testing.T) {
	t.Log("Given the need to read the portal state over http.")
	{
		mux := newMux(t, provider{})

		w := do(mux, http.MethodGet, "/v1/portal", "")
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould receive a status code of 200: %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould receive a status code of 200.", success)

		var got struct {
			Connected bool   `json:"connected"`
			Total     uint64 `json:"total"`
			Waves     []struct {
				Address string `json:"address"`
				Message string `json:"message"`
			} `json:"waves"`
		}
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the response: %s", failed, err)
		}

		if got.Connected || got.Total != 2 || len(got.Waves) != 2 {
			t.Fatalf("\t%s\tShould see the mounted state: %+v", failed, got)
		}
		t.Logf("\t%s\tShould see the mounted state.", success)

		if got.Waves[0].Message != "first" || got.Waves[1].Address != kennedy.Hex() {
			t.Fatalf("\t%s\tShould see the waves in contract order: %+v", failed, got.Waves)
		}
		t.Logf("\t%s\tShould see the waves in contract order.", success)

		w = do(mux, http.MethodGet, "/", "")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Total waves") {
			t.Fatalf("\t%s\tShould render the index page: %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould render the index page.", success)
	}
}

func Test_Waves(t *testing.T) {
	mux := newMux(t, provider{})

	tt := []struct {
		name   string
		path   string
		status int
		count  int
	}{
		{"all", "/v1/waves", http.StatusOK, 2},
		{"filtered", "/v1/waves/" + pavel.Hex(), http.StatusOK, 1},
		{"unknown", "/v1/waves/0x0000000000000000000000000000000000000001", http.StatusOK, 0},
		{"invalid", "/v1/waves/nope", http.StatusBadRequest, 0},
	}

	t.Log("Given the need to list the waves over http.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling the %s request.", testID, tst.name)
				{
					w := do(mux, http.MethodGet, tst.path, "")
					if w.Code != tst.status {
						t.Fatalf("\t%s\tTest %d:\tShould receive a status code of %d: %d", failed, testID, tst.status, w.Code)
					}
					t.Logf("\t%s\tTest %d:\tShould receive a status code of %d.", success, testID, tst.status)

					if tst.status != http.StatusOK {
						return
					}

					var waves []map[string]any
					if err := json.NewDecoder(w.Body).Decode(&waves); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to decode the response: %s", failed, testID, err)
					}

					if len(waves) != tst.count {
						t.Fatalf("\t%s\tTest %d:\tShould get %d waves: %d", failed, testID, tst.count, len(waves))
					}
					t.Logf("\t%s\tTest %d:\tShould get %d waves.", success, testID, tst.count)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Submit(t *testing.T) {
	t.Log("Given the need to wave over http.")
	{
		mux := newMux(t, provider{})

		t.Logf("\tTest 0:\tWhen waving before connecting.")
		{
			w := do(mux, http.MethodPost, "/v1/waves", `{"message":"hi"}`)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("\t%s\tTest 0:\tShould receive a status code of 401: %d", failed, w.Code)
			}
			t.Logf("\t%s\tTest 0:\tShould receive a status code of 401.", success)
		}

		t.Logf("\tTest 1:\tWhen connecting the wallet.")
		{
			w := do(mux, http.MethodPost, "/v1/wallet/connect", "")
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 1:\tShould receive a status code of 200: %d", failed, w.Code)
			}

			var acct struct {
				Account string `json:"account"`
			}
			if err := json.NewDecoder(w.Body).Decode(&acct); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to decode the response: %s", failed, err)
			}

			if acct.Account != kennedy.Hex() {
				t.Fatalf("\t%s\tTest 1:\tShould get the first account: %s", failed, acct.Account)
			}
			t.Logf("\t%s\tTest 1:\tShould get the first account.", success)
		}

		t.Logf("\tTest 2:\tWhen sending a payload with an unknown field.")
		{
			w := do(mux, http.MethodPost, "/v1/waves", `{"text":"hi"}`)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest 2:\tShould receive a status code of 400: %d", failed, w.Code)
			}
			t.Logf("\t%s\tTest 2:\tShould receive a status code of 400.", success)
		}

		t.Logf("\tTest 3:\tWhen waving while connected.")
		{
			w := do(mux, http.MethodPost, "/v1/waves", `{"message":"hi"}`)
			if w.Code != http.StatusAccepted {
				t.Fatalf("\t%s\tTest 3:\tShould receive a status code of 202: %d", failed, w.Code)
			}

			var sub struct {
				TxHash string `json:"tx_hash"`
			}
			if err := json.NewDecoder(w.Body).Decode(&sub); err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould be able to decode the response: %s", failed, err)
			}

			if sub.TxHash != common.HexToHash("0xbeef").Hex() {
				t.Fatalf("\t%s\tTest 3:\tShould get the transaction hash: %s", failed, sub.TxHash)
			}
			t.Logf("\t%s\tTest 3:\tShould get the transaction hash.", success)
		}

		t.Logf("\tTest 4:\tWhen waving while a wave is pending.")
		{
			w := do(mux, http.MethodPost, "/v1/waves", `{"message":"again"}`)
			if w.Code != http.StatusConflict {
				t.Fatalf("\t%s\tTest 4:\tShould receive a status code of 409: %d", failed, w.Code)
			}
			t.Logf("\t%s\tTest 4:\tShould receive a status code of 409.", success)
		}
	}
}

func Test_NoWallet(t *testing.T) {
	t.Log("Given the need to report a missing wallet over http.")
	{
		mux := newMux(t, nil)

		paths := []struct {
			method string
			path   string
			body   string
		}{
			{http.MethodPost, "/v1/wallet/connect", ""},
			{http.MethodPost, "/v1/waves", `{"message":"hi"}`},
		}

		for testID, p := range paths {
			t.Logf("\tTest %d:\tWhen calling %s %s.", testID, p.method, p.path)
			{
				w := do(mux, p.method, p.path, p.body)
				if w.Code != http.StatusServiceUnavailable {
					t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 503: %d", failed, testID, w.Code)
				}
				t.Logf("\t%s\tTest %d:\tShould receive a status code of 503.", success, testID)
			}
		}
	}
}

func Test_Draft(t *testing.T) {
	t.Log("Given the need to keep the draft message.")
	{
		mux := newMux(t, provider{})

		w := do(mux, http.MethodPut, "/v1/draft", `{"message":"work in progress"}`)
		if w.Code != http.StatusNoContent {
			t.Fatalf("\t%s\tShould receive a status code of 204: %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould receive a status code of 204.", success)

		w = do(mux, http.MethodGet, "/v1/portal", "")

		var got struct {
			Draft string `json:"draft"`
		}
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the response: %s", failed, err)
		}

		if got.Draft != "work in progress" {
			t.Fatalf("\t%s\tShould see the draft in the state: %q", failed, got.Draft)
		}
		t.Logf("\t%s\tShould see the draft in the state.", success)
	}
}

func Test_MountFailure(t *testing.T) {
	t.Log("Given the need to serve when the startup read fails.")
	{
		mux, err := newMuxWith(t, provider{}, contract{totalErr: errors.New("execution reverted")})
		if err == nil {
			t.Fatalf("\t%s\tShould get the mount error.", failed)
		}
		t.Logf("\t%s\tShould get the mount error.", success)

		w := do(mux, http.MethodGet, "/v1/portal", "")
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould receive a status code of 200: %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould receive a status code of 200.", success)

		var got struct {
			Total uint64            `json:"total"`
			Waves []json.RawMessage `json:"waves"`
		}
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the response: %s", failed, err)
		}

		if got.Total != 0 || len(got.Waves) != 0 {
			t.Fatalf("\t%s\tShould serve an empty portal: %+v", failed, got)
		}
		t.Logf("\t%s\tShould serve an empty portal.", success)

		w = do(mux, http.MethodPost, "/v1/wallet/connect", "")
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould still be able to connect: %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould still be able to connect.", success)
	}
}
