package portal

import (
	"encoding/binary"
	"math/big"
	"time"

	"github.com/ardanlabs/waveportal/foundation/waveportal"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Set of update kinds published to the feed.
const (
	KindAccount = "account"
	KindTotal   = "total"
	KindWave    = "wave"
	KindLoad    = "load"
	KindPending = "pending"
	KindDraft   = "draft"
)

// Record represents a single wave shown in the log.
type Record struct {
	Address   common.Address `json:"address"`
	Timestamp time.Time      `json:"timestamp"`
	Message   string         `json:"message"`
	TxHash    common.Hash    `json:"tx_hash"`
}

// Key returns the identity of the wave used to drop duplicates. The bulk read
// carries no transaction data so the identity is built from the content.
func (r Record) Key() common.Hash {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(r.Timestamp.Unix()))

	return crypto.Keccak256Hash(r.Address.Bytes(), ts[:], []byte(r.Message))
}

// Live reports whether the record arrived through the event subscription.
func (r Record) Live() bool {
	return r.TxHash != (common.Hash{})
}

func newRecord(addr common.Address, ts *big.Int, message string) Record {
	var unix int64
	if ts != nil {
		unix = ts.Int64()
	}

	return Record{
		Address:   addr,
		Timestamp: time.Unix(unix, 0).UTC(),
		Message:   message,
	}
}

func toRecord(w waveportal.Wave) Record {
	return newRecord(w.Waver, w.Timestamp, w.Message)
}

func eventToRecord(evt waveportal.NewWave) Record {
	r := newRecord(evt.From, evt.Timestamp, evt.Message)
	r.TxHash = evt.Raw.TxHash
	return r
}

// Snapshot is a copy of the portal state.
type Snapshot struct {
	Account *common.Address `json:"account"`
	Total   uint64          `json:"total"`
	Pending bool            `json:"pending"`
	Draft   string          `json:"draft"`
	Records []Record        `json:"waves"`
}

// Connected reports whether a wallet account is in session.
func (s Snapshot) Connected() bool {
	return s.Account != nil
}

// Update describes a change of the portal state.
type Update struct {
	Kind    string          `json:"kind"`
	Account *common.Address `json:"account,omitempty"`
	Total   uint64          `json:"total"`
	Pending bool            `json:"pending"`
	Draft   string          `json:"draft"`
	Record  *Record         `json:"record,omitempty"`
}
