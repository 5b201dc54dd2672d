package portalgrp

import (
	"time"

	"github.com/ardanlabs/waveportal/business/core/portal"
	"github.com/ardanlabs/waveportal/foundation/nameservice"
)

type wave struct {
	Address   string    `json:"address"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	TxHash    string    `json:"tx_hash,omitempty"`
}

func toWave(ns *nameservice.NameService, r portal.Record) wave {
	w := wave{
		Address:   r.Address.Hex(),
		Name:      ns.Lookup(r.Address),
		Timestamp: r.Timestamp,
		Message:   r.Message,
	}
	if r.Live() {
		w.TxHash = r.TxHash.Hex()
	}
	return w
}

func toWaves(ns *nameservice.NameService, records []portal.Record) []wave {
	waves := make([]wave, len(records))
	for i, r := range records {
		waves[i] = toWave(ns, r)
	}
	return waves
}

type state struct {
	Connected bool   `json:"connected"`
	Account   string `json:"account,omitempty"`
	Name      string `json:"name,omitempty"`
	Total     uint64 `json:"total"`
	Pending   bool   `json:"pending"`
	Draft     string `json:"draft"`
	Waves     []wave `json:"waves"`
}

func toState(ns *nameservice.NameService, snap portal.Snapshot) state {
	s := state{
		Connected: snap.Connected(),
		Total:     snap.Total,
		Pending:   snap.Pending,
		Draft:     snap.Draft,
		Waves:     toWaves(ns, snap.Records),
	}
	if snap.Account != nil {
		s.Account = snap.Account.Hex()
		s.Name = ns.Lookup(*snap.Account)
	}
	return s
}

type message struct {
	Message string `json:"message" validate:"max=1024"`
}

type account struct {
	Account string `json:"account"`
	Name    string `json:"name"`
}

type submitted struct {
	TxHash string `json:"tx_hash"`
}
