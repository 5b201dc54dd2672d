// Package portalgrp maintains the group of handlers for the wave portal.
package portalgrp

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/ardanlabs/waveportal/business/core/portal"
	"github.com/ardanlabs/waveportal/business/web/errs"
	"github.com/ardanlabs/waveportal/foundation/events"
	"github.com/ardanlabs/waveportal/foundation/nameservice"
	"github.com/ardanlabs/waveportal/foundation/validate"
	"github.com/ardanlabs/waveportal/foundation/web"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

//go:embed index.html
var indexHTML string

var index = template.Must(template.New("index").Parse(indexHTML))

// statuses maps the portal errors to the status returned to the client.
var statuses = map[error]int{
	portal.ErrProviderAbsent: http.StatusServiceUnavailable,
	portal.ErrNotConnected:   http.StatusUnauthorized,
	portal.ErrNoAccounts:     http.StatusForbidden,
	portal.ErrPending:        http.StatusConflict,
}

// Handlers manages the set of wave portal endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Portal *portal.Portal
	NS     *nameservice.NameService
	WS     websocket.Upgrader
	Evts   *events.Events
}

// Index renders the portal page.
func (h Handlers) Index(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st := toState(h.NS, h.Portal.Snapshot())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	web.SetStatusCode(ctx, http.StatusOK)

	if err := index.Execute(w, st); err != nil {
		return fmt.Errorf("render index: %w", err)
	}

	return nil
}

// State returns the current state of the portal.
func (h Handlers) State(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toState(h.NS, h.Portal.Snapshot()), http.StatusOK)
}

// Waves returns the wave log, optionally only the waves of a single address.
func (h Handlers) Waves(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	records := h.Portal.Snapshot().Records

	if address := web.Param(r, "address"); address != "" {
		if err := validate.CheckAddress("address", address); err != nil {
			return err
		}

		from := common.HexToAddress(address)
		filtered := make([]portal.Record, 0, len(records))
		for _, rec := range records {
			if rec.Address == from {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	return web.Respond(ctx, w, toWaves(h.NS, records), http.StatusOK)
}

// Connect requests the wallet account and starts the session.
func (h Handlers) Connect(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	addr, err := h.Portal.Connect(ctx)
	if err != nil {
		return errs.Map(fmt.Errorf("connect: %w", err), statuses)
	}

	acct := account{
		Account: addr.Hex(),
		Name:    h.NS.Lookup(addr),
	}

	return web.Respond(ctx, w, acct, http.StatusOK)
}

// Submit sends a wave with the provided message. The response is returned as
// soon as the transaction is accepted, confirmation is reported on the feed.
func (h Handlers) Submit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var msg message
	if err := web.Decode(r, &msg); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tx, err := h.Portal.Submit(ctx, msg.Message)
	if err != nil {
		return errs.Map(fmt.Errorf("submit: %w", err), statuses)
	}

	h.Log.Infow("submit", "traceid", web.GetTraceID(ctx), "tx", tx.Hash())

	return web.Respond(ctx, w, submitted{TxHash: tx.Hash().Hex()}, http.StatusAccepted)
}

// Draft records the message currently being written.
func (h Handlers) Draft(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var msg message
	if err := web.Decode(r, &msg); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Portal.SetDraft(msg.Message)

	return web.Respond(ctx, w, nil, http.StatusNoContent)
}

// Events handles a web socket to provide portal updates to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// The connection was hijacked so record the switch for the logger.
	web.SetStatusCode(ctx, http.StatusSwitchingProtocols)

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
