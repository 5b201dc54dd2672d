// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/waveportal/app/services/portal/handlers/v1/portalgrp"
	"github.com/ardanlabs/waveportal/business/core/portal"
	"github.com/ardanlabs/waveportal/foundation/events"
	"github.com/ardanlabs/waveportal/foundation/nameservice"
	"github.com/ardanlabs/waveportal/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log    *zap.SugaredLogger
	Portal *portal.Portal
	NS     *nameservice.NameService
	Evts   *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pgh := portalgrp.Handlers{
		Log:    cfg.Log,
		Portal: cfg.Portal,
		NS:     cfg.NS,
		WS:     websocket.Upgrader{},
		Evts:   cfg.Evts,
	}

	app.Handle(http.MethodGet, "", "/", pgh.Index)
	app.Handle(http.MethodGet, version, "/portal", pgh.State)
	app.Handle(http.MethodGet, version, "/waves", pgh.Waves)
	app.Handle(http.MethodGet, version, "/waves/:address", pgh.Waves)
	app.Handle(http.MethodPost, version, "/waves", pgh.Submit)
	app.Handle(http.MethodPut, version, "/draft", pgh.Draft)
	app.Handle(http.MethodPost, version, "/wallet/connect", pgh.Connect)
	app.Handle(http.MethodGet, version, "/events", pgh.Events)
}
