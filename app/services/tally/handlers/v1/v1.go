// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/ballot/app/services/tally/handlers/v1/electiongrp"
	"github.com/ardanlabs/ballot/business/core/tally"
	"github.com/ardanlabs/ballot/foundation/events"
	"github.com/ardanlabs/ballot/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	Tally *tally.Core
	Evts  *events.Broker
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	egh := electiongrp.Handlers{
		Log:   cfg.Log,
		Tally: cfg.Tally,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodPost, version, "/elections", egh.Create)
	app.Handle(http.MethodGet, version, "/elections", egh.Query)
	app.Handle(http.MethodGet, version, "/elections/:id", egh.QueryByID)
	app.Handle(http.MethodPost, version, "/elections/:id/register", egh.Register)
	app.Handle(http.MethodPost, version, "/elections/:id/begin", egh.Begin)
	app.Handle(http.MethodPost, version, "/elections/:id/end", egh.End)
	app.Handle(http.MethodPost, version, "/elections/:id/vote", egh.Vote)
	app.Handle(http.MethodGet, version, "/elections/:id/status/:address", egh.Status)
	app.Handle(http.MethodGet, version, "/elections/:id/results", egh.Results)
	app.Handle(http.MethodGet, version, "/elections/:id/audit", egh.Audit)
	app.Handle(http.MethodGet, version, "/elections/:id/receipts/:hash", egh.Receipt)
	app.Handle(http.MethodGet, version, "/elections/:id/events", egh.Events)
}
