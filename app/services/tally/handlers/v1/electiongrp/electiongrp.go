// Package electiongrp maintains the group of handlers for election access.
package electiongrp

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ardanlabs/ballot/business/core/tally"
	"github.com/ardanlabs/ballot/business/web/errs"
	"github.com/ardanlabs/ballot/foundation/blockchain/ledger"
	"github.com/ardanlabs/ballot/foundation/events"
	"github.com/ardanlabs/ballot/foundation/validate"
	"github.com/ardanlabs/ballot/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of election endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	Tally *tally.Core
	WS    websocket.Upgrader
	Evts  *events.Broker
}

// Create adds a new election to the system.
func (h Handlers) Create(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var app appNewElection
	if err := web.Decode(r, &app); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(app); err != nil {
		return err
	}

	e, err := h.Tally.Create(ctx, toCoreNewElection(app))
	if err != nil {
		return toTrusted(err)
	}

	return web.Respond(ctx, w, toAppElection(e), http.StatusCreated)
}

// Query returns the list of elections.
func (h Handlers) Query(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	elections, err := h.Tally.Query(ctx)
	if err != nil {
		return toTrusted(err)
	}

	return web.Respond(ctx, w, toAppElections(elections), http.StatusOK)
}

// QueryByID returns an election by its id.
func (h Handlers) QueryByID(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	e, err := h.Tally.QueryByID(ctx, web.Param(r, "id"))
	if err != nil {
		return toTrusted(err)
	}

	return web.Respond(ctx, w, toAppElection(e), http.StatusOK)
}

// Register adds a voter to a pending election.
func (h Handlers) Register(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var app appRegister
	if err := web.Decode(r, &app); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(app); err != nil {
		return err
	}

	e, err := h.Tally.Register(ctx, web.Param(r, "id"), app.Address)
	if err != nil {
		return toTrusted(err)
	}

	return web.Respond(ctx, w, toAppElection(e), http.StatusOK)
}

// Begin opens the election for voting.
func (h Handlers) Begin(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	e, err := h.Tally.Begin(ctx, web.Param(r, "id"))
	if err != nil {
		return toTrusted(err)
	}

	return web.Respond(ctx, w, toAppElection(e), http.StatusOK)
}

// End closes the election to further votes.
func (h Handlers) End(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	e, err := h.Tally.End(ctx, web.Param(r, "id"))
	if err != nil {
		return toTrusted(err)
	}

	return web.Respond(ctx, w, toAppElection(e), http.StatusOK)
}

// Vote casts the voter's ballot.
func (h Handlers) Vote(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var app appBallot
	if err := web.Decode(r, &app); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(app); err != nil {
		return err
	}

	h.Log.Infow("vote", "traceid", web.GetTraceID(ctx), "reg_no", app.RegistrationID, "candidate", app.Candidate)

	cast, err := h.Tally.Vote(ctx, web.Param(r, "id"), toCoreBallot(app))
	if err != nil {
		return toTrusted(err)
	}

	resp := appCast{
		ElectionID:  cast.Election.ID,
		TxHash:      cast.Transaction.Hash(),
		Transaction: cast.Transaction,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Status reports whether the address has voted.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	status, err := h.Tally.Status(ctx, web.Param(r, "id"), address)
	if err != nil {
		return toTrusted(err)
	}

	return web.Respond(ctx, w, appStatus{Address: address, Status: string(status)}, http.StatusOK)
}

// Results returns the votes held by each candidate.
func (h Handlers) Results(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	results, err := h.Tally.Results(ctx, web.Param(r, "id"))
	if err != nil {
		return toTrusted(err)
	}

	return web.Respond(ctx, w, results, http.StatusOK)
}

// Audit verifies the integrity of the election's chain.
func (h Handlers) Audit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	valid, err := h.Tally.Audit(ctx, id)
	if err != nil {
		return toTrusted(err)
	}

	return web.Respond(ctx, w, appAudit{ElectionID: id, Valid: valid}, http.StatusOK)
}

// Receipt returns the inclusion proof for a committed vote.
func (h Handlers) Receipt(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	hash := strings.ToUpper(web.Param(r, "hash"))
	if b, err := hex.DecodeString(hash); err != nil || len(b) != sha256.Size {
		return errs.NewTrustedf(http.StatusBadRequest, "receipt: %q is not a transaction hash", web.Param(r, "hash"))
	}

	receipt, err := h.Tally.Receipt(ctx, web.Param(r, "id"), hash)
	if err != nil {
		return toTrusted(err)
	}

	return web.Respond(ctx, w, receipt, http.StatusOK)
}

// Events handles a web socket to stream the events of an election.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	id := web.Param(r, "id")
	if _, err := h.Tally.QueryByID(ctx, id); err != nil {
		return toTrusted(err)
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// Subscribe before the handshake completes so the client sees every
	// event from the moment it is connected.
	ch := h.Evts.Subscribe(v.TraceID, id)
	defer h.Evts.Unsubscribe(v.TraceID)

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(evt); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// =============================================================================

// toTrusted maps the errors the tally core can return to the status code
// the client should see. Anything unknown is left as a 500.
func toTrusted(err error) error {
	switch {
	case validate.IsFieldErrors(err):
		return err

	case errors.Is(err, tally.ErrNotFound), errors.Is(err, ledger.ErrTransactionNotFound):
		return errs.NewTrusted(err, http.StatusNotFound)

	case errors.Is(err, tally.ErrInvalidStatus),
		errors.Is(err, tally.ErrAlreadyRegistered),
		errors.Is(err, tally.ErrVersionConflict):
		return errs.NewTrusted(err, http.StatusConflict)

	case errors.Is(err, tally.ErrSelfVote),
		errors.Is(err, tally.ErrInvalidCandidate),
		errors.Is(err, ledger.ErrInvalidAddress),
		ledger.IsTransactionError(err):
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return fmt.Errorf("tally: %w", err)
}
