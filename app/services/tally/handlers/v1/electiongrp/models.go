package electiongrp

import (
	"time"

	"github.com/ardanlabs/ballot/business/core/tally"
	"github.com/ardanlabs/ballot/foundation/blockchain/ledger"
)

type appElection struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Candidates  []string `json:"candidates"`
	Voters      []string `json:"voters"`
	Status      string   `json:"status"`
	Version     int      `json:"version"`
	DateCreated string   `json:"date_created"`
	DateUpdated string   `json:"date_updated"`
}

func toAppElection(e tally.Election) appElection {
	return appElection{
		ID:          e.ID,
		Title:       e.Title,
		Candidates:  e.Candidates,
		Voters:      e.Voters,
		Status:      string(e.Status),
		Version:     e.Version,
		DateCreated: e.DateCreated.Format(time.RFC3339),
		DateUpdated: e.DateUpdated.Format(time.RFC3339),
	}
}

func toAppElections(elections []tally.Election) []appElection {
	items := make([]appElection, len(elections))
	for i, e := range elections {
		items[i] = toAppElection(e)
	}
	return items
}

type appNewElection struct {
	Title      string   `json:"title" validate:"required"`
	Candidates []string `json:"candidates" validate:"required,min=2,unique,dive,base64"`
}

func toCoreNewElection(app appNewElection) tally.NewElection {
	return tally.NewElection{
		Title:      app.Title,
		Candidates: app.Candidates,
	}
}

type appRegister struct {
	Address string `json:"address" validate:"required,base64"`
}

type appBallot struct {
	RegistrationID string `json:"reg_no" validate:"required"`
	Password       string `json:"password" validate:"required"`
	Candidate      string `json:"candidate" validate:"required,base64"`
}

func toCoreBallot(app appBallot) tally.Ballot {
	return tally.Ballot{
		RegistrationID: app.RegistrationID,
		Password:       app.Password,
		Candidate:      app.Candidate,
	}
}

type appCast struct {
	ElectionID  string             `json:"election_id"`
	TxHash      string             `json:"tx_hash"`
	Transaction ledger.Transaction `json:"transaction"`
}

type appStatus struct {
	Address string `json:"address"`
	Status  string `json:"status"`
}

type appAudit struct {
	ElectionID string `json:"election_id"`
	Valid      bool   `json:"valid"`
}
