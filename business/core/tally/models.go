package tally

import (
	"time"

	"github.com/ardanlabs/ballot/foundation/blockchain/ledger"
)

// Status represents where an election is in its lifecycle.
type Status string

// Set of election statuses.
const (
	StatusPending Status = "PENDING"
	StatusOngoing Status = "ONGOING"
	StatusEnded   Status = "ENDED"
)

// VoteStatus reports whether a voter has cast their vote.
type VoteStatus string

// Set of vote statuses.
const (
	Voted    VoteStatus = "VOTED"
	NotVoted VoteStatus = "NOT_VOTED"
)

// Election represents an election and the serialized ledger recording its
// votes. Version increases on every stored update.
type Election struct {
	ID          string
	Title       string
	Candidates  []string
	Voters      []string
	Status      Status
	Chain       string
	Version     int
	DateCreated time.Time
	DateUpdated time.Time
}

// NewElection contains the information needed to create a new election.
type NewElection struct {
	Title      string   `json:"title" validate:"required"`
	Candidates []string `json:"candidates" validate:"required,min=2,unique,dive,required"`
}

// Ballot contains the voter's credentials and their choice. The signing key
// is derived from the credentials and never stored.
type Ballot struct {
	RegistrationID string `json:"reg_no" validate:"required"`
	Password       string `json:"password" validate:"required"`
	Candidate      string `json:"candidate" validate:"required"`
}

// Result is the number of units a candidate holds on the committed chain.
type Result struct {
	Candidate string `json:"candidate"`
	Votes     int64  `json:"votes"`
}

// Cast is returned for an accepted vote.
type Cast struct {
	Election    Election
	Transaction ledger.Transaction
}
