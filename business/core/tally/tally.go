// Package tally provides the business logic for running elections on top of
// the vote ledger. It owns the serialized chain of each election and is the
// only place the chain is loaded, mutated and stored.
package tally

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ardanlabs/ballot/business/sys/metrics"
	"github.com/ardanlabs/ballot/foundation/blockchain/keys"
	"github.com/ardanlabs/ballot/foundation/blockchain/ledger"
	"github.com/ardanlabs/ballot/foundation/validate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound          = errors.New("election not found")
	ErrVersionConflict   = errors.New("election was updated by another request")
	ErrInvalidStatus     = errors.New("election is not in the required status")
	ErrInvalidCandidate  = errors.New("address is not a candidate in this election")
	ErrSelfVote          = errors.New("cannot vote for yourself")
	ErrAlreadyRegistered = errors.New("address is already registered")
)

// maxAttempts is how many times an update is retried after losing a race
// with another writer of the same election.
const maxAttempts = 3

// Storer interface declares the behavior this package needs to persist and
// retrieve elections. Update must fail with ErrVersionConflict when the
// stored version differs from the version of the provided election, and
// store the election with the version incremented otherwise.
type Storer interface {
	Create(ctx context.Context, e Election) error
	Update(ctx context.Context, e Election) error
	QueryByID(ctx context.Context, id string) (Election, error)
	Query(ctx context.Context) ([]Election, error)
}

// EventHandler is called after an election changed. Kind is the name of the
// operation that made the change.
type EventHandler func(electionID string, kind string, msg string)

// Core manages the set of APIs for election access.
type Core struct {
	log       *zap.SugaredLogger
	storer    Storer
	evHandler EventHandler
}

// NewCore constructs a core for election api access. The event handler is
// optional.
func NewCore(log *zap.SugaredLogger, storer Storer, evHandler EventHandler) *Core {
	if evHandler == nil {
		evHandler = func(string, string, string) {}
	}

	return &Core{
		log:       log,
		storer:    storer,
		evHandler: evHandler,
	}
}

// Create adds a new election in the pending state. The candidates start out
// as the only registered voters.
func (c *Core) Create(ctx context.Context, ne NewElection) (Election, error) {
	if err := validate.Check(ne); err != nil {
		return Election{}, fmt.Errorf("validating data: %w", err)
	}

	now := time.Now().UTC()

	e := Election{
		ID:          uuid.NewString(),
		Title:       ne.Title,
		Candidates:  slices.Clone(ne.Candidates),
		Voters:      slices.Clone(ne.Candidates),
		Status:      StatusPending,
		DateCreated: now,
		DateUpdated: now,
	}

	if err := c.storer.Create(ctx, e); err != nil {
		return Election{}, fmt.Errorf("create: %w", err)
	}

	c.log.Infow("create", "status", "election created", "id", e.ID, "candidates", len(e.Candidates))
	c.evHandler(e.ID, "create", fmt.Sprintf("election %q created", e.Title))

	return e, nil
}

// Register adds the address to the voters of a pending election.
func (c *Core) Register(ctx context.Context, id string, address string) (Election, error) {
	return c.update(ctx, "register", id, func(e *Election) error {
		if e.Status != StatusPending {
			return fmt.Errorf("register: status[%s]: %w", e.Status, ErrInvalidStatus)
		}

		if slices.Contains(e.Voters, address) {
			return ErrAlreadyRegistered
		}

		e.Voters = append(e.Voters, address)
		return nil
	})
}

// Begin moves a pending election to ongoing and creates its ledger from the
// registered voters.
func (c *Core) Begin(ctx context.Context, id string) (Election, error) {
	return c.update(ctx, "begin", id, func(e *Election) error {
		if e.Status != StatusPending {
			return fmt.Errorf("begin: status[%s]: %w", e.Status, ErrInvalidStatus)
		}

		l, err := ledger.New(e.Voters)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}

		chain, err := l.Serialize()
		if err != nil {
			return err
		}

		e.Chain = chain
		e.Status = StatusOngoing
		return nil
	})
}

// End closes an ongoing election to further votes.
func (c *Core) End(ctx context.Context, id string) (Election, error) {
	return c.update(ctx, "end", id, func(e *Election) error {
		if e.Status != StatusOngoing {
			return fmt.Errorf("end: status[%s]: %w", e.Status, ErrInvalidStatus)
		}

		e.Status = StatusEnded
		return nil
	})
}

// Vote derives the voter's keys from their credentials, signs a one unit
// transaction to the candidate and commits it to the election's ledger.
func (c *Core) Vote(ctx context.Context, id string, b Ballot) (Cast, error) {
	if err := validate.Check(b); err != nil {
		return Cast{}, fmt.Errorf("validating data: %w", err)
	}

	privateKey := keys.Derive(b.Password, b.RegistrationID)
	address := keys.Address(privateKey)

	var tx ledger.Transaction
	var committed int
	e, err := c.update(ctx, "vote", id, func(e *Election) error {
		if e.Status != StatusOngoing {
			return fmt.Errorf("vote: status[%s]: %w", e.Status, ErrInvalidStatus)
		}

		if b.Candidate == address {
			return ErrSelfVote
		}

		if !slices.Contains(e.Candidates, b.Candidate) {
			return ErrInvalidCandidate
		}

		l, err := ledger.FromString(e.Chain)
		if err != nil {
			return fmt.Errorf("vote: loading ledger: %w", err)
		}

		tx = ledger.NewTransaction(address, b.Candidate, 1)
		if err := tx.Sign(privateKey); err != nil {
			return fmt.Errorf("vote: %w", err)
		}

		if err := l.AddTransaction(tx); err != nil {
			return fmt.Errorf("vote: %w", err)
		}

		// Serializing commits the pending vote into its own block.
		blocks := len(l.Blocks())
		chain, err := l.Serialize()
		if err != nil {
			return err
		}
		committed = len(l.Blocks()) - blocks

		e.Chain = chain
		return nil
	})
	if err != nil {
		if ledger.IsTransactionError(err) {
			metrics.ObserveAdmission(err)
		}
		return Cast{}, err
	}

	metrics.ObserveAdmission(nil)
	metrics.AddBlocks(committed)

	c.log.Infow("vote", "status", "vote committed", "id", id, "tx", tx.Hash())
	c.evHandler(id, "vote", fmt.Sprintf("vote %s committed", tx.Hash()))

	return Cast{Election: e, Transaction: tx}, nil
}

// QueryByID gets the specified election from the database.
func (c *Core) QueryByID(ctx context.Context, id string) (Election, error) {
	e, err := c.storer.QueryByID(ctx, id)
	if err != nil {
		return Election{}, fmt.Errorf("query: id[%s]: %w", id, err)
	}

	return e, nil
}

// Query retrieves the elections from the database.
func (c *Core) Query(ctx context.Context) ([]Election, error) {
	elections, err := c.storer.Query(ctx)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return elections, nil
}

// Status reports whether the address has spent its vote. It reads the
// committed chain only.
func (c *Core) Status(ctx context.Context, id string, address string) (VoteStatus, error) {
	e, err := c.QueryByID(ctx, id)
	if err != nil {
		return "", err
	}

	if e.Status != StatusOngoing {
		return NotVoted, nil
	}

	l, err := ledger.FromString(e.Chain)
	if err != nil {
		return "", fmt.Errorf("status: loading ledger: %w", err)
	}

	if l.Balance(address) == 0 {
		return Voted, nil
	}

	return NotVoted, nil
}

// Results returns the balance of every candidate in candidate order.
func (c *Core) Results(ctx context.Context, id string) ([]Result, error) {
	e, l, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(e.Candidates))
	for i, candidate := range e.Candidates {
		results[i] = Result{
			Candidate: candidate,
			Votes:     l.Balance(candidate),
		}
	}

	return results, nil
}

// Audit verifies the election's chain against its registered voters.
func (c *Core) Audit(ctx context.Context, id string) (bool, error) {
	e, l, err := c.load(ctx, id)
	if err != nil {
		return false, err
	}

	valid := l.IsValid(e.Voters)
	if !valid {
		c.log.Errorw("audit", "status", "chain failed audit", "id", id)
	}

	return valid, nil
}

// Receipt returns the proof the transaction was committed to the election's
// chain.
func (c *Core) Receipt(ctx context.Context, id string, txHash string) (ledger.Receipt, error) {
	_, l, err := c.load(ctx, id)
	if err != nil {
		return ledger.Receipt{}, err
	}

	r, err := l.Receipt(txHash)
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("receipt: hash[%s]: %w", txHash, err)
	}

	return r, nil
}

// =============================================================================

// load retrieves an election that has a ledger along with the ledger.
func (c *Core) load(ctx context.Context, id string) (Election, *ledger.Ledger, error) {
	e, err := c.QueryByID(ctx, id)
	if err != nil {
		return Election{}, nil, err
	}

	if e.Status == StatusPending {
		return Election{}, nil, fmt.Errorf("load: status[%s]: %w", e.Status, ErrInvalidStatus)
	}

	l, err := ledger.FromString(e.Chain)
	if err != nil {
		return Election{}, nil, fmt.Errorf("load: id[%s]: %w", id, err)
	}

	return e, l, nil
}

// update performs a read-modify-write of the election. When another writer
// stored the election first, the election is reloaded and fn is applied
// again to the fresh copy.
func (c *Core) update(ctx context.Context, op string, id string, fn func(e *Election) error) (Election, error) {
	for attempt := 1; ; attempt++ {
		e, err := c.storer.QueryByID(ctx, id)
		if err != nil {
			return Election{}, fmt.Errorf("%s: id[%s]: %w", op, id, err)
		}

		if err := fn(&e); err != nil {
			return Election{}, err
		}

		e.DateUpdated = time.Now().UTC()

		err = c.storer.Update(ctx, e)
		switch {
		case err == nil:
			e.Version++
			c.log.Infow(op, "status", "election updated", "id", id, "version", e.Version)
			if op != "vote" {
				c.evHandler(id, op, fmt.Sprintf("election status %s", e.Status))
			}
			return e, nil

		case errors.Is(err, ErrVersionConflict) && attempt < maxAttempts:
			c.log.Infow(op, "status", "version conflict, retrying", "id", id, "attempt", attempt)
			continue

		default:
			return Election{}, fmt.Errorf("%s: id[%s]: %w", op, id, err)
		}
	}
}
