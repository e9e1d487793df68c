// Package tallymem implements the election storer in memory using a map.
package tallymem

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/ardanlabs/ballot/business/core/tally"
)

// Store manages the set of APIs for election access in memory.
type Store struct {
	mu        sync.RWMutex
	elections map[string]tally.Election
}

// NewStore constructs a store for election access.
func NewStore() *Store {
	return &Store{
		elections: make(map[string]tally.Election),
	}
}

// Create inserts a new election.
func (s *Store) Create(ctx context.Context, e tally.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.elections[e.ID]; exists {
		return fmt.Errorf("election[%s] already exists", e.ID)
	}

	s.elections[e.ID] = clone(e)

	return nil
}

// Update replaces the election when the stored version matches the version
// of the election provided.
func (s *Store) Update(ctx context.Context, e tally.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.elections[e.ID]
	if !exists {
		return tally.ErrNotFound
	}

	if current.Version != e.Version {
		return tally.ErrVersionConflict
	}

	e = clone(e)
	e.Version++
	s.elections[e.ID] = e

	return nil
}

// QueryByID gets the specified election.
func (s *Store) QueryByID(ctx context.Context, id string) (tally.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.elections[id]
	if !exists {
		return tally.Election{}, tally.ErrNotFound
	}

	return clone(e), nil
}

// Query retrieves all elections ordered by creation date.
func (s *Store) Query(ctx context.Context) ([]tally.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	elections := make([]tally.Election, 0, len(s.elections))
	for _, e := range s.elections {
		elections = append(elections, clone(e))
	}

	sort.Slice(elections, func(i, j int) bool {
		return elections[i].DateCreated.Before(elections[j].DateCreated)
	})

	return elections, nil
}

// clone keeps callers from sharing slices with the stored copy.
func clone(e tally.Election) tally.Election {
	e.Candidates = slices.Clone(e.Candidates)
	e.Voters = slices.Clone(e.Voters)
	return e
}
