// Package tallydisk implements the election storer on disk, with each
// election held in its own json file.
package tallydisk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ardanlabs/ballot/business/core/tally"
)

// Store manages the set of APIs for election access on disk.
type Store struct {
	mu     sync.RWMutex
	dbPath string
}

// NewStore constructs a store for election access, creating the directory
// if it doesn't exist.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Store{dbPath: dbPath}, nil
}

// Create inserts a new election.
func (s *Store) Create(ctx context.Context, e tally.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.getPath(e.ID)); err == nil {
		return fmt.Errorf("election[%s] already exists", e.ID)
	}

	return s.write(toDisk(e))
}

// Update replaces the election when the version on disk matches the version
// of the election provided.
func (s *Store) Update(ctx context.Context, e tally.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(e.ID)
	if err != nil {
		return err
	}

	if current.Version != e.Version {
		return tally.ErrVersionConflict
	}

	de := toDisk(e)
	de.Version++

	return s.write(de)
}

// QueryByID gets the specified election.
func (s *Store) QueryByID(ctx context.Context, id string) (tally.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	de, err := s.read(id)
	if err != nil {
		return tally.Election{}, err
	}

	return toElection(de), nil
}

// Query retrieves all elections on disk ordered by creation date.
func (s *Store) Query(ctx context.Context) ([]tally.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dbPath)
	if err != nil {
		return nil, err
	}

	var elections []tally.Election
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}

		de, err := s.read(strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, err
		}

		elections = append(elections, toElection(de))
	}

	sort.Slice(elections, func(i, j int) bool {
		return elections[i].DateCreated.Before(elections[j].DateCreated)
	})

	return elections, nil
}

// =============================================================================

// diskElection is the shape of an election in its file.
type diskElection struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Candidates  []string  `json:"candidates"`
	Voters      []string  `json:"voters"`
	Status      string    `json:"status"`
	Chain       string    `json:"chain"`
	Version     int       `json:"version"`
	DateCreated time.Time `json:"date_created"`
	DateUpdated time.Time `json:"date_updated"`
}

func toDisk(e tally.Election) diskElection {
	return diskElection{
		ID:          e.ID,
		Title:       e.Title,
		Candidates:  e.Candidates,
		Voters:      e.Voters,
		Status:      string(e.Status),
		Chain:       e.Chain,
		Version:     e.Version,
		DateCreated: e.DateCreated,
		DateUpdated: e.DateUpdated,
	}
}

func toElection(de diskElection) tally.Election {
	return tally.Election{
		ID:          de.ID,
		Title:       de.Title,
		Candidates:  de.Candidates,
		Voters:      de.Voters,
		Status:      tally.Status(de.Status),
		Chain:       de.Chain,
		Version:     de.Version,
		DateCreated: de.DateCreated,
		DateUpdated: de.DateUpdated,
	}
}

// read decodes the election file for the specified id.
func (s *Store) read(id string) (diskElection, error) {
	f, err := os.Open(s.getPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return diskElection{}, tally.ErrNotFound
		}
		return diskElection{}, err
	}
	defer f.Close()

	var de diskElection
	if err := json.NewDecoder(f).Decode(&de); err != nil {
		return diskElection{}, fmt.Errorf("decoding election[%s]: %w", id, err)
	}

	return de, nil
}

// write stores the election in a temp file and renames it over the election
// file so a reader never sees a partial write.
func (s *Store) write(de diskElection) error {
	data, err := json.MarshalIndent(de, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.getPath(de.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}

	return os.Rename(tmp, s.getPath(de.ID))
}

// getPath forms the path to the specified election.
func (s *Store) getPath(id string) string {
	return filepath.Join(s.dbPath, filepath.Base(id)+".json")
}
