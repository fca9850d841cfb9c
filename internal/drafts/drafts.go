// Package drafts stores unfinished job configurations on disk so a wizard
// session can be resumed later. Drafts live client-side only; nothing is
// sent to the backend until the draft is completed and created as a real
// job, which always starts deactivated.
package drafts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/driftstream/driftstream-cli/internal/api"
)

// Draft is a partially configured job. Zero-value endpoint pointers mean
// the wizard never reached that step.
type Draft struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Source        *api.JobEndpoint `json:"source,omitempty"`
	Destination   *api.JobEndpoint `json:"destination,omitempty"`
	StreamsConfig string           `json:"streams_config,omitempty"`
	Frequency     string           `json:"frequency,omitempty"`
	SavedAt       string           `json:"saved_at"`
}

// Store reads and writes the draft file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore builds a store over the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the default draft file location.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "driftstream", "saved_jobs.json")
	}
	return filepath.Join(homeDir, ".driftstream", "saved_jobs.json")
}

// List returns all saved drafts, most recently saved first.
func (s *Store) List() ([]Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the draft with the given id.
func (s *Store) Get(id string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("draft %s not found", id)
}

// Save writes a draft, assigning an id on first save and replacing any
// existing draft with the same id.
func (s *Store) Save(draft Draft) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}
	draft.SavedAt = time.Now().UTC().Format(time.RFC3339)

	all, err := s.load()
	if err != nil {
		return nil, err
	}
	replaced := false
	for i := range all {
		if all[i].ID == draft.ID {
			all[i] = draft
			replaced = true
			break
		}
	}
	if !replaced {
		all = append([]Draft{draft}, all...)
	}
	if err := s.write(all); err != nil {
		return nil, err
	}
	return &draft, nil
}

// Delete removes a draft. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == id {
			all = append(all[:i], all[i+1:]...)
			return s.write(all)
		}
	}
	return nil
}

func (s *Store) load() ([]Draft, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read drafts: %v", err)
	}
	var all []Draft
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to parse drafts: %v", err)
	}
	return all, nil
}

func (s *Store) write(all []Draft) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create drafts directory: %v", err)
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode drafts: %v", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write drafts: %v", err)
	}
	return nil
}
