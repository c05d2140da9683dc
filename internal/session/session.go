// Package session remembers the last search so the next launch resumes it.
package session

import (
	"fmt"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/storage"
)

// Backend persists the session entries. *storage.Store satisfies it.
type Backend interface {
	LoadSession() (map[string][]byte, error)
	SaveSession(entries map[string][]byte) error
	ClearSession() error
}

// State is the last query, its page, pagination and normalized results.
type State struct {
	Query      string             `json:"searchTerm"`
	Page       int                `json:"page"`
	Pagination storage.Pagination `json:"pagination"`
	Results    []storage.Item     `json:"results"`
}

type Store struct {
	mu      sync.RWMutex
	backend Backend
	current State
}

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Load reads the persisted session. It reports false when nothing usable was
// stored; any partially readable session is discarded.
func (s *Store) Load() (State, bool) {
	entries, err := s.backend.LoadSession()
	if err != nil {
		debuglog.Warnf("session: load failed: %v", err)
		return State{}, false
	}
	if len(entries) == 0 {
		return State{}, false
	}

	var st State
	fields := map[string]any{
		storage.KeyResults:    &st.Results,
		storage.KeyPage:       &st.Page,
		storage.KeyPagination: &st.Pagination,
	}
	for key, dst := range fields {
		raw, ok := entries[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			debuglog.Warnf("session: entry %s is corrupt: %v", key, err)
			return State{}, false
		}
	}
	// The query is stored as a plain string.
	st.Query = string(entries[storage.KeySearchTerm])

	if st.Page < 1 {
		st.Page = 1
	}

	s.mu.Lock()
	s.current = clone(st)
	s.mu.Unlock()
	return st, true
}

// Save writes all four entries in one transaction and refreshes the cache.
func (s *Store) Save(st State) error {
	entries := make(map[string][]byte, len(storage.SessionKeys))

	results := st.Results
	if results == nil {
		results = []storage.Item{}
	}
	for key, v := range map[string]any{
		storage.KeyResults:    results,
		storage.KeyPage:       st.Page,
		storage.KeyPagination: st.Pagination,
	} {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("session: encoding %s: %w", key, err)
		}
		entries[key] = data
	}
	entries[storage.KeySearchTerm] = []byte(st.Query)

	if err := s.backend.SaveSession(entries); err != nil {
		return fmt.Errorf("session: saving: %w", err)
	}

	s.mu.Lock()
	s.current = clone(st)
	s.mu.Unlock()
	return nil
}

// Clear forgets the persisted session so the next launch starts on trending.
func (s *Store) Clear() error {
	if err := s.backend.ClearSession(); err != nil {
		return fmt.Errorf("session: clearing: %w", err)
	}
	s.mu.Lock()
	s.current = State{}
	s.mu.Unlock()
	return nil
}

// Current returns the last loaded or saved state.
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.current)
}

func clone(st State) State {
	st.Results = append([]storage.Item(nil), st.Results...)
	return st
}
