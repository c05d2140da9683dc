// Package favorites keeps the user's favorite titles: a set keyed by kind
// and id, kept in insertion order and written through to durable storage on
// every change.
package favorites

import (
	"fmt"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/storage"
)

// Backend persists the serialized collection. *storage.Store satisfies it.
type Backend interface {
	LoadFavorites() ([]byte, error)
	SaveFavorites(data []byte) error
}

// Listener is told about every committed change.
type Listener interface {
	OnFavoriteAdded(item storage.Item)
	OnFavoriteRemoved(key storage.FavoriteKey)
}

type Store struct {
	mu        sync.RWMutex
	backend   Backend
	items     []storage.Item
	index     map[storage.FavoriteKey]int
	listeners []Listener
}

func New(backend Backend) *Store {
	return &Store{
		backend: backend,
		index:   make(map[storage.FavoriteKey]int),
	}
}

// AddListener registers l for future changes.
func (s *Store) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Load replaces the in-memory collection with the stored one. Missing or
// unreadable data leaves an empty collection; it is logged, not returned.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.index = make(map[storage.FavoriteKey]int)

	data, err := s.backend.LoadFavorites()
	if err != nil {
		debuglog.Warnf("favorites: load failed, starting empty: %v", err)
		return
	}
	if len(data) == 0 {
		return
	}

	var stored []storage.Item
	if err := json.Unmarshal(data, &stored); err != nil {
		debuglog.Warnf("favorites: stored data is corrupt, starting empty: %v", err)
		return
	}

	for _, it := range stored {
		if !it.Kind.Valid() || it.ID <= 0 {
			continue
		}
		key := it.Key()
		if _, dup := s.index[key]; dup {
			continue
		}
		s.index[key] = len(s.items)
		s.items = append(s.items, it)
	}
}

// Toggle removes item if a favorite with the same key exists, otherwise adds
// a copy of its display fields. It reports whether the item is now a
// favorite. The whole collection is persisted before Toggle returns; on a
// persistence error nothing changes.
func (s *Store) Toggle(item storage.Item) (bool, error) {
	if !item.Kind.Valid() {
		return false, fmt.Errorf("favorites: invalid kind %q", item.Kind)
	}
	if item.ID <= 0 {
		return false, fmt.Errorf("favorites: invalid id %d", item.ID)
	}

	s.mu.Lock()
	key := item.Key()
	pos, exists := s.index[key]

	var next []storage.Item
	if exists {
		next = make([]storage.Item, 0, len(s.items)-1)
		next = append(next, s.items[:pos]...)
		next = append(next, s.items[pos+1:]...)
	} else {
		next = make([]storage.Item, 0, len(s.items)+1)
		next = append(next, s.items...)
		next = append(next, normalized(item))
	}

	if err := s.persist(next); err != nil {
		s.mu.Unlock()
		return exists, err
	}

	s.items = next
	s.reindex()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		if exists {
			l.OnFavoriteRemoved(key)
		} else {
			l.OnFavoriteAdded(item)
		}
	}
	return !exists, nil
}

// IsFavorite is a constant-time membership check.
func (s *Store) IsFavorite(kind storage.Kind, id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[storage.ItemKey(kind, id)]
	return ok
}

// Get returns the stored favorite for kind and id.
func (s *Store) Get(kind storage.Kind, id int) (storage.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.index[storage.ItemKey(kind, id)]
	if !ok {
		return storage.Item{}, false
	}
	return s.items[pos], true
}

// List returns a copy of the collection in insertion order.
func (s *Store) List() []storage.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]storage.Item(nil), s.items...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Keys returns the membership set.
func (s *Store) Keys() map[storage.FavoriteKey]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make(map[storage.FavoriteKey]struct{}, len(s.index))
	for k := range s.index {
		keys[k] = struct{}{}
	}
	return keys
}

func (s *Store) persist(items []storage.Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("favorites: encoding: %w", err)
	}
	if err := s.backend.SaveFavorites(data); err != nil {
		return fmt.Errorf("favorites: saving: %w", err)
	}
	return nil
}

func (s *Store) reindex() {
	s.index = make(map[storage.FavoriteKey]int, len(s.items))
	for i, it := range s.items {
		s.index[it.Key()] = i
	}
}

func normalized(item storage.Item) storage.Item {
	return storage.Item{
		ID:          item.ID,
		Kind:        item.Kind,
		Title:       item.Title,
		Overview:    item.Overview,
		ReleaseDate: item.ReleaseDate,
		VoteAverage: item.VoteAverage,
		PosterURL:   item.PosterURL,
	}
}
