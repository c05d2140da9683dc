package storage

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	sessionBucket   = []byte("session")
	favoritesBucket = []byte("favorites")
)

// Entry names inside the session bucket.
const (
	KeyResults    = "results"
	KeyPage       = "page"
	KeyPagination = "pagination"
	KeySearchTerm = "searchTerm"
	KeyFavorites  = "favorites"
)

// SessionKeys lists the entries that make up a persisted search session.
var SessionKeys = []string{KeyResults, KeyPage, KeyPagination, KeySearchTerm}

type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string, timeout ...time.Duration) (*Store, error) {
	openTimeout := 1 * time.Second
	if len(timeout) > 0 && timeout[0] > 0 {
		openTimeout = timeout[0]
	}

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{sessionBucket, favoritesBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns a copy of the value under key, or nil when it is absent.
func (s *Store) Get(bucket, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket %q not found", bucket)
		}
		if v := b.Get([]byte(key)); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, err
}

func (s *Store) Put(bucket, key string, value []byte) error {
	return s.PutAll(bucket, map[string][]byte{key: value})
}

// PutAll writes every entry in a single transaction.
func (s *Store) PutAll(bucket string, entries map[string][]byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket %q not found", bucket)
		}
		for k, v := range entries {
			if err := b.Put([]byte(k), v); err != nil {
				return fmt.Errorf("writing %s/%s: %w", bucket, k, err)
			}
		}
		return nil
	})
}

func (s *Store) LoadFavorites() ([]byte, error) {
	return s.Get(string(favoritesBucket), KeyFavorites)
}

func (s *Store) SaveFavorites(data []byte) error {
	return s.Put(string(favoritesBucket), KeyFavorites, data)
}

// LoadSession returns whichever session entries exist.
func (s *Store) LoadSession() (map[string][]byte, error) {
	out := make(map[string][]byte, len(SessionKeys))
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		for _, k := range SessionKeys {
			if v := b.Get([]byte(k)); v != nil {
				out[k] = append([]byte(nil), v...)
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) SaveSession(entries map[string][]byte) error {
	return s.PutAll(string(sessionBucket), entries)
}

// ClearSession removes the persisted search session; favorites are kept.
func (s *Store) ClearSession() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		for _, k := range SessionKeys {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}
