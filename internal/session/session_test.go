package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/reel/internal/storage"
)

type memBackend struct {
	entries  map[string][]byte
	loadErr  error
	saveErr  error
	clearErr error
}

func (m *memBackend) LoadSession() (map[string][]byte, error) { return m.entries, m.loadErr }

func (m *memBackend) SaveSession(entries map[string][]byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries = entries
	return nil
}

func (m *memBackend) ClearSession() error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.entries = nil
	return nil
}

func sample() State {
	return State{
		Query:      "batman",
		Page:       2,
		Pagination: storage.Pagination{Page: 2, TotalPages: 500, TotalResults: 24000},
		Results: []storage.Item{
			{ID: 268, Kind: storage.KindMovie, Title: "Batman"},
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	backend := &memBackend{}
	s := New(backend)

	require.NoError(t, s.Save(sample()))
	assert.Equal(t, "batman", string(backend.entries[storage.KeySearchTerm]))
	assert.Len(t, backend.entries, 4)

	fresh := New(backend)
	st, ok := fresh.Load()
	require.True(t, ok)
	assert.Equal(t, sample(), st)
	assert.Equal(t, sample(), fresh.Current())
}

func TestLoad_Empty(t *testing.T) {
	s := New(&memBackend{})
	st, ok := s.Load()
	assert.False(t, ok)
	assert.Equal(t, State{}, st)
}

func TestLoad_Corrupt(t *testing.T) {
	s := New(&memBackend{entries: map[string][]byte{
		storage.KeyResults: []byte(`{broken`),
		storage.KeyPage:    []byte(`1`),
	}})
	_, ok := s.Load()
	assert.False(t, ok)
}

func TestLoad_BackendError(t *testing.T) {
	s := New(&memBackend{loadErr: errors.New("locked")})
	_, ok := s.Load()
	assert.False(t, ok)
}

func TestLoad_ZeroPageBecomesOne(t *testing.T) {
	s := New(&memBackend{entries: map[string][]byte{
		storage.KeyPage:       []byte(`0`),
		storage.KeySearchTerm: []byte(``),
	}})
	st, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, 1, st.Page)
	assert.Empty(t, st.Query)
}

func TestSave_ErrorKeepsCache(t *testing.T) {
	backend := &memBackend{}
	s := New(backend)
	require.NoError(t, s.Save(sample()))

	backend.saveErr = errors.New("read-only")
	err := s.Save(State{Query: "other", Page: 1})
	require.Error(t, err)
	assert.Equal(t, "batman", s.Current().Query)
}

func TestSave_OverwritesPrevious(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "session.db")
	db, err := storage.NewStore(dbPath)
	require.NoError(t, err)
	defer db.Close()

	s := New(db)
	require.NoError(t, s.Save(sample()))
	require.NoError(t, s.Save(State{Query: "", Page: 1, Pagination: storage.Pagination{Page: 1, TotalPages: 500}}))

	st, ok := New(db).Load()
	require.True(t, ok)
	assert.Empty(t, st.Query)
	assert.Empty(t, st.Results)
	assert.Equal(t, 500, st.Pagination.TotalPages)
}

func TestClear(t *testing.T) {
	db, err := storage.NewStore(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.SaveFavorites([]byte(`[]`)))

	s := New(db)
	require.NoError(t, s.Save(sample()))
	require.NoError(t, s.Clear())
	assert.Empty(t, s.Current().Query)

	_, ok := New(db).Load()
	assert.False(t, ok)
	favs, err := db.LoadFavorites()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(favs), "favorites survive")
}

func TestClear_BackendError(t *testing.T) {
	backend := &memBackend{clearErr: errors.New("read-only")}
	s := New(backend)
	require.NoError(t, s.Save(sample()))

	require.Error(t, s.Clear())
	assert.Equal(t, "batman", s.Current().Query)
}
