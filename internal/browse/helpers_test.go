package browse

import (
	"context"
	"sync"

	"github.com/pders01/reel/internal/session"
	"github.com/pders01/reel/internal/storage"
	"github.com/pders01/reel/internal/tmdb"
)

type call struct {
	endpoint string
	query    string
	page     int
	kind     storage.Kind
	id       int
}

// fakeCatalog answers from canned responses. A request whose gate channel is
// set blocks until the channel is closed.
type fakeCatalog struct {
	mu       sync.Mutex
	calls    []call
	page     *tmdb.PageResponse
	details  map[storage.FavoriteKey]*tmdb.DetailResponse
	err      error
	gates    map[string]chan struct{}
	started  chan string
	maxPages int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		details:  map[storage.FavoriteKey]*tmdb.DetailResponse{},
		gates:    map[string]chan struct{}{},
		maxPages: 500,
	}
}

func (f *fakeCatalog) wait(name string) {
	f.mu.Lock()
	gate := f.gates[name]
	started := f.started
	f.mu.Unlock()
	if started != nil {
		started <- name
	}
	if gate != nil {
		<-gate
	}
}

func (f *fakeCatalog) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeCatalog) SearchMulti(_ context.Context, query string, page int) (*tmdb.PageResponse, error) {
	f.record(call{endpoint: "search", query: query, page: page})
	f.wait("search:" + query)
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakeCatalog) Trending(_ context.Context, page int) (*tmdb.PageResponse, error) {
	f.record(call{endpoint: "trending", page: page})
	f.wait("trending")
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakeCatalog) Details(_ context.Context, kind storage.Kind, id int) (*tmdb.DetailResponse, error) {
	f.record(call{endpoint: "details", kind: kind, id: id})
	key := storage.ItemKey(kind, id)
	f.wait(string(key))
	if f.err != nil {
		return nil, f.err
	}
	return f.details[key], nil
}

func (f *fakeCatalog) ImageBaseURL() string { return "https://image.tmdb.org/t/p" }

func (f *fakeCatalog) MaxPages() int { return f.maxPages }

func (f *fakeCatalog) lastCall() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// memSession records saved states. When gate is set, the first Save signals
// blocked and waits for gate to close before recording.
type memSession struct {
	mu      sync.Mutex
	saved   []session.State
	err     error
	gate    chan struct{}
	blocked chan struct{}
	waited  bool
}

func (m *memSession) Save(st session.State) error {
	m.mu.Lock()
	wait := m.gate != nil && !m.waited
	m.waited = m.waited || wait
	m.mu.Unlock()
	if wait {
		close(m.blocked)
		<-m.gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, st)
	return nil
}

func (m *memSession) last() (session.State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saved) == 0 {
		return session.State{}, false
	}
	return m.saved[len(m.saved)-1], true
}

type memFavorites struct {
	items map[storage.FavoriteKey]storage.Item
}

func (m *memFavorites) Toggle(item storage.Item) (bool, error) {
	if m.items == nil {
		m.items = map[storage.FavoriteKey]storage.Item{}
	}
	if _, ok := m.items[item.Key()]; ok {
		delete(m.items, item.Key())
		return false, nil
	}
	m.items[item.Key()] = item
	return true, nil
}

func (m *memFavorites) IsFavorite(kind storage.Kind, id int) bool {
	_, ok := m.items[storage.ItemKey(kind, id)]
	return ok
}

func batmanPage() *tmdb.PageResponse {
	return &tmdb.PageResponse{
		Page:         1,
		TotalPages:   1200,
		TotalResults: 24000,
		Results: []tmdb.Result{
			{ID: 268, MediaType: "movie", Title: "Batman", ReleaseDate: "1989-06-23"},
			{ID: 2287, MediaType: "tv", Name: "Batman", FirstAirDate: "1966-01-12"},
			{ID: 3894, MediaType: "person", Name: "Christian Bale"},
		},
	}
}
