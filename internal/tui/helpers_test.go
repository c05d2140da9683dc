package tui

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/pders01/reel/internal/browse"
	"github.com/pders01/reel/internal/config"
	"github.com/pders01/reel/internal/favorites"
	"github.com/pders01/reel/internal/search"
	"github.com/pders01/reel/internal/session"
	"github.com/pders01/reel/internal/storage"
	"github.com/pders01/reel/internal/tmdb"
)

type fakeCatalog struct {
	mu      sync.Mutex
	calls   []string
	pages   []int
	page    *tmdb.PageResponse
	details map[storage.FavoriteKey]*tmdb.DetailResponse
	err     error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		page: &tmdb.PageResponse{
			Page:         1,
			TotalPages:   1200,
			TotalResults: 24000,
			Results: []tmdb.Result{
				{ID: 550, MediaType: "movie", Title: "Clube da Luta", ReleaseDate: "1999-10-15", VoteAverage: 8.4, PosterPath: "/fc.jpg"},
				{ID: 1396, MediaType: "tv", Name: "Breaking Bad", FirstAirDate: "2008-01-20"},
				{ID: 3894, MediaType: "person", Name: "Christian Bale"},
			},
		},
		details: map[storage.FavoriteKey]*tmdb.DetailResponse{
			"movie:550": fightClub(),
			"tv:1396":   {ID: 1396, Name: "Breaking Bad", FirstAirDate: "2008-01-20"},
			"movie:807": {ID: 807, Title: "Seven", ReleaseDate: "1995-09-22"},
		},
	}
}

func fightClub() *tmdb.DetailResponse {
	d := &tmdb.DetailResponse{
		ID: 550, Title: "Clube da Luta", Overview: "Um homem insone.", ReleaseDate: "1999-10-15",
		VoteAverage: 8.4, Runtime: 139, PosterPath: "/fc.jpg",
	}
	d.Videos.Results = []tmdb.Video{{Key: "qtRKdVHc-cE", Site: "YouTube", Type: "Trailer"}}
	d.Recommendations.Results = []tmdb.Result{{ID: 807, Title: "Seven", ReleaseDate: "1995-09-22"}}
	return d
}

func (f *fakeCatalog) SearchMulti(_ context.Context, query string, page int) (*tmdb.PageResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "search:"+query)
	f.pages = append(f.pages, page)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakeCatalog) Trending(_ context.Context, page int) (*tmdb.PageResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "trending")
	f.pages = append(f.pages, page)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakeCatalog) Details(_ context.Context, kind storage.Kind, id int) (*tmdb.DetailResponse, error) {
	key := storage.ItemKey(kind, id)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, string(key))
	if f.err != nil {
		return nil, f.err
	}
	return f.details[key], nil
}

func (f *fakeCatalog) ImageBaseURL() string { return "https://image.tmdb.org/t/p" }

func (f *fakeCatalog) MaxPages() int { return 500 }

func (f *fakeCatalog) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeCatalog) last() (string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	page := 0
	if len(f.pages) > 0 {
		page = f.pages[len(f.pages)-1]
	}
	return f.calls[len(f.calls)-1], page
}

type recordingOpener struct {
	mu     sync.Mutex
	opened []string
	err    error
}

func (o *recordingOpener) Open(url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.opened = append(o.opened, url)
	return nil
}

type testApp struct {
	*App
	catalog *fakeCatalog
	favs    *favorites.Store
	sess    *session.Store
	opener  *recordingOpener
}

func newTestApp(t *testing.T, restore *session.State) *testApp {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "reel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cat := newFakeCatalog()
	favs := favorites.New(store)
	favs.Load()
	sess := session.New(store)
	opener := &recordingOpener{}

	feed := browse.NewSearchController(cat, sess)
	if restore != nil {
		feed.Restore(*restore)
	}

	app := NewApp(config.TestConfig(), Deps{
		Feed:      feed,
		Detail:    browse.NewDetailController(cat, favs),
		Favorites: favs,
		Searcher:  search.NewEngine(favs),
		Opener:    opener,
		Restored:  restore != nil,
	})
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	return &testApp{App: app, catalog: cat, favs: favs, sess: sess, opener: opener}
}

// collect runs cmd and flattens batches. Commands that don't return promptly
// (cursor blink, timers) are abandoned.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		return []tea.Msg{msg}
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

// run executes cmd and feeds the app's own messages back through Update.
func (ta *testApp) run(cmd tea.Cmd) {
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case feedLoadedMsg, detailLoadedMsg, favoriteToggledMsg, favoritesFilteredMsg, openedMsg, errorMsg:
			_, next := ta.Update(msg)
			ta.run(next)
		}
	}
}

func (ta *testApp) press(msg tea.KeyMsg) {
	_, cmd := ta.Update(msg)
	ta.run(cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
