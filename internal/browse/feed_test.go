package browse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/reel/internal/session"
	"github.com/pders01/reel/internal/storage"
	"github.com/pders01/reel/internal/tmdb"
)

func TestFetch_SearchFiltersKinds(t *testing.T) {
	cat := newFakeCatalog()
	cat.page = batmanPage()
	sess := &memSession{}
	c := NewSearchController(cat, sess)

	c.SetQuery("batman")
	snap, err := c.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ModeSearch, snap.Mode)
	require.Len(t, snap.Results, 2)
	for _, it := range snap.Results {
		assert.Contains(t, []storage.Kind{storage.KindMovie, storage.KindTV}, it.Kind)
	}
	assert.Equal(t, call{endpoint: "search", query: "batman", page: 1}, cat.lastCall())
}

func TestFetch_ClampsTotalPages(t *testing.T) {
	cat := newFakeCatalog()
	cat.page = batmanPage()
	c := NewSearchController(cat, nil)

	c.SetQuery("batman")
	snap, err := c.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 500, snap.Pagination.TotalPages)
	assert.Equal(t, 24000, snap.Pagination.TotalResults)
	assert.Equal(t, 500, c.SetPage(1200))
}

func TestFetch_EmptyQueryUsesTrending(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		cat := newFakeCatalog()
		cat.page = batmanPage()
		c := NewSearchController(cat, nil)

		c.SetQuery(q)
		snap, err := c.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ModeTrending, snap.Mode)
		assert.Equal(t, "trending", cat.lastCall().endpoint, "query %q", q)
	}
}

func TestSetQuery_ResetsPage(t *testing.T) {
	cat := newFakeCatalog()
	cat.page = batmanPage()
	c := NewSearchController(cat, nil)

	c.SetQuery("batman")
	_, err := c.Fetch(context.Background())
	require.NoError(t, err)

	c.SetPage(7)
	assert.Equal(t, 7, c.Snapshot().Page)

	assert.True(t, c.SetQuery("superman"))
	assert.Equal(t, 1, c.Snapshot().Page)

	c.SetPage(4)
	assert.False(t, c.SetQuery("  superman "), "same query after trimming")
	assert.Equal(t, 4, c.Snapshot().Page)
}

func TestPageNavigation(t *testing.T) {
	tests := []struct {
		name       string
		totalPages int
		lastPage   int
	}{
		{name: "two pages", totalPages: 2, lastPage: 2},
		{name: "empty result set", totalPages: 0, lastPage: 1},
		{name: "beyond provider limit", totalPages: 1200, lastPage: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := newFakeCatalog()
			cat.page = &tmdb.PageResponse{Page: 1, TotalPages: tt.totalPages}
			c := NewSearchController(cat, nil)
			c.SetQuery("zzzzqqq")
			_, err := c.Fetch(context.Background())
			require.NoError(t, err)

			assert.False(t, c.PrevPage())
			assert.Equal(t, tt.lastPage > 1, c.NextPage())
			assert.Equal(t, tt.lastPage, c.SetPage(400+tt.lastPage))
			assert.False(t, c.NextPage())
			assert.Equal(t, 1, c.SetPage(-4))
		})
	}
}

func TestPageNavigation_BeforeFirstFetch(t *testing.T) {
	c := NewSearchController(newFakeCatalog(), nil)
	assert.True(t, c.NextPage())
	assert.Equal(t, 500, c.SetPage(9999))
}

func TestFetch_ErrorClearsResults(t *testing.T) {
	cat := newFakeCatalog()
	cat.page = batmanPage()
	c := NewSearchController(cat, nil)
	c.SetQuery("batman")
	_, err := c.Fetch(context.Background())
	require.NoError(t, err)

	cat.err = &tmdb.APIError{HTTPStatus: 401, Message: "Invalid API key: You must be granted a valid key."}
	snap, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Empty(t, snap.Results)
	assert.False(t, snap.Loading)
	assert.Equal(t, "Invalid API key: You must be granted a valid key.", snap.ErrMessage)
}

func TestFetch_FallbackMessages(t *testing.T) {
	cat := newFakeCatalog()
	cat.err = &tmdb.TransportError{Op: "GET", Err: errors.New("connection refused")}
	c := NewSearchController(cat, nil)

	snap, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, tmdb.MsgFeedError, snap.ErrMessage)

	c.SetQuery("x")
	snap, _ = c.Fetch(context.Background())
	assert.Equal(t, tmdb.MsgResultsError, snap.ErrMessage)

	cat.err = tmdb.ErrMissingToken
	snap, _ = c.Fetch(context.Background())
	assert.Equal(t, tmdb.MsgMissingToken, snap.ErrMessage)
}

func TestFetch_SavesSession(t *testing.T) {
	cat := newFakeCatalog()
	cat.page = batmanPage()
	sess := &memSession{}
	c := NewSearchController(cat, sess)

	c.SetQuery("batman")
	_, err := c.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, sess.saved, 1)
	st := sess.saved[0]
	assert.Equal(t, "batman", st.Query)
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, 500, st.Pagination.TotalPages)
	assert.Len(t, st.Results, 2)

	cat.err = errors.New("down")
	_, _ = c.Fetch(context.Background())
	assert.Len(t, sess.saved, 1, "failed fetches are not persisted")
}

func TestFetch_SessionErrorIsNotFatal(t *testing.T) {
	cat := newFakeCatalog()
	cat.page = batmanPage()
	c := NewSearchController(cat, &memSession{err: errors.New("read-only")})

	snap, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Results, 2)
}

func TestFetch_StaleResponseDropped(t *testing.T) {
	cat := newFakeCatalog()
	cat.page = batmanPage()
	cat.started = make(chan string, 2)
	gate := make(chan struct{})
	cat.gates["search:old"] = gate
	c := NewSearchController(cat, nil)

	c.SetQuery("old")
	type result struct {
		snap Snapshot
		err  error
	}
	done := make(chan result, 1)
	go func() {
		s, err := c.Fetch(context.Background())
		done <- result{s, err}
	}()
	<-cat.started

	c.SetQuery("new")
	_, err := c.Fetch(context.Background())
	require.NoError(t, err)
	<-cat.started

	close(gate)
	old := <-done
	assert.ErrorIs(t, old.err, ErrStale)
	assert.Equal(t, "new", c.Snapshot().Query)
	assert.Len(t, c.Snapshot().Results, 2)
}

func TestRestore(t *testing.T) {
	cat := newFakeCatalog()
	c := NewSearchController(cat, nil)

	c.Restore(session.State{
		Query:      "alien",
		Page:       3,
		Pagination: storage.Pagination{Page: 3, TotalPages: 10, TotalResults: 190},
		Results:    []storage.Item{{ID: 348, Kind: storage.KindMovie, Title: "Alien"}},
	})

	snap := c.Snapshot()
	assert.Equal(t, "alien", snap.Query)
	assert.Equal(t, 3, snap.Page)
	assert.Len(t, snap.Results, 1)
	assert.Empty(t, cat.calls, "restore never fetches")
	assert.Equal(t, 10, c.SetPage(99))
}

func TestFetch_SessionWritesFollowFetchOrder(t *testing.T) {
	cat := newFakeCatalog()
	cat.page = batmanPage()
	sess := &memSession{gate: make(chan struct{}), blocked: make(chan struct{})}
	c := NewSearchController(cat, sess)

	c.SetQuery("old")
	oldDone := make(chan error, 1)
	go func() {
		_, err := c.Fetch(context.Background())
		oldDone <- err
	}()
	<-sess.blocked

	c.SetQuery("new")
	newDone := make(chan error, 1)
	go func() {
		_, err := c.Fetch(context.Background())
		newDone <- err
	}()
	require.Eventually(t, func() bool {
		cat.mu.Lock()
		issued := len(cat.calls) == 2
		cat.mu.Unlock()
		return issued && !c.Snapshot().Loading
	}, time.Second, 5*time.Millisecond)

	close(sess.gate)
	require.NoError(t, <-oldDone)
	require.NoError(t, <-newDone)

	last, ok := sess.last()
	require.True(t, ok)
	assert.Equal(t, "new", last.Query)
}
