package browse

import (
	"context"
	"strings"
	"sync"

	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/session"
	"github.com/pders01/reel/internal/storage"
	"github.com/pders01/reel/internal/tmdb"
	"github.com/pders01/reel/internal/validation"
)

type Mode int

const (
	ModeTrending Mode = iota
	ModeSearch
)

func (m Mode) String() string {
	if m == ModeSearch {
		return "search"
	}
	return "trending"
}

func modeFor(query string) Mode {
	if strings.TrimSpace(query) == "" {
		return ModeTrending
	}
	return ModeSearch
}

// Snapshot is a copy of the feed state for rendering.
type Snapshot struct {
	Query      string             `json:"query"`
	Page       int                `json:"page"`
	Mode       Mode               `json:"-"`
	Pagination storage.Pagination `json:"pagination"`
	Results    []storage.Item     `json:"results"`
	Loading    bool               `json:"-"`
	Err        error              `json:"-"`
	ErrMessage string             `json:"error,omitempty"`
}

// SearchController drives the home feed: a free-text search when a query is
// set, the daily trending list otherwise.
type SearchController struct {
	catalog Catalog
	session SessionSaver

	// saveMu orders session writes; savedSeq is the newest fetch written.
	saveMu   sync.Mutex
	savedSeq uint64

	mu         sync.Mutex
	seq        uint64
	query      string
	page       int
	fetched    bool
	pagination storage.Pagination
	results    []storage.Item
	loading    bool
	err        error
	errMsg     string
}

// NewSearchController returns a controller on page 1 of the trending feed.
// sess may be nil.
func NewSearchController(catalog Catalog, sess SessionSaver) *SearchController {
	return &SearchController{catalog: catalog, session: sess, page: 1}
}

// SetQuery sets the query and reports whether it changed. A changed query
// always moves back to page 1.
func (c *SearchController) SetQuery(q string) bool {
	q = validation.SanitizeQuery(q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if q == c.query {
		return false
	}
	c.query = q
	c.page = 1
	return true
}

// SetPage moves to page p, clamped to the navigable range, and returns the
// resulting page.
func (c *SearchController) SetPage(p int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = c.clamp(p)
	return c.page
}

// NextPage and PrevPage report whether the page moved.
func (c *SearchController) NextPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.clamp(c.page + 1)
	if next == c.page {
		return false
	}
	c.page = next
	return true
}

func (c *SearchController) PrevPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.clamp(c.page - 1)
	if prev == c.page {
		return false
	}
	c.page = prev
	return true
}

// clamp keeps p within [1, last]. Before the first fetch the provider limit
// is the upper bound; after it, an empty result set has exactly one page.
func (c *SearchController) clamp(p int) int {
	last := c.catalog.MaxPages()
	if c.fetched {
		last = tmdb.ClampPages(c.pagination.TotalPages, c.catalog.MaxPages())
	}
	if last < 1 {
		last = 1
	}
	if p < 1 {
		return 1
	}
	if p > last {
		return last
	}
	return p
}

// Fetch loads the current query and page. An empty query loads the trending
// feed. On failure the previous results are cleared and the error is
// returned; the user-facing text is in the snapshot. If another Fetch was
// issued while this one was in flight, the result is dropped and ErrStale is
// returned.
func (c *SearchController) Fetch(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	query, page := c.query, c.page
	c.loading = true
	c.err = nil
	c.errMsg = ""
	c.mu.Unlock()

	var (
		resp     *tmdb.PageResponse
		err      error
		fallback string
	)
	if modeFor(query) == ModeTrending {
		fallback = tmdb.MsgFeedError
		resp, err = c.catalog.Trending(ctx, page)
	} else {
		fallback = tmdb.MsgResultsError
		resp, err = c.catalog.SearchMulti(ctx, query, page)
	}

	c.mu.Lock()
	if seq != c.seq {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		debuglog.Debugf("browse: dropped stale feed response (query=%q page=%d)", query, page)
		return snap, ErrStale
	}

	c.loading = false
	if err != nil {
		c.results = nil
		c.err = err
		c.errMsg = tmdb.UserMessage(err, fallback)
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}

	c.results = tmdb.NormalizeResults(resp.Results, c.catalog.ImageBaseURL())
	c.fetched = true
	c.pagination = storage.Pagination{
		Page:         page,
		TotalPages:   tmdb.ClampPages(resp.TotalPages, c.catalog.MaxPages()),
		TotalResults: resp.TotalResults,
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.save(seq, snap)
	return snap, nil
}

// save persists snap unless a newer fetch has already been written.
func (c *SearchController) save(seq uint64, snap Snapshot) {
	if c.session == nil {
		return
	}
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	if seq < c.savedSeq {
		debuglog.Debugf("browse: skipped saving superseded page (query=%q page=%d)", snap.Query, snap.Page)
		return
	}
	c.savedSeq = seq
	st := session.State{
		Query:      snap.Query,
		Page:       snap.Page,
		Pagination: snap.Pagination,
		Results:    snap.Results,
	}
	if err := c.session.Save(st); err != nil {
		debuglog.Warnf("browse: saving session: %v", err)
	}
}

// Restore resumes a persisted session without fetching.
func (c *SearchController) Restore(st session.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = validation.SanitizeQuery(st.Query)
	c.pagination = st.Pagination
	c.fetched = st.Pagination.Page > 0
	c.results = append([]storage.Item(nil), st.Results...)
	c.page = c.clamp(st.Page)
	c.loading = false
	c.err = nil
	c.errMsg = ""
}

func (c *SearchController) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *SearchController) snapshotLocked() Snapshot {
	return Snapshot{
		Query:      c.query,
		Page:       c.page,
		Mode:       modeFor(c.query),
		Pagination: c.pagination,
		Results:    append([]storage.Item(nil), c.results...),
		Loading:    c.loading,
		Err:        c.err,
		ErrMessage: c.errMsg,
	}
}
