package browse

import (
	"context"
	"sync"

	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/storage"
	"github.com/pders01/reel/internal/tmdb"
)

// DetailSnapshot is a copy of the detail page state for rendering.
type DetailSnapshot struct {
	Kind       storage.Kind `json:"kind"`
	ID         int          `json:"id"`
	Detail     *tmdb.Detail `json:"detail,omitempty"`
	Favorite   bool         `json:"favorite"`
	Loading    bool         `json:"-"`
	Err        error        `json:"-"`
	ErrMessage string       `json:"error,omitempty"`
}

// DetailController loads one title with its recommendations.
type DetailController struct {
	catalog   Catalog
	favorites Favorites

	mu      sync.Mutex
	seq     uint64
	kind    storage.Kind
	id      int
	detail  *tmdb.Detail
	loading bool
	err     error
	errMsg  string
}

func NewDetailController(catalog Catalog, favs Favorites) *DetailController {
	return &DetailController{catalog: catalog, favorites: favs}
}

// Load fetches kind/id. The result is applied only if no later Load was
// issued; otherwise ErrStale is returned and the newer state is untouched.
func (c *DetailController) Load(ctx context.Context, kind storage.Kind, id int) (DetailSnapshot, error) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.kind, c.id = kind, id
	c.detail = nil
	c.loading = true
	c.err = nil
	c.errMsg = ""
	c.mu.Unlock()

	raw, err := c.catalog.Details(ctx, kind, id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		debuglog.Debugf("browse: dropped stale detail response for %s", storage.ItemKey(kind, id))
		return c.snapshotLocked(), ErrStale
	}

	c.loading = false
	if err != nil {
		c.err = err
		c.errMsg = tmdb.UserMessage(err, tmdb.MsgDetailsError)
		return c.snapshotLocked(), err
	}

	d := tmdb.NormalizeDetail(raw, kind, c.catalog.ImageBaseURL())
	c.detail = &d
	return c.snapshotLocked(), nil
}

// ToggleFavorite adds or removes the loaded title and reports whether it is
// now a favorite.
func (c *DetailController) ToggleFavorite() (bool, error) {
	c.mu.Lock()
	if c.detail == nil {
		c.mu.Unlock()
		return false, ErrNotLoaded
	}
	item := c.detail.Item
	c.mu.Unlock()

	return c.favorites.Toggle(item)
}

func (c *DetailController) IsFavorite() bool {
	c.mu.Lock()
	kind, id := c.kind, c.id
	c.mu.Unlock()
	if id == 0 {
		return false
	}
	return c.favorites.IsFavorite(kind, id)
}

func (c *DetailController) Snapshot() DetailSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *DetailController) snapshotLocked() DetailSnapshot {
	snap := DetailSnapshot{
		Kind:       c.kind,
		ID:         c.id,
		Loading:    c.loading,
		Err:        c.err,
		ErrMessage: c.errMsg,
	}
	if c.detail != nil {
		d := *c.detail
		snap.Detail = &d
	}
	if c.id != 0 && c.favorites != nil {
		snap.Favorite = c.favorites.IsFavorite(c.kind, c.id)
	}
	return snap
}
