// Package browse holds the two controllers behind every view: the search or
// trending feed and the single-title detail page. Each fetch captures a
// sequence number when it is issued and only applies its result if no newer
// fetch was issued in the meantime.
package browse

import (
	"context"
	"errors"

	"github.com/pders01/reel/internal/session"
	"github.com/pders01/reel/internal/storage"
	"github.com/pders01/reel/internal/tmdb"
)

// ErrStale is returned by a fetch whose result was discarded because a newer
// fetch on the same controller had already been issued.
var ErrStale = errors.New("browse: stale response discarded")

// ErrNotLoaded is returned when acting on a detail page that has not loaded.
var ErrNotLoaded = errors.New("browse: nothing loaded")

// Catalog is the remote side. *tmdb.Client satisfies it.
type Catalog interface {
	SearchMulti(ctx context.Context, query string, page int) (*tmdb.PageResponse, error)
	Trending(ctx context.Context, page int) (*tmdb.PageResponse, error)
	Details(ctx context.Context, kind storage.Kind, id int) (*tmdb.DetailResponse, error)
	ImageBaseURL() string
	MaxPages() int
}

// SessionSaver receives every successfully fetched page.
type SessionSaver interface {
	Save(st session.State) error
}

// Favorites is the slice of the favorites store the detail page needs.
type Favorites interface {
	Toggle(item storage.Item) (bool, error)
	IsFavorite(kind storage.Kind, id int) bool
}
