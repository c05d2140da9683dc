package tui

import (
	"fmt"
	"strings"

	"github.com/pders01/reel/internal/browse"
	"github.com/pders01/reel/internal/storage"
)

type View int

const (
	ViewHome View = iota
	ViewSearch
	ViewDetail
	ViewFavorites
)

func (v View) String() string {
	switch v {
	case ViewHome:
		return "home"
	case ViewSearch:
		return "search"
	case ViewDetail:
		return "detail"
	case ViewFavorites:
		return "favorites"
	default:
		return "unknown"
	}
}

// route is one entry of the back stack.
type route struct {
	view View
	kind storage.Kind
	id   int
}

const maxHistory = 50

// mediaItem adapts a storage.Item to list.Item.
type mediaItem struct {
	item     storage.Item
	favorite bool
}

func (i mediaItem) Title() string {
	title := i.item.Title
	if title == "" {
		title = "(sem título)"
	}
	if i.favorite {
		return FavoriteMarkStyle.Render("♥ ") + title
	}
	return title
}

func (i mediaItem) Description() string {
	parts := []string{i.item.Kind.Label()}
	if y := i.item.Year(); y != "" {
		parts = append(parts, y)
	}
	if i.item.VoteAverage > 0 {
		parts = append(parts, fmt.Sprintf("★ %.1f", i.item.VoteAverage))
	}
	return strings.Join(parts, " • ")
}

func (i mediaItem) FilterValue() string { return i.item.Title }

type feedLoadedMsg struct {
	snap browse.Snapshot
	err  error
}

type detailLoadedMsg struct {
	snap browse.DetailSnapshot
	err  error
}

type favoriteToggledMsg struct {
	item     storage.Item
	favorite bool
	err      error
}

type favoritesFilteredMsg struct {
	query string
	items []storage.Item
	err   error
}

type openedMsg struct {
	what string
}

type errorMsg struct {
	err error
}
