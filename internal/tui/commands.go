package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/storage"
)

const favoritesSearchLimit = 100

func (a *App) fetchFeed() tea.Cmd {
	feed := a.feed
	return func() tea.Msg {
		snap, err := feed.Fetch(context.Background())
		return feedLoadedMsg{snap: snap, err: err}
	}
}

func (a *App) loadDetail(kind storage.Kind, id int) tea.Cmd {
	detail := a.detail
	return func() tea.Msg {
		snap, err := detail.Load(context.Background(), kind, id)
		return detailLoadedMsg{snap: snap, err: err}
	}
}

func (a *App) toggleFavorite(item storage.Item) tea.Cmd {
	favs := a.favorites
	return func() tea.Msg {
		added, err := favs.Toggle(item)
		return favoriteToggledMsg{item: item, favorite: added, err: err}
	}
}

func (a *App) toggleDetailFavorite() tea.Cmd {
	detail := a.detail
	return func() tea.Msg {
		snap := detail.Snapshot()
		added, err := detail.ToggleFavorite()
		var item storage.Item
		if snap.Detail != nil {
			item = snap.Detail.Item
		}
		return favoriteToggledMsg{item: item, favorite: added, err: err}
	}
}

// filterFavorites lists every favorite for a short query and ranks them
// with the configured engine otherwise.
func (a *App) filterFavorites(query string) tea.Cmd {
	favs, searcher := a.favorites, a.searcher
	return func() tea.Msg {
		if searcher == nil || len(strings.TrimSpace(query)) < 2 {
			return favoritesFilteredMsg{query: query, items: favs.List()}
		}
		results, err := searcher.Search(query, favoritesSearchLimit)
		if err != nil {
			return favoritesFilteredMsg{query: query, err: err}
		}
		items := make([]storage.Item, 0, len(results))
		for _, r := range results {
			items = append(items, r.Item)
		}
		return favoritesFilteredMsg{query: query, items: items}
	}
}

func (a *App) openURL(url, what string) tea.Cmd {
	opener := a.opener
	return func() tea.Msg {
		if opener == nil {
			return errorMsg{err: wrapErr("abrir "+what, errNoOpener)}
		}
		if err := opener.Open(url); err != nil {
			debuglog.Warnf("tui: opening %s: %v", url, err)
			return errorMsg{err: wrapErr("abrir "+what, err)}
		}
		return openedMsg{what: what}
	}
}
