package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/reel/internal/browse"
	"github.com/pders01/reel/internal/session"
	"github.com/pders01/reel/internal/storage"
	"github.com/pders01/reel/internal/tmdb"
)

func TestApp_InitFetchesTrending(t *testing.T) {
	ta := newTestApp(t, nil)
	assert.True(t, ta.feedLoading)
	assert.Contains(t, ta.View(), MsgLoading)

	ta.run(ta.Init())

	assert.False(t, ta.feedLoading)
	call, page := ta.catalog.last()
	assert.Equal(t, "trending", call)
	assert.Equal(t, 1, page)

	// People are dropped from the mixed list.
	require.Len(t, ta.homeList.Items(), 2)
	assert.Equal(t, "Clube da Luta", ta.homeList.Items()[0].(mediaItem).item.Title)

	view := ta.View()
	assert.Contains(t, view, MsgTrending)
	assert.Contains(t, view, "Resultados: 24000 • Página 1 de 500")

	st := ta.sess.Current()
	assert.Equal(t, 500, st.Pagination.TotalPages)
	assert.Len(t, st.Results, 2)
}

func TestApp_RestoredSessionSkipsFetch(t *testing.T) {
	ta := newTestApp(t, &session.State{
		Query:      "batman",
		Page:       3,
		Pagination: storage.Pagination{Page: 3, TotalPages: 10, TotalResults: 200},
		Results: []storage.Item{
			{ID: 268, Kind: storage.KindMovie, Title: "Batman", ReleaseDate: "1989-06-23"},
		},
	})

	assert.False(t, ta.feedLoading)
	ta.run(ta.Init())
	assert.Zero(t, ta.catalog.callCount())

	view := ta.View()
	assert.Contains(t, view, `Resultados para "batman"`)
	assert.Contains(t, view, "Página 3 de 10")
	require.Len(t, ta.homeList.Items(), 1)
}

func TestApp_FeedErrorShownInline(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "server message verbatim",
			err:  &tmdb.APIError{HTTPStatus: 401, Code: 7, Message: "Invalid API key: You must be granted a valid key."},
			want: "Invalid API key",
		},
		{
			name: "transport failure falls back",
			err:  &tmdb.TransportError{Op: "trending", Err: errors.New("connection refused")},
			want: tmdb.MsgFeedError,
		},
		{
			name: "missing token",
			err:  tmdb.ErrMissingToken,
			want: tmdb.MsgMissingToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t, nil)
			ta.catalog.err = tt.err

			ta.run(ta.Init())

			assert.False(t, ta.feedLoading)
			assert.Empty(t, ta.homeList.Items())
			assert.Contains(t, ta.View(), tt.want)
		})
	}
}

func TestApp_StaleResponsesDropped(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(ta.Init())
	ta.press(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ViewDetail, ta.view)
	require.Equal(t, 550, ta.detailSnap.ID)

	ta.Update(detailLoadedMsg{
		snap: browse.DetailSnapshot{Kind: storage.KindTV, ID: 1396},
		err:  browse.ErrStale,
	})
	assert.Equal(t, 550, ta.detailSnap.ID)
	require.NotNil(t, ta.detailSnap.Detail)
	assert.Equal(t, "Clube da Luta", ta.detailSnap.Detail.Item.Title)

	before := ta.feedSnap
	ta.Update(feedLoadedMsg{snap: browse.Snapshot{Query: "other"}, err: browse.ErrStale})
	assert.Equal(t, before.Query, ta.feedSnap.Query)
	assert.Len(t, ta.feedSnap.Results, len(before.Results))
}

func TestApp_OpenDetail(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(ta.Init())

	ta.press(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, ViewDetail, ta.view)
	assert.False(t, ta.detailLoading)
	require.NotNil(t, ta.detailSnap.Detail)
	assert.Equal(t, "https://www.youtube.com/watch?v=qtRKdVHc-cE", ta.detailSnap.Detail.TrailerURL)
	require.Len(t, ta.recList.Items(), 1)
	assert.Len(t, ta.history, 1)

	view := ta.View()
	assert.Contains(t, view, "Clube da Luta")
	assert.Contains(t, view, "movie:550")
}

func TestApp_DetailErrorShownInline(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(ta.Init())

	ta.catalog.err = &tmdb.APIError{HTTPStatus: 404, Code: 34, Message: "The resource you requested could not be found."}
	ta.press(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, ViewDetail, ta.view)
	assert.Nil(t, ta.detailSnap.Detail)
	assert.Contains(t, ta.View(), "could not be found")
}

func TestApp_RecommendationsNavigation(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(ta.Init())
	ta.press(tea.KeyMsg{Type: tea.KeyEnter})

	ta.press(tea.KeyMsg{Type: tea.KeyTab})
	require.True(t, ta.recsFocused)

	ta.press(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 807, ta.detailSnap.ID)
	assert.Len(t, ta.history, 2)

	// Back reloads the previous title.
	ta.press(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewDetail, ta.view)
	assert.Equal(t, 550, ta.detailSnap.ID)
	call, _ := ta.catalog.last()
	assert.Equal(t, "movie:550", call)

	ta.press(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewHome, ta.view)
	assert.Empty(t, ta.history)
}

func TestApp_ToggleFavoriteFromHome(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(ta.Init())

	ta.press(runes("f"))

	assert.True(t, ta.favs.IsFavorite(storage.KindMovie, 550))
	assert.Contains(t, ta.status, "adicionado aos favoritos")
	assert.True(t, ta.homeList.Items()[0].(mediaItem).favorite)

	ta.press(runes("f"))
	assert.False(t, ta.favs.IsFavorite(storage.KindMovie, 550))
	assert.Contains(t, ta.status, "removido dos favoritos")
	assert.False(t, ta.homeList.Items()[0].(mediaItem).favorite)
}

func TestApp_ToggleFavoriteFromDetail(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(ta.Init())
	ta.press(tea.KeyMsg{Type: tea.KeyEnter})

	ta.press(runes("f"))
	assert.True(t, ta.detailSnap.Favorite)
	assert.True(t, ta.favs.IsFavorite(storage.KindMovie, 550))
	assert.Contains(t, ta.View(), "♥")

	ta.press(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, ta.homeList.Items()[0].(mediaItem).favorite)
}

func TestApp_FavoritesView(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(ta.Init())

	ta.press(tea.KeyMsg{Type: tea.KeyCtrlF})
	assert.Equal(t, ViewFavorites, ta.view)
	assert.Contains(t, ta.View(), MsgNoFavorites)

	ta.press(tea.KeyMsg{Type: tea.KeyEsc})
	ta.press(runes("f"))
	ta.homeList.Select(1)
	ta.press(runes("f"))

	ta.press(tea.KeyMsg{Type: tea.KeyCtrlF})
	assert.Equal(t, 2, ta.favCount)
	assert.Contains(t, ta.View(), "2 favoritos")

	ta.press(runes("/"))
	require.True(t, ta.filterInput.Focused())

	ta.press(runes("c"))
	assert.Equal(t, 2, ta.favCount)
	ta.press(runes("l"))
	assert.Equal(t, "cl", ta.favQuery)
	require.Equal(t, 1, ta.favCount)
	assert.Equal(t, "Clube da Luta", ta.favList.Items()[0].(mediaItem).item.Title)

	ta.press(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, ta.filterInput.Focused())

	ta.press(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewDetail, ta.view)
	assert.Equal(t, 550, ta.detailSnap.ID)

	ta.press(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewFavorites, ta.view)
	assert.Equal(t, 1, ta.favCount)

	// Removing from the favorites view refilters.
	ta.press(runes("f"))
	assert.Equal(t, 0, ta.favCount)
	assert.Contains(t, ta.View(), MsgNoResults)
}

func TestApp_OpenTrailerAndPoster(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(ta.Init())

	ta.press(tea.KeyMsg{Type: tea.KeyCtrlO})
	require.Len(t, ta.opener.opened, 1)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/fc.jpg", ta.opener.opened[0])
	assert.Contains(t, ta.status, "pôster")

	ta.press(tea.KeyMsg{Type: tea.KeyEnter})
	ta.press(tea.KeyMsg{Type: tea.KeyCtrlT})
	require.Len(t, ta.opener.opened, 2)
	assert.Equal(t, "https://www.youtube.com/watch?v=qtRKdVHc-cE", ta.opener.opened[1])
	assert.Equal(t, "Abrindo trailer…", ta.status)
}

func TestApp_MissingMediaSetsStatus(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(ta.Init())
	ta.homeList.Select(1)

	ta.press(tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.Equal(t, MsgNoPoster, ta.status)

	ta.press(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, 1396, ta.detailSnap.ID)
	ta.press(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, MsgNoTrailer, ta.status)
	assert.Empty(t, ta.opener.opened)
}

func TestApp_OpenerFailureShowsError(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(ta.Init())
	ta.opener.err = errors.New("no player")

	ta.press(tea.KeyMsg{Type: tea.KeyCtrlO})

	require.Error(t, ta.err)
	assert.Contains(t, ta.View(), "no player")

	// Any key clears it.
	ta.press(tea.KeyMsg{Type: tea.KeyDown})
	assert.NoError(t, ta.err)
}

func TestApp_ResizeRerendersDetail(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.run(ta.Init())
	ta.press(tea.KeyMsg{Type: tea.KeyEnter})

	ta.Update(tea.WindowSizeMsg{Width: 60, Height: 20})

	assert.Equal(t, 60, ta.viewport.Width)
	assert.Equal(t, 15, ta.viewport.Height)
	assert.Contains(t, ta.View(), "Clube da Luta")
}
