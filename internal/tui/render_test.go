package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pders01/reel/internal/storage"
	"github.com/pders01/reel/internal/tmdb"
)

func TestDetailMarkdown(t *testing.T) {
	d := tmdb.Detail{
		Item: storage.Item{
			ID: 27205, Kind: storage.KindMovie, Title: "A Origem",
			Overview: "Dom Cobb é um ladrão.", ReleaseDate: "2010-07-15", VoteAverage: 8.4,
		},
		Tagline:    "Sua mente é a cena do crime.",
		Year:       "2010",
		Runtime:    148,
		Genres:     []string{"Ação", "Ficção científica"},
		TrailerURL: "https://www.youtube.com/watch?v=abc",
		Cast: []tmdb.Cast{
			{Name: "Leonardo DiCaprio", Character: "Dom Cobb"},
			{Name: "Elliot Page"},
		},
		Recommendations: []storage.Item{
			{ID: 157336, Kind: storage.KindMovie, Title: "Interestelar", ReleaseDate: "2014-11-05"},
			{ID: 155, Kind: storage.KindMovie, Title: "Batman: O Cavaleiro das Trevas"},
			{ID: 1124, Kind: storage.KindMovie, Title: "O Grande Truque"},
		},
	}

	md := detailMarkdown(d, true, 2)

	assert.Contains(t, md, "# A Origem (2010)")
	assert.Contains(t, md, "*Sua mente é a cena do crime.*")
	assert.Contains(t, md, "Filme · ★★★★☆ 8.4/10 · 2h 28min · Ação, Ficção científica · ♥ favorito")
	assert.Contains(t, md, "Dom Cobb é um ladrão.")
	assert.Contains(t, md, "- **Leonardo DiCaprio** como Dom Cobb")
	assert.Contains(t, md, "- **Elliot Page**\n")
	assert.Contains(t, md, "**Trailer:** https://www.youtube.com/watch?v=abc")
	assert.Contains(t, md, "1. Interestelar (2014)")
	assert.Contains(t, md, "2. Batman: O Cavaleiro das Trevas\n")
	assert.NotContains(t, md, "O Grande Truque")
}

func TestDetailMarkdown_Sparse(t *testing.T) {
	d := tmdb.Detail{Item: storage.Item{ID: 1, Kind: storage.KindTV, Title: "Sem Dados"}}

	md := detailMarkdown(d, false, 0)

	assert.True(t, strings.HasPrefix(md, "# Sem Dados\n"))
	assert.Contains(t, md, MsgNoSynopsis)
	assert.Contains(t, md, MsgNoRecommendation)
	assert.NotContains(t, md, "Elenco")
	assert.NotContains(t, md, "Trailer")
	assert.NotContains(t, md, "favorito")
	assert.Contains(t, md, "Série\n")
}

func TestStars(t *testing.T) {
	tests := []struct {
		rating float64
		want   string
	}{
		{0, "☆☆☆☆☆"},
		{2.4, "★★☆☆☆"},
		{4.2, "★★★★☆"},
		{4.5, "★★★★★"},
		{7, "★★★★★"},
		{-1, "☆☆☆☆☆"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stars(tt.rating), "rating %.1f", tt.rating)
	}
}

func TestFormatRuntime(t *testing.T) {
	assert.Equal(t, "45min", formatRuntime(45))
	assert.Equal(t, "1h 00min", formatRuntime(60))
	assert.Equal(t, "2h 19min", formatRuntime(139))
}

func TestStatusMessages(t *testing.T) {
	assert.Equal(t, "Resultados: 24000 • Página 3 de 500", MsgFooter(24000, 3, 500))
	assert.Equal(t, "Resultados: 0 • Página 1 de 1", MsgFooter(0, 1, 0))
	assert.Equal(t, `Resultados para "duna"`, MsgSearchHeader("  duna "))
	assert.Equal(t, "1 favorito", MsgFavoritesCount(1))
	assert.Equal(t, "3 favoritos", MsgFavoritesCount(3))
	assert.Contains(t, MsgFavoriteToggled("Duna", true), "adicionado")
	assert.Contains(t, MsgFavoriteToggled("Duna", false), "removido")
}

func TestMediaItem(t *testing.T) {
	it := mediaItem{item: storage.Item{
		ID: 550, Kind: storage.KindMovie, Title: "Clube da Luta", ReleaseDate: "1999-10-15", VoteAverage: 8.4,
	}}
	assert.Equal(t, "Clube da Luta", it.Title())
	assert.Equal(t, "Filme • 1999 • ★ 8.4", it.Description())
	assert.Equal(t, "Clube da Luta", it.FilterValue())

	it.favorite = true
	assert.Contains(t, it.Title(), "♥")

	empty := mediaItem{item: storage.Item{Kind: storage.KindTV}}
	assert.Equal(t, "(sem título)", empty.Title())
	assert.Equal(t, "Série", empty.Description())
}

func TestViewString(t *testing.T) {
	assert.Equal(t, "home", ViewHome.String())
	assert.Equal(t, "favorites", ViewFavorites.String())
	assert.Equal(t, "unknown", View(99).String())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		width  int
		end    string
		middle string
	}{
		{name: "fits", in: "Alien", width: 10, end: "Alien", middle: "Alien"},
		{name: "ascii", in: "Breaking Bad", width: 6, end: "Break…", middle: "Br…Bad"},
		{name: "wide runes", in: "千と千尋の神隠し", width: 9, end: "千と千尋…", middle: "千と…隠し"},
		{name: "one cell", in: "Breaking Bad", width: 1, end: "…", middle: "…"},
		{name: "no room", in: "Breaking Bad", width: 0, end: "", middle: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.end, truncateEnd(tt.in, tt.width))
			assert.Equal(t, tt.middle, truncateMiddle(tt.in, tt.width))
		})
	}
}
