package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgLoading          = "Carregando…"
	MsgNoResults        = "Nenhum resultado encontrado"
	MsgNoFavorites      = "Nenhum favorito ainda"
	MsgNoTrailer        = "Trailer indisponível"
	MsgNoPoster         = "Pôster indisponível"
	MsgNoSynopsis       = "Sinopse indisponível."
	MsgNoRecommendation = "Nenhuma recomendação."
	MsgTrending         = "Em alta hoje"
)

// MsgFooter is the pagination line under the home list.
func MsgFooter(totalResults, page, totalPages int) string {
	if totalPages < 1 {
		totalPages = 1
	}
	return fmt.Sprintf("Resultados: %d • Página %d de %d", totalResults, page, totalPages)
}

func MsgSearchHeader(query string) string {
	return fmt.Sprintf("Resultados para \"%s\"", strings.TrimSpace(query))
}

func MsgFavoriteToggled(title string, added bool) string {
	if added {
		return fmt.Sprintf("♥ %s adicionado aos favoritos", title)
	}
	return fmt.Sprintf("%s removido dos favoritos", title)
}

func MsgFavoritesCount(n int) string {
	if n == 1 {
		return "1 favorito"
	}
	return fmt.Sprintf("%d favoritos", n)
}
