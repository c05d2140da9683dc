package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates movie entries from television series.
type Kind string

const (
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
)

// ParseKind accepts the catalog's media_type values.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindMovie:
		return KindMovie, nil
	case KindTV:
		return KindTV, nil
	default:
		return "", fmt.Errorf("unknown kind %q", s)
	}
}

func (k Kind) Valid() bool {
	return k == KindMovie || k == KindTV
}

// Label is the short human name used in lists.
func (k Kind) Label() string {
	if k == KindTV {
		return "Série"
	}
	return "Filme"
}

// FavoriteKey identifies a catalog item across the whole system.
type FavoriteKey string

// ItemKey builds the composite key for kind and id, e.g. "movie:27205".
func ItemKey(kind Kind, id int) FavoriteKey {
	return FavoriteKey(string(kind) + ":" + strconv.Itoa(id))
}

// Item is the normalized display record. Only these fields are stored for a
// favorite.
type Item struct {
	ID          int     `json:"id"`
	Kind        Kind    `json:"kind"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	VoteAverage float64 `json:"vote_average,omitempty"`
	PosterURL   string  `json:"poster_url,omitempty"`
}

func (i Item) Key() FavoriteKey {
	return ItemKey(i.Kind, i.ID)
}

// Year returns the first four characters of the release date, if any.
func (i Item) Year() string {
	if len(i.ReleaseDate) >= 4 {
		return i.ReleaseDate[:4]
	}
	return ""
}

type Pagination struct {
	Page         int `json:"page"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
}
