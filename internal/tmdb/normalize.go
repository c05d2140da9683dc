package tmdb

import (
	"github.com/pders01/reel/internal/config"
	"github.com/pders01/reel/internal/storage"
)

const (
	posterSize   = "w500"
	backdropSize = "original"

	maxCast            = 10
	maxRecommendations = 12
)

// Cast is a credited performer on the detail page.
type Cast struct {
	Name      string `json:"name"`
	Character string `json:"character,omitempty"`
}

// Detail is the normalized detail page.
type Detail struct {
	Item            storage.Item   `json:"item"`
	Tagline         string         `json:"tagline,omitempty"`
	BackdropURL     string         `json:"backdrop_url,omitempty"`
	Year            string         `json:"year,omitempty"`
	Runtime         int            `json:"runtime,omitempty"`
	Genres          []string       `json:"genres,omitempty"`
	TrailerURL      string         `json:"trailer_url,omitempty"`
	Cast            []Cast         `json:"cast,omitempty"`
	Recommendations []storage.Item `json:"recommendations"`
}

// Stars is the rating on a five-star scale.
func (d Detail) Stars() float64 {
	return d.Item.VoteAverage / 2
}

func imageURL(base, size, path string) string {
	if path == "" {
		return ""
	}
	return base + "/" + size + path
}

func toItem(r Result, kind storage.Kind, imageBase string) storage.Item {
	title := r.Title
	if title == "" {
		title = r.Name
	}
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}
	return storage.Item{
		ID:          r.ID,
		Kind:        kind,
		Title:       title,
		Overview:    r.Overview,
		ReleaseDate: date,
		VoteAverage: r.VoteAverage,
		PosterURL:   imageURL(imageBase, posterSize, r.PosterPath),
	}
}

// NormalizeResults maps a mixed result list to display records, dropping
// anything that is not a movie or a series (people, collections).
func NormalizeResults(raw []Result, imageBase string) []storage.Item {
	items := make([]storage.Item, 0, len(raw))
	for _, r := range raw {
		kind, err := storage.ParseKind(r.MediaType)
		if err != nil {
			continue
		}
		items = append(items, toItem(r, kind, imageBase))
	}
	return items
}

// NormalizeRecommendations tags every entry with kind; TMDB recommends
// titles of the same kind as the page they belong to.
func NormalizeRecommendations(raw []Result, kind storage.Kind, imageBase string) []storage.Item {
	items := make([]storage.Item, 0, len(raw))
	for _, r := range raw {
		items = append(items, toItem(r, kind, imageBase))
	}
	return items
}

// NormalizeDetail builds the detail page for one item of the given kind.
func NormalizeDetail(raw *DetailResponse, kind storage.Kind, imageBase string) Detail {
	item := toItem(Result{
		ID:           raw.ID,
		Title:        raw.Title,
		Name:         raw.Name,
		Overview:     raw.Overview,
		ReleaseDate:  raw.ReleaseDate,
		FirstAirDate: raw.FirstAirDate,
		VoteAverage:  raw.VoteAverage,
		PosterPath:   raw.PosterPath,
	}, kind, imageBase)

	d := Detail{
		Item:        item,
		Tagline:     raw.Tagline,
		BackdropURL: imageURL(imageBase, backdropSize, raw.BackdropPath),
		Year:        item.Year(),
		Runtime:     raw.Runtime,
		TrailerURL:  trailerURL(raw.Videos.Results),
	}
	if d.Runtime == 0 && len(raw.EpisodeRunTime) > 0 {
		d.Runtime = raw.EpisodeRunTime[0]
	}

	for _, g := range raw.Genres {
		d.Genres = append(d.Genres, g.Name)
	}

	for i, c := range raw.Credits.Cast {
		if i == maxCast {
			break
		}
		d.Cast = append(d.Cast, Cast{Name: c.Name, Character: c.Character})
	}

	recs := raw.Recommendations.Results
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	d.Recommendations = NormalizeRecommendations(recs, kind, imageBase)

	return d
}

// trailerURL returns the first YouTube trailer or teaser.
func trailerURL(videos []Video) string {
	for _, v := range videos {
		if v.Site == "YouTube" && (v.Type == "Trailer" || v.Type == "Teaser") && v.Key != "" {
			return "https://www.youtube.com/watch?v=" + v.Key
		}
	}
	return ""
}

// ClampPages caps the provider's total page count at max, falling back to
// the TMDB limit when max is not positive.
func ClampPages(total, max int) int {
	if max <= 0 || max > config.MaxNavigablePages {
		max = config.MaxNavigablePages
	}
	if total < 0 {
		return 0
	}
	if total > max {
		return max
	}
	return total
}
