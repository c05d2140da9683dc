package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/pders01/reel/internal/tmdb"
)

// detailMarkdown lays out a detail page for glamour. maxRecs <= 0 lists
// every recommendation.
func detailMarkdown(d tmdb.Detail, favorite bool, maxRecs int) string {
	var b strings.Builder

	title := d.Item.Title
	if d.Year != "" {
		title = fmt.Sprintf("%s (%s)", title, d.Year)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if d.Tagline != "" {
		fmt.Fprintf(&b, "*%s*\n\n", d.Tagline)
	}

	meta := []string{d.Item.Kind.Label()}
	if d.Item.VoteAverage > 0 {
		meta = append(meta, fmt.Sprintf("%s %.1f/10", stars(d.Stars()), d.Item.VoteAverage))
	}
	if d.Runtime > 0 {
		meta = append(meta, formatRuntime(d.Runtime))
	}
	if len(d.Genres) > 0 {
		meta = append(meta, strings.Join(d.Genres, ", "))
	}
	if favorite {
		meta = append(meta, "♥ favorito")
	}
	b.WriteString(strings.Join(meta, " · "))
	b.WriteString("\n\n## Sinopse\n\n")
	if strings.TrimSpace(d.Item.Overview) == "" {
		b.WriteString(MsgNoSynopsis)
	} else {
		b.WriteString(d.Item.Overview)
	}
	b.WriteString("\n\n")

	if len(d.Cast) > 0 {
		b.WriteString("## Elenco\n\n")
		for _, c := range d.Cast {
			if c.Character != "" {
				fmt.Fprintf(&b, "- **%s** como %s\n", c.Name, c.Character)
			} else {
				fmt.Fprintf(&b, "- **%s**\n", c.Name)
			}
		}
		b.WriteString("\n")
	}

	if d.TrailerURL != "" {
		fmt.Fprintf(&b, "**Trailer:** %s\n\n", d.TrailerURL)
	}

	b.WriteString("## Recomendações\n\n")
	recs := d.Recommendations
	if maxRecs > 0 && len(recs) > maxRecs {
		recs = recs[:maxRecs]
	}
	if len(recs) == 0 {
		b.WriteString(MsgNoRecommendation + "\n")
	}
	for i, r := range recs {
		line := r.Title
		if y := r.Year(); y != "" {
			line = fmt.Sprintf("%s (%s)", line, y)
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, line)
	}

	return b.String()
}

// stars renders a 0-5 rating as five glyphs, rounding to the nearest star.
func stars(rating float64) string {
	n := int(math.Round(rating))
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func formatRuntime(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dmin", minutes)
	}
	return fmt.Sprintf("%dh %02dmin", minutes/60, minutes%60)
}
