package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	gojson "github.com/goccy/go-json"

	"github.com/pders01/reel/internal/browse"
	"github.com/pders01/reel/internal/storage"
	"github.com/pders01/reel/internal/tmdb"
)

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}

func writeJSON(w io.Writer, v any) error {
	data, err := gojson.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func rating(v float64) string {
	if v <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printItems(w io.Writer, items []storage.Item, favs map[storage.FavoriteKey]struct{}) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "KIND\tID\tTITLE\tYEAR\tRATING\tFAV")
	for _, it := range items {
		mark := ""
		if _, ok := favs[it.Key()]; ok {
			mark = "♥"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			it.Kind, it.ID, it.Title, orDash(it.Year()), rating(it.VoteAverage), mark)
	}
	return tw.Flush()
}

func printFeed(w io.Writer, snap browse.Snapshot, favs map[storage.FavoriteKey]struct{}) error {
	if len(snap.Results) == 0 {
		_, err := fmt.Fprintln(w, "No results")
		return err
	}
	if err := printItems(w, snap.Results, favs); err != nil {
		return err
	}
	pages := max(snap.Pagination.TotalPages, 1)
	_, err := fmt.Fprintf(w, "\n%d results • page %d of %d\n", snap.Pagination.TotalResults, snap.Page, pages)
	return err
}

func printFavorites(w io.Writer, items []storage.Item) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No favorites")
		return err
	}
	all := make(map[storage.FavoriteKey]struct{}, len(items))
	for _, it := range items {
		all[it.Key()] = struct{}{}
	}
	return printItems(w, items, all)
}

func printDetail(w io.Writer, d tmdb.Detail, favorite bool) error {
	title := d.Item.Title
	if d.Year != "" {
		title = fmt.Sprintf("%s (%s)", title, d.Year)
	}
	if favorite {
		title = "♥ " + title
	}
	fmt.Fprintln(w, title)
	if d.Tagline != "" {
		fmt.Fprintln(w, d.Tagline)
	}
	fmt.Fprintln(w)

	tw := newTable(w)
	fmt.Fprintf(tw, "Kind\t%s\n", d.Item.Kind.Label())
	fmt.Fprintf(tw, "Rating\t%s\n", rating(d.Item.VoteAverage))
	if d.Runtime > 0 {
		fmt.Fprintf(tw, "Runtime\t%d min\n", d.Runtime)
	}
	if len(d.Genres) > 0 {
		fmt.Fprintf(tw, "Genres\t%s\n", strings.Join(d.Genres, ", "))
	}
	fmt.Fprintf(tw, "Trailer\t%s\n", orDash(d.TrailerURL))
	fmt.Fprintf(tw, "Poster\t%s\n", orDash(d.Item.PosterURL))
	if err := tw.Flush(); err != nil {
		return err
	}

	if d.Item.Overview != "" {
		fmt.Fprintf(w, "\n%s\n", d.Item.Overview)
	}

	if len(d.Cast) > 0 {
		fmt.Fprintln(w, "\nCast")
		tw = newTable(w)
		for _, c := range d.Cast {
			fmt.Fprintf(tw, "  %s\t%s\n", c.Name, c.Character)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(d.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations")
		return printItems(w, d.Recommendations, nil)
	}
	return nil
}
