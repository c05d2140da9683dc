package validation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/pders01/reel/internal/storage"
)

// MaxQueryLength bounds the search text sent to the catalog.
const MaxQueryLength = 256

// SanitizeQuery trims the query, drops control characters, collapses runs of
// whitespace and truncates to MaxQueryLength runes.
func SanitizeQuery(s string) string {
	var b strings.Builder
	space := false
	n := 0
	for _, r := range strings.TrimSpace(s) {
		if n == MaxQueryLength {
			break
		}
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
			n++
			if n == MaxQueryLength {
				break
			}
		}
		space = false
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// ParseRoute validates the kind and id of a detail route.
func ParseRoute(kind, id string) (storage.Kind, int, error) {
	k, err := storage.ParseKind(kind)
	if err != nil {
		return "", 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || n <= 0 {
		return "", 0, fmt.Errorf("invalid id %q", id)
	}
	return k, n, nil
}

// ParsePage parses a page parameter. Empty means page 1; values past max
// are clamped.
func ParsePage(s string, max int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, nil
	}
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 {
		return 0, fmt.Errorf("invalid page %q", s)
	}
	if max > 0 && p > max {
		p = max
	}
	return p, nil
}
