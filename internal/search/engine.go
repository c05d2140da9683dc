package search

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/pders01/reel/internal/storage"
)

// Result is a matched favorite with its relevance.
type Result struct {
	Item    storage.Item
	Score   float64
	Matches []Match
}

// Match represents where text was found
type Match struct {
	Field  string // "title", "overview", "year"
	Text   string // matched text snippet
	Weight float64
}

// Engine scores the favorites list in memory; there are few enough items
// that no index is needed.
type Engine struct {
	source Source
}

func NewEngine(source Source) *Engine {
	return &Engine{source: source}
}

// Search ranks favorites against query. Queries shorter than two
// characters return nothing.
func (e *Engine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Result{}, nil
	}

	var results []*Result
	for _, item := range e.source.List() {
		if result := e.searchItem(item, terms); result != nil {
			results = append(results, result)
		}
	}

	// Stable so equal scores keep insertion order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

func (e *Engine) searchItem(item storage.Item, terms []string) *Result {
	var matches []Match
	var totalScore float64

	if titleScore := e.scoreField(item.Title, terms, 4.0); titleScore > 0 {
		matches = append(matches, Match{
			Field:  "title",
			Text:   item.Title,
			Weight: titleScore,
		})
		totalScore += titleScore
	}

	if overviewScore := e.scoreField(item.Overview, terms, 2.0); overviewScore > 0 {
		matches = append(matches, Match{
			Field:  "overview",
			Text:   e.findBestSnippet(item.Overview, terms, 150),
			Weight: overviewScore,
		})
		totalScore += overviewScore
	}

	if yearScore := e.scoreField(item.Year(), terms, 0.5); yearScore > 0 {
		matches = append(matches, Match{
			Field:  "year",
			Text:   item.Year(),
			Weight: yearScore,
		})
		totalScore += yearScore
	}

	if totalScore == 0 {
		return nil
	}
	return &Result{Item: item, Score: totalScore, Matches: matches}
}

// scoreField calculates relevance score for a field
func (e *Engine) scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var score float64
	matchedTerms := 0

	for _, term := range terms {
		termLower := strings.ToLower(term)

		if strings.Contains(lower, termLower) {
			score += 2.0
			matchedTerms++
		}

		for _, word := range words {
			switch {
			case word == termLower:
				score += 1.5
				matchedTerms++
			case strings.HasPrefix(word, termLower) || strings.HasSuffix(word, termLower):
				score += 1.0
				matchedTerms++
			case strings.Contains(word, termLower):
				score += 0.5
				matchedTerms++
			}
		}
	}

	if len(terms) > 1 && matchedTerms > 1 {
		score *= 1.0 + float64(matchedTerms)/float64(len(terms))
	}

	tf := float64(matchedTerms) / float64(len(words))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// findBestSnippet finds the most relevant text snippet containing search terms
func (e *Engine) findBestSnippet(text string, terms []string, maxLength int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	windowSize := maxLength / 8
	if windowSize >= len(words) || windowSize == 0 {
		return truncate(text, maxLength)
	}

	bestScore := 0
	bestStart := 0
	for i := 0; i <= len(words)-windowSize; i++ {
		window := strings.ToLower(strings.Join(words[i:i+windowSize], " "))
		score := 0
		for _, term := range terms {
			if strings.Contains(window, strings.ToLower(term)) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestStart = i
		}
	}

	return truncate(strings.Join(words[bestStart:bestStart+windowSize], " "), maxLength)
}

// tokenize breaks text into lowercase terms, skipping single characters.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	flush := func() {
		if term := current.String(); len([]rune(term)) > 1 {
			terms = append(terms, term)
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			flush()
		}
	}
	flush()

	return terms
}

// truncate limits text to maxLen runes, ending with an ellipsis when cut.
func truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 1 {
		return "…"
	}
	return string(runes[:maxLen-1]) + "…"
}
