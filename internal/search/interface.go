package search

import "github.com/pders01/reel/internal/storage"

// Searcher defines the minimal search API used by the TUI and CLI.
type Searcher interface {
	Search(query string, limit int) ([]*Result, error)
}

// Source supplies the items to search. *favorites.Store satisfies it.
type Source interface {
	List() []storage.Item
}

// DebugStatser provides lightweight stats for visibility/debugging.
// Implemented by engines that can report index doc counts, etc.
type DebugStatser interface {
	DocCount() (int, error)
}
