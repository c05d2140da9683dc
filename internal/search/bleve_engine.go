package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/storage"
)

// BleveEngine keeps a full-text index of favorites on disk. It listens to the
// favorites store so the index follows every toggle.
type BleveEngine struct {
	source Source
	idx    bleve.Index

	mu    sync.RWMutex
	items map[string]storage.Item
}

// NewBleveEngine creates or opens a Bleve index at indexPath and indexes the
// current favorites.
func NewBleveEngine(source Source, indexPath string) (*BleveEngine, error) {
	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	idx, err := bleve.Open(indexPath)
	if err != nil {
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating index: %w", err)
		}
	}

	be := &BleveEngine{source: source, idx: idx, items: map[string]storage.Item{}}
	if err := be.reindexAll(); err != nil {
		idx.Close()
		return nil, err
	}
	return be, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = true
	title.IncludeTermVectors = true

	overview := bleve.NewTextFieldMapping()
	overview.Analyzer = standard.Name
	overview.Store = false

	kind := bleve.NewKeywordFieldMapping()
	kind.Store = true

	year := bleve.NewKeywordFieldMapping()
	year.Store = true

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("overview", overview)
	dm.AddFieldMappingsAt("kind", kind)
	dm.AddFieldMappingsAt("year", year)

	im.DefaultMapping = dm
	return im
}

func document(item storage.Item) map[string]any {
	return map[string]any{
		"title":    item.Title,
		"overview": item.Overview,
		"kind":     string(item.Kind),
		"year":     item.Year(),
	}
}

// reindexAll drops documents that are no longer favorites and indexes the
// rest in one batch.
func (b *BleveEngine) reindexAll() error {
	items := b.source.List()
	keep := make(map[string]storage.Item, len(items))
	for _, it := range items {
		keep[string(it.Key())] = it
	}

	batch := b.idx.NewBatch()

	count, err := b.idx.DocCount()
	if err != nil {
		return err
	}
	if count > 0 {
		req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
		res, err := b.idx.Search(req)
		if err != nil {
			return err
		}
		for _, h := range res.Hits {
			if _, ok := keep[h.ID]; !ok {
				batch.Delete(h.ID)
			}
		}
	}

	for key, it := range keep {
		if err := batch.Index(key, document(it)); err != nil {
			return err
		}
	}
	if err := b.idx.Batch(batch); err != nil {
		return err
	}

	b.mu.Lock()
	b.items = keep
	b.mu.Unlock()
	return nil
}

func (b *BleveEngine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		qt := bleve.NewMatchQuery(tok)
		qt.SetField("title")
		qt.SetBoost(4.0)
		qs = append(qs, qt)
		qtp := bleve.NewPrefixQuery(tok)
		qtp.SetField("title")
		qtp.SetBoost(3.5)
		qs = append(qs, qtp)

		qo := bleve.NewMatchQuery(tok)
		qo.SetField("overview")
		qo.SetBoost(2.0)
		qs = append(qs, qo)
		qop := bleve.NewPrefixQuery(tok)
		qop.SetField("overview")
		qop.SetBoost(1.8)
		qs = append(qs, qop)

		if _, err := strconv.Atoi(tok); err == nil && len(tok) == 4 {
			qy := bleve.NewTermQuery(tok)
			qy.SetField("year")
			qy.SetBoost(0.5)
			qs = append(qs, qy)
		}
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		item, ok := b.items[h.ID]
		if !ok {
			continue
		}
		out = append(out, &Result{Item: item, Score: h.Score})
	}
	return out, nil
}

// OnFavoriteAdded indexes a new favorite.
func (b *BleveEngine) OnFavoriteAdded(item storage.Item) {
	key := string(item.Key())
	if err := b.idx.Index(key, document(item)); err != nil {
		debuglog.Warnf("search: indexing %s: %v", key, err)
		return
	}
	b.mu.Lock()
	b.items[key] = item
	b.mu.Unlock()
}

// OnFavoriteRemoved drops a favorite from the index.
func (b *BleveEngine) OnFavoriteRemoved(key storage.FavoriteKey) {
	if err := b.idx.Delete(string(key)); err != nil {
		debuglog.Warnf("search: deleting %s: %v", key, err)
	}
	b.mu.Lock()
	delete(b.items, string(key))
	b.mu.Unlock()
}

// DocCount reports total documents in the index.
func (b *BleveEngine) DocCount() (int, error) {
	n, err := b.idx.DocCount()
	return int(n), err
}

func (b *BleveEngine) Close() error {
	return b.idx.Close()
}
