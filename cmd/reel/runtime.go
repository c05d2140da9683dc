package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pders01/reel/internal/config"
	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/favorites"
	"github.com/pders01/reel/internal/metrics"
	"github.com/pders01/reel/internal/search"
	"github.com/pders01/reel/internal/session"
	"github.com/pders01/reel/internal/storage"
	"github.com/pders01/reel/internal/tmdb"
	"github.com/pders01/reel/internal/validation"
)

type runMode int

const (
	modeTUI runMode = iota
	modeCLI
	modeServe
)

// runtime holds everything a command needs, opened in dependency order.
type runtime struct {
	cfg    *config.Config
	logger *log.Logger
	store  *storage.Store
	favs   *favorites.Store
	sess   *session.Store
	client *tmdb.Client

	registry *prometheus.Registry
	metrics  *metrics.Collector
	index    *search.BleveEngine
}

func openRuntime(opts *rootOptions, mode runMode, stderr io.Writer) (*runtime, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if opts.dbPath != "" {
		p, err := validation.ExpandPath(opts.dbPath)
		if err != nil {
			return nil, fmt.Errorf("invalid --db: %w", err)
		}
		cfg.Database.Path = p
	}

	rt := &runtime{cfg: cfg}
	level := debuglog.ParseLogLevel(cfg.Log.Level)
	if mode == modeTUI {
		// The TUI owns the terminal; logs go to a file.
		if err := debuglog.Setup(level, cfg.Log.File); err != nil {
			return nil, err
		}
		rt.logger = debuglog.Logger()
	} else {
		if mode == modeServe && level == debuglog.LevelOff {
			level = debuglog.LevelInfo
		}
		rt.logger = newStderrLogger(stderr, level)
		debuglog.Use(rt.logger, level)
	}

	if err := validation.EnsureParentDir(cfg.Database.Path); err != nil {
		rt.Close()
		return nil, err
	}
	rt.store, err = storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.favs = favorites.New(rt.store)
	rt.favs.Load()
	rt.sess = session.New(rt.store)

	clientOpts := []tmdb.Option{tmdb.WithLogger(rt.logger)}
	if mode == modeServe {
		rt.registry = prometheus.NewRegistry()
		rt.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		rt.metrics = metrics.NewCollector(rt.registry)
		rt.metrics.SetFavorites(rt.favs.Len())
		rt.favs.AddListener(rt.metrics.FavoritesListener(rt.favs.Len))
		clientOpts = append(clientOpts, tmdb.WithMetrics(rt.metrics))
	}
	rt.client = tmdb.NewClient(&cfg.TMDB, clientOpts...)

	if !cfg.HasToken() {
		rt.logger.Warn("no TMDB token configured; set TMDB_TOKEN in .env or tmdb.token in the config")
	}

	return rt, nil
}

// favoritesSearcher returns the engine used to filter favorites. The bleve
// index holds an exclusive lock, so only the long-running TUI opens it.
func (rt *runtime) favoritesSearcher(persistent bool) search.Searcher {
	if persistent && rt.cfg.Database.SearchIndex != "" {
		be, err := search.NewBleveEngine(rt.favs, rt.cfg.Database.SearchIndex)
		if err == nil {
			rt.index = be
			rt.favs.AddListener(be)
			return be
		}
		rt.logger.Warn("search index unavailable, using in-memory search", "err", err)
	}
	return search.NewEngine(rt.favs)
}

func (rt *runtime) Close() {
	if rt.index != nil {
		if err := rt.index.Close(); err != nil {
			rt.logger.Warn("closing search index", "err", err)
		}
	}
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			rt.logger.Warn("closing database", "err", err)
		}
	}
	debuglog.Close()
}

func newStderrLogger(w io.Writer, level debuglog.LogLevel) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "reel",
	})
	l.SetLevel(level.Charm())
	return l
}
