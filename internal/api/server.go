// Package api serves the home feed, detail pages and favorites as JSON.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pders01/reel/internal/browse"
	"github.com/pders01/reel/internal/config"
	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/metrics"
	"github.com/pders01/reel/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// FavoritesStore is the favorites surface the server needs.
type FavoritesStore interface {
	browse.Favorites
	List() []storage.Item
}

type Deps struct {
	Catalog   browse.Catalog
	Favorites FavoritesStore
	// Session receives the last successful feed; nil disables persistence.
	Session  browse.SessionSaver
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
	Logger   *log.Logger
}

type Server struct {
	cfg    config.ServerConfig
	deps   Deps
	router chi.Router
	srv    *http.Server
}

func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = debuglog.Logger()
	}
	s := &Server{cfg: cfg, deps: deps}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.deps.Logger, s.deps.Metrics))
	r.Use(chimw.Recoverer)

	r.Get("/health", s.handleHealth)
	if s.deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(s.deps.Gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		if s.cfg.RequestsPerMinute > 0 {
			r.Use(httprate.LimitByIP(s.cfg.RequestsPerMinute, time.Minute))
		}
		r.Get("/feed", s.handleFeed)
		r.Get("/favorites", s.handleFavorites)
		r.Post("/favorites/{kind}/{id}", s.handleToggleFavorite)
		r.Get("/{kind}/{id}", s.handleDetail)
	})

	return r
}

func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.srv = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		// Requests outlive ctx so Shutdown can drain them.
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("listening", "addr", ln.Addr().String())
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	s.deps.Logger.Info("shutting down")
	return s.srv.Shutdown(ctx)
}
