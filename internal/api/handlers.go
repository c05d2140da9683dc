package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	gojson "github.com/goccy/go-json"

	"github.com/pders01/reel/internal/browse"
	"github.com/pders01/reel/internal/storage"
	"github.com/pders01/reel/internal/tmdb"
	"github.com/pders01/reel/internal/validation"
)

const maxRequestBody = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

type favoritesResponse struct {
	Items []storage.Item `json:"items"`
	Count int            `json:"count"`
}

type toggleResponse struct {
	Key      storage.FavoriteKey `json:"key"`
	Favorite bool                `json:"favorite"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleFeed serves the home view: search results for ?query=, trending
// otherwise.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	page, err := validation.ParsePage(r.URL.Query().Get("page"), s.deps.Catalog.MaxPages())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctrl := browse.NewSearchController(s.deps.Catalog, s.deps.Session)
	ctrl.SetQuery(r.URL.Query().Get("query"))
	ctrl.SetPage(page)

	snap, err := ctrl.Fetch(r.Context())
	if err != nil {
		s.writeUpstreamError(w, err, snap.ErrMessage)
		return
	}
	if snap.Results == nil {
		snap.Results = []storage.Item{}
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleFavorites(w http.ResponseWriter, _ *http.Request) {
	items := s.deps.Favorites.List()
	if items == nil {
		items = []storage.Item{}
	}
	writeJSON(w, http.StatusOK, favoritesResponse{Items: items, Count: len(items)})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	kind, id, err := validation.ParseRoute(chi.URLParam(r, "kind"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctrl := browse.NewDetailController(s.deps.Catalog, s.deps.Favorites)
	snap, err := ctrl.Load(r.Context(), kind, id)
	if err != nil {
		s.writeUpstreamError(w, err, snap.ErrMessage)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleToggleFavorite flips a title. The body may carry the item; without
// one the title is fetched first so the stored entry is complete.
func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	kind, id, err := validation.ParseRoute(chi.URLParam(r, "kind"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read body")
		return
	}

	var favorite bool
	if len(strings.TrimSpace(string(body))) > 0 {
		var item storage.Item
		if err := gojson.Unmarshal(body, &item); err != nil {
			writeError(w, http.StatusBadRequest, "invalid item")
			return
		}
		item.Kind, item.ID = kind, id
		favorite, err = s.deps.Favorites.Toggle(item)
	} else {
		ctrl := browse.NewDetailController(s.deps.Catalog, s.deps.Favorites)
		snap, loadErr := ctrl.Load(r.Context(), kind, id)
		if loadErr != nil {
			s.writeUpstreamError(w, loadErr, snap.ErrMessage)
			return
		}
		favorite, err = ctrl.ToggleFavorite()
	}
	if err != nil {
		s.deps.Logger.Error("toggling favorite", "kind", kind, "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "could not save favorites")
		return
	}

	writeJSON(w, http.StatusOK, toggleResponse{Key: storage.ItemKey(kind, id), Favorite: favorite})
}

// writeUpstreamError maps a catalog failure to a status. msg is the text the
// views would show.
func (s *Server) writeUpstreamError(w http.ResponseWriter, err error, msg string) {
	if msg == "" {
		msg = err.Error()
	}

	var apiErr *tmdb.APIError
	switch {
	case errors.Is(err, tmdb.ErrMissingToken):
		writeError(w, http.StatusServiceUnavailable, msg)
	case errors.As(err, &apiErr) && apiErr.HTTPStatus == http.StatusNotFound:
		writeError(w, http.StatusNotFound, msg)
	case tmdb.IsUpstream(err):
		s.deps.Logger.Warn("upstream failure", "err", err)
		writeError(w, http.StatusBadGateway, msg)
	default:
		s.deps.Logger.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, msg)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := gojson.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
