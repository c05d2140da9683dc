// Package metrics exposes prometheus collectors for catalog calls, the JSON
// server and the favorites list.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pders01/reel/internal/storage"
)

type Collector struct {
	tmdbRequests *prometheus.CounterVec
	tmdbDuration *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
	favorites    prometheus.Gauge
}

// NewCollector registers all reel collectors on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		tmdbRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reel_tmdb_requests_total",
			Help: "Catalog API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		tmdbDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reel_tmdb_request_duration_seconds",
			Help:    "Catalog API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reel_http_requests_total",
			Help: "JSON server responses by route pattern and status.",
		}, []string{"route", "status"}),
		favorites: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reel_favorites_total",
			Help: "Titles currently saved as favorites.",
		}),
	}

	reg.MustRegister(c.tmdbRequests, c.tmdbDuration, c.httpRequests, c.favorites)
	return c
}

// ObserveTMDBRequest records one catalog call.
func (c *Collector) ObserveTMDBRequest(endpoint, outcome string, d time.Duration) {
	c.tmdbRequests.WithLabelValues(endpoint, outcome).Inc()
	c.tmdbDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (c *Collector) ObserveHTTPRequest(route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (c *Collector) SetFavorites(n int) {
	c.favorites.Set(float64(n))
}

// FavoritesListener keeps the favorites gauge in step with a store.
type FavoritesListener struct {
	c     *Collector
	count func() int
}

func (c *Collector) FavoritesListener(count func() int) *FavoritesListener {
	c.SetFavorites(count())
	return &FavoritesListener{c: c, count: count}
}

func (l *FavoritesListener) OnFavoriteAdded(storage.Item) { l.c.SetFavorites(l.count()) }

func (l *FavoritesListener) OnFavoriteRemoved(storage.FavoriteKey) { l.c.SetFavorites(l.count()) }

// Handler serves the scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
