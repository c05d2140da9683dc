package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	gojson "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/pders01/reel/internal/config"
	"github.com/pders01/reel/internal/storage"
)

// Endpoint labels used for logging and metrics.
const (
	EndpointSearch   = "search_multi"
	EndpointTrending = "trending"
	EndpointDetails  = "details"
)

// maxBodySize bounds how much of a response is read.
const maxBodySize = 8 << 20

// Recorder receives one observation per request attempt.
type Recorder interface {
	ObserveTMDBRequest(endpoint, outcome string, d time.Duration)
}

type Client struct {
	baseURL      string
	imageBaseURL string
	token        string
	language     string
	includeAdult bool
	maxPages     int
	userAgent    string

	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *log.Logger
	metrics Recorder
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(r Recorder) Option {
	return func(c *Client) { c.metrics = r }
}

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// NewClient builds a client from the tmdb config section. The token is read
// once; an empty token makes every call fail with ErrMissingToken without
// touching the network.
func NewClient(cfg *config.TMDBConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 || maxPages > config.MaxNavigablePages {
		maxPages = config.MaxNavigablePages
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		imageBaseURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
		token:        strings.TrimSpace(cfg.Token),
		language:     cfg.Language,
		includeAdult: cfg.IncludeAdult,
		maxPages:     maxPages,
		userAgent:    cfg.UserAgent,
		http:         &http.Client{Timeout: timeout},
		limiter:      rate.NewLimiter(limit, burst),
		logger:       log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "tmdb",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Client errors say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.HTTPStatus < 500
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return c
}

func (c *Client) HasToken() bool { return c.token != "" }

func (c *Client) ImageBaseURL() string { return c.imageBaseURL }

func (c *Client) MaxPages() int { return c.maxPages }

// SearchMulti runs GET /search/multi. Results may include people; callers
// normalize them away.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) (*PageResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(c.clampPage(page)))
	params.Set("include_adult", strconv.FormatBool(c.includeAdult))
	params.Set("language", c.language)

	var out PageResponse
	if err := c.get(ctx, EndpointSearch, "/search/multi", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Trending runs GET /trending/all/day.
func (c *Client) Trending(ctx context.Context, page int) (*PageResponse, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(c.clampPage(page)))
	params.Set("language", c.language)

	var out PageResponse
	if err := c.get(ctx, EndpointTrending, "/trending/all/day", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Details fetches one movie or series with videos, credits and
// recommendations in a single request.
func (c *Client) Details(ctx context.Context, kind storage.Kind, id int) (*DetailResponse, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("tmdb: invalid kind %q", kind)
	}
	if id <= 0 {
		return nil, fmt.Errorf("tmdb: invalid id %d", id)
	}

	params := url.Values{}
	params.Set("append_to_response", "videos,credits,recommendations")
	params.Set("language", c.language)

	var out DetailResponse
	path := fmt.Sprintf("/%s/%d", kind, id)
	if err := c.get(ctx, EndpointDetails, path, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) clampPage(page int) int {
	if page < 1 {
		return 1
	}
	if page > c.maxPages {
		return c.maxPages
	}
	return page
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	if !c.HasToken() {
		return ErrMissingToken
	}

	start := time.Now()
	body, err := c.fetch(ctx, path, params)
	c.observe(endpoint, err, time.Since(start))
	if err != nil {
		c.logger.Debug("tmdb request failed", "endpoint", endpoint, "path", path, "err", err)
		return err
	}

	if err := gojson.Unmarshal(body, out); err != nil {
		return &TransportError{Op: "decode", Err: err}
	}
	c.logger.Debug("tmdb request", "endpoint", endpoint, "path", path, "elapsed", time.Since(start))
	return nil
}

func (c *Client) fetch(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Op: "wait", Err: err}
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, path, params)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &TransportError{Op: "circuit", Err: err}
	}
	return body, err
}

func (c *Client) do(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "GET " + path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Op: "read", Err: err}
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{HTTPStatus: resp.StatusCode}
		var eb errorBody
		if gojson.Unmarshal(body, &eb) == nil {
			apiErr.Code = eb.StatusCode
			apiErr.Message = eb.StatusMessage
		}
		return nil, apiErr
	}

	return body, nil
}

func (c *Client) observe(endpoint string, err error, d time.Duration) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	var apiErr *APIError
	switch {
	case err == nil:
	case errors.As(err, &apiErr):
		outcome = "api_error"
	default:
		outcome = "transport_error"
	}
	c.metrics.ObserveTMDBRequest(endpoint, outcome, d)
}
