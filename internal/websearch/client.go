package websearch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/contact-discovery/internal/cache"
	"github.com/octobees/contact-discovery/internal/config"
	"github.com/octobees/contact-discovery/internal/entity"
)

// Client is the shared search dependency. It returns an empty list whenever
// the backend is unconfigured or fails.
type Client struct {
	backend    Backend
	store      cache.Store
	ttl        time.Duration
	maxResults int
	logger     *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithCache stores successful responses in store for ttl.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(c *Client) {
		if store != nil && ttl > 0 {
			c.store = store
			c.ttl = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxResults caps how many results are requested upstream (1..10).
func WithMaxResults(n int) Option {
	return func(c *Client) {
		if n > 0 && n <= maxResults {
			c.maxResults = n
		}
	}
}

// NewClient wraps backend. A nil backend yields a client that always returns
// an empty list.
func NewClient(backend Backend, opts ...Option) *Client {
	c := &Client{
		backend:    backend,
		store:      cache.Noop{},
		maxResults: maxResults,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.backend == nil {
		c.logger.Warn("web search disabled: no backend credential configured")
	}
	return c
}

// NewFromConfig selects the backend named in cfg. Missing credentials are a
// routing decision rather than an error.
func NewFromConfig(ctx context.Context, cfg config.SearchConfig, opts ...Option) *Client {
	var backend Backend
	var buildErr error
	if cfg.SearchAvailable() {
		switch cfg.Backend {
		case BackendGoogle:
			google, err := NewGoogleBackend(ctx, cfg.GoogleAPIKey, cfg.GoogleCX, "")
			if err != nil {
				buildErr = err
			} else {
				backend = google
			}
		default:
			backend = NewBraveBackend(cfg.BraveAPIKey, cfg.Timeout)
		}
	}
	if cfg.MaxResults > 0 {
		opts = append([]Option{WithMaxResults(cfg.MaxResults)}, opts...)
	}
	client := NewClient(backend, opts...)
	if buildErr != nil {
		client.logger.Warn("web search backend unavailable", zap.String("backend", cfg.Backend), zap.Error(buildErr))
	}
	return client
}

// Available reports whether a backend is configured.
func (c *Client) Available() bool {
	return c.backend != nil
}

// Search returns at most ten results in upstream order.
func (c *Client) Search(ctx context.Context, query, countryCode string) []entity.SearchResult {
	if c.backend == nil {
		return []entity.SearchResult{}
	}
	req := Request{Query: query, Country: countryCode, Count: c.maxResults}.Normalize()
	if req.Query == "" {
		return []entity.SearchResult{}
	}

	logger := c.logger.With(zap.String("backend", c.backend.Name()), zap.String("query", req.Query))
	key := cacheKey(c.backend.Name(), req)

	if raw, ok, err := c.store.Get(ctx, key); err != nil {
		logger.Warn("search cache read failed", zap.Error(err))
	} else if ok {
		var cached []entity.SearchResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			return capResults(cached, req.Count)
		}
		logger.Warn("search cache entry unreadable")
	}

	results, err := c.backend.Search(ctx, req)
	if err != nil {
		logger.Warn("web search failed", zap.Error(err))
		return []entity.SearchResult{}
	}
	results = capResults(results, req.Count)

	if raw, err := json.Marshal(results); err == nil {
		if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
			logger.Warn("search cache write failed", zap.Error(err))
		}
	}
	return results
}

func capResults(results []entity.SearchResult, n int) []entity.SearchResult {
	if results == nil {
		return []entity.SearchResult{}
	}
	if len(results) > n {
		return results[:n]
	}
	return results
}

func cacheKey(backend string, req Request) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{
		backend,
		req.Country,
		strings.ToLower(req.Query),
		strconv.Itoa(req.Count),
	}, "\x00")))
	return hex.EncodeToString(sum[:])
}

var _ Searcher = (*Client)(nil)
