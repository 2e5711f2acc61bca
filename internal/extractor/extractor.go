// Package extractor fetches web pages and mines them for contact signals:
// emails, phones, social links, company info and named people. Extraction is
// best-effort and never fails; a page that cannot be fetched or parsed yields
// an empty entity.ExtractedPageData.
package extractor

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/octobees/contact-discovery/internal/config"
	"github.com/octobees/contact-discovery/internal/entity"
)

const (
	// MaxBatch bounds how many URLs one ExtractBatch call fetches.
	MaxBatch = 10

	defaultFetchTimeout = 10 * time.Second
	defaultMaxBodySize  = 2 << 20
)

// PageExtractor is the contract consumed by the provider fallbacks.
type PageExtractor interface {
	Extract(ctx context.Context, pageURL string) entity.ExtractedPageData
	ExtractBatch(ctx context.Context, urls []string) map[string]entity.ExtractedPageData
}

// Extractor fetches pages with colly and parses them with goquery.
type Extractor struct {
	timeout     time.Duration
	maxBodySize int
	region      string
	limiter     *rate.Limiter
	transport   http.RoundTripper
	logger      *zap.Logger
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithTimeout sets the per-page request timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithRateLimit throttles outbound fetches across every call on this extractor.
func WithRateLimit(cfg config.RateLimitConfig) Option {
	return func(e *Extractor) {
		if cfg.Requests <= 0 || cfg.Interval <= 0 {
			return
		}
		perRequest := cfg.Interval / time.Duration(cfg.Requests)
		if perRequest <= 0 {
			perRequest = time.Millisecond
		}
		e.limiter = rate.NewLimiter(rate.Every(perRequest), cfg.Requests)
	}
}

// WithPhoneRegion sets the region used to parse national phone numbers.
func WithPhoneRegion(region string) Option {
	return func(e *Extractor) {
		if region = strings.ToUpper(strings.TrimSpace(region)); region != "" {
			e.region = region
		}
	}
}

// WithTransport overrides the HTTP transport used by the collector.
func WithTransport(rt http.RoundTripper) Option {
	return func(e *Extractor) {
		e.transport = rt
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New builds an extractor with a 10 second fetch timeout and a 2 MiB body cap.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		timeout:     defaultFetchTimeout,
		maxBodySize: defaultMaxBodySize,
		region:      defaultPhoneRegion,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract fetches pageURL and returns whatever contact signal it holds.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (data entity.ExtractedPageData) {
	logger := e.logger.With(zap.String("url", pageURL))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("page extraction panicked", zap.Any("panic", r))
			data = entity.ExtractedPageData{}
		}
	}()

	target, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || target.Host == "" || (target.Scheme != "http" && target.Scheme != "https") {
		logger.Debug("skipping unsupported url")
		return entity.ExtractedPageData{}
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			logger.Debug("fetch limiter aborted", zap.Error(err))
			return entity.ExtractedPageData{}
		}
	}

	c := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.MaxBodySize(e.maxBodySize),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	extensions.RandomUserAgent(c)
	c.SetRequestTimeout(e.timeout)
	if e.transport != nil {
		c.WithTransport(e.transport)
	}

	p := parser{region: e.region}
	parsed := false
	c.OnHTML("html", func(el *colly.HTMLElement) {
		if parsed {
			return
		}
		parsed = true
		data = p.parseSelection(el.Request.URL.String(), el.DOM, string(el.Response.Body))
	})
	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		logger.Debug("page fetch failed", zap.Int("status", status), zap.Error(err))
	})

	if err := c.Visit(target.String()); err != nil {
		logger.Debug("page visit failed", zap.Error(err))
		return entity.ExtractedPageData{}
	}
	return data
}

// ExtractBatch fetches up to MaxBatch distinct URLs concurrently. Every URL it
// accepts has an entry in the result, empty when extraction failed.
func (e *Extractor) ExtractBatch(ctx context.Context, urls []string) map[string]entity.ExtractedPageData {
	targets := BatchTargets(urls)
	results := make([]entity.ExtractedPageData, len(targets))

	var g errgroup.Group
	for i, u := range targets {
		g.Go(func() error {
			results[i] = e.Extract(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]entity.ExtractedPageData, len(targets))
	for i, u := range targets {
		out[u] = results[i]
	}
	return out
}

// BatchTargets trims, dedupes and caps urls to MaxBatch in first-seen order.
func BatchTargets(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	targets := make([]string, 0, MaxBatch)
	for _, raw := range urls {
		u := strings.TrimSpace(raw)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		targets = append(targets, u)
		if len(targets) == MaxBatch {
			break
		}
	}
	return targets
}

var _ PageExtractor = (*Extractor)(nil)
