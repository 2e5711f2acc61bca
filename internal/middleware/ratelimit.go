package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/contact-discovery/internal/config"
)

const discoveryPathPrefix = "/discovery/"

// ClientIPExtractor decides which address c.RealIP reports. Without trusted
// proxies it is the socket peer and forwarding headers are ignored. With
// proxies, X-Forwarded-For is honoured only for hops inside those ranges.
func ClientIPExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, network := range trusted {
		opts = append(opts, echo.TrustIPRange(network))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// DiscoveryRateLimiter gives each client IP its own token bucket for
// discovery searches. Only POSTs under /discovery/ spend tokens; listings
// pass through. Rejections carry a Retry-After hint in seconds.
func DiscoveryRateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	buckets := newClientBuckets(cfg, time.Now)
	retryAfter := strconv.Itoa(int(math.Ceil(buckets.perRequest.Seconds())))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodPost || !strings.HasPrefix(c.Path(), discoveryPathPrefix) {
				return next(c)
			}

			if !buckets.allow(c.RealIP()) {
				c.Response().Header().Set("Retry-After", retryAfter)
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"status":  "error",
					"message": "discovery rate limit exceeded",
				})
			}

			return next(c)
		}
	}
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientBuckets holds one limiter per client. A bucket idle for a full
// interval has refilled, so it is dropped and recreated on the next request.
type clientBuckets struct {
	mu         sync.Mutex
	perRequest time.Duration
	burst      int
	idle       time.Duration
	now        func() time.Time
	lastSweep  time.Time
	clients    map[string]*clientBucket
}

func newClientBuckets(cfg config.RateLimitConfig, now func() time.Time) *clientBuckets {
	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}
	return &clientBuckets{
		perRequest: perRequest,
		burst:      cfg.Requests,
		idle:       cfg.Interval,
		now:        now,
		lastSweep:  now(),
		clients:    make(map[string]*clientBucket),
	}
}

func (b *clientBuckets) allow(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if now.Sub(b.lastSweep) >= b.idle {
		for k, bucket := range b.clients {
			if now.Sub(bucket.lastSeen) >= b.idle {
				delete(b.clients, k)
			}
		}
		b.lastSweep = now
	}

	bucket, ok := b.clients[key]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(rate.Every(b.perRequest), b.burst)}
		b.clients[key] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter.AllowN(now, 1)
}

func (b *clientBuckets) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}
