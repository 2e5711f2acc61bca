package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// SearchConfig selects and authenticates the generic web search backend.
type SearchConfig struct {
	Backend      string
	BraveAPIKey  string
	GoogleAPIKey string
	GoogleCX     string
	MaxResults   int
	Timeout      time.Duration
}

// CacheConfig describes the optional search response cache.
type CacheConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseURL   string
	TTL           time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port               string
	DefaultCountry     string
	LogLevel           string
	ProfilePath        string
	RateLimitDiscovery RateLimitConfig
	TrustedProxies     []*net.IPNet
	FetchRateLimit     RateLimitConfig
	ProviderTimeout    time.Duration
	FetchTimeout       time.Duration
	Search             SearchConfig
	Cache              CacheConfig
	Credentials        Credentials
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		DefaultCountry:  strings.ToUpper(getEnv("DEFAULT_COUNTRY", "US")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ProfilePath:     os.Getenv("DISCOVERY_PROFILE_PATH"),
		ProviderTimeout: parseDuration(getEnv("PROVIDER_TIMEOUT", "60s"), 60*time.Second),
		FetchTimeout:    parseDuration(getEnv("FETCH_TIMEOUT", "10s"), 10*time.Second),
		Search: SearchConfig{
			Backend:      strings.ToLower(getEnv("SEARCH_BACKEND", "brave")),
			BraveAPIKey:  os.Getenv("BRAVE_API_KEY"),
			GoogleAPIKey: os.Getenv("GOOGLE_SEARCH_API_KEY"),
			GoogleCX:     os.Getenv("GOOGLE_SEARCH_CX"),
			MaxResults:   parseInt(getEnv("SEARCH_MAX_RESULTS", "10"), 10),
			Timeout:      parseDuration(getEnv("SEARCH_TIMEOUT", "15s"), 15*time.Second),
		},
		Cache: CacheConfig{
			Backend:       strings.ToLower(getEnv("CACHE_BACKEND", "none")),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       parseInt(getEnv("REDIS_DB", "0"), 0),
			DatabaseURL:   os.Getenv("DATABASE_URL"),
			TTL:           parseDuration(getEnv("CACHE_TTL", "6h"), 6*time.Hour),
		},
		Credentials: Credentials{
			ApolloAPIKey:         strings.TrimSpace(os.Getenv("APOLLO_API_KEY")),
			HunterAPIKey:         strings.TrimSpace(os.Getenv("HUNTER_API_KEY")),
			LinkedInAPIKey:       strings.TrimSpace(os.Getenv("LINKEDIN_API_KEY")),
			PhantomBusterAPIKey:  strings.TrimSpace(os.Getenv("PHANTOMBUSTER_API_KEY")),
			PhantomBusterAgentID: strings.TrimSpace(os.Getenv("PHANTOMBUSTER_AGENT_ID")),
		},
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_DISCOVERY", "10/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_DISCOVERY value: %w", err)
	}
	cfg.RateLimitDiscovery = rl

	fetchRL, err := parseRateLimit(getEnv("FETCH_RATE_LIMIT", "20/sec"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_RATE_LIMIT value: %w", err)
	}
	cfg.FetchRateLimit = fetchRL

	proxies, err := ParseTrustedProxies(os.Getenv("TRUSTED_PROXIES"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES value: %w", err)
	}
	cfg.TrustedProxies = proxies

	switch cfg.Search.Backend {
	case "brave", "google":
	default:
		return nil, fmt.Errorf("unsupported SEARCH_BACKEND %q", cfg.Search.Backend)
	}
	switch cfg.Cache.Backend {
	case "none", "redis", "postgres":
	default:
		return nil, fmt.Errorf("unsupported CACHE_BACKEND %q", cfg.Cache.Backend)
	}
	if cfg.Cache.Backend == "postgres" && cfg.Cache.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when CACHE_BACKEND=postgres")
	}
	if len(cfg.DefaultCountry) != 2 {
		return nil, fmt.Errorf("DEFAULT_COUNTRY must be a two-letter country code, got %q", cfg.DefaultCountry)
	}

	return cfg, nil
}

// SearchAvailable reports whether the configured backend has the credentials it needs.
func (c SearchConfig) SearchAvailable() bool {
	switch c.Backend {
	case "google":
		return c.GoogleAPIKey != "" && c.GoogleCX != ""
	default:
		return c.BraveAPIKey != ""
	}
}

// ParseTrustedProxies reads a comma separated list of CIDRs or bare IPs.
func ParseTrustedProxies(value string) ([]*net.IPNet, error) {
	var out []*net.IPNet
	for _, raw := range strings.Split(value, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			ip := net.ParseIP(raw)
			if ip == nil {
				return nil, fmt.Errorf("invalid proxy address %q", raw)
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			raw = fmt.Sprintf("%s/%d", raw, bits)
		}
		_, network, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy range %q", raw)
		}
		out = append(out, network)
	}
	return out, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(input string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return fallback
	}
	return v
}
