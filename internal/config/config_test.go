package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DEFAULT_COUNTRY", "za")
	t.Setenv("PROVIDER_TIMEOUT", "30s")
	t.Setenv("RATE_LIMIT_DISCOVERY", "20/min")
	t.Setenv("SEARCH_BACKEND", "google")
	t.Setenv("GOOGLE_SEARCH_API_KEY", "g-key")
	t.Setenv("GOOGLE_SEARCH_CX", "cx-1")
	t.Setenv("APOLLO_API_KEY", " apollo-key ")
	t.Setenv("CACHE_BACKEND", "redis")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" || cfg.DefaultCountry != "ZA" {
		t.Fatalf("unexpected config values: %+v", cfg)
	}
	if cfg.ProviderTimeout != 30*time.Second {
		t.Fatalf("expected provider timeout 30s, got %s", cfg.ProviderTimeout)
	}
	if cfg.RateLimitDiscovery.Requests != 20 || cfg.RateLimitDiscovery.Interval != time.Minute {
		t.Fatalf("unexpected rate limit config: %+v", cfg.RateLimitDiscovery)
	}
	if !cfg.Search.SearchAvailable() {
		t.Fatalf("expected google search to be available")
	}
	if cfg.Credentials.ApolloAPIKey != "apollo-key" {
		t.Fatalf("expected trimmed apollo key, got %q", cfg.Credentials.ApolloAPIKey)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Fatalf("unexpected cache config: %+v", cfg.Cache)
	}

	// invalid rate limit should error
	os.Unsetenv("RATE_LIMIT_DISCOVERY")
	t.Setenv("RATE_LIMIT_DISCOVERY", "xyz")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid rate limit")
	}
}

func TestLoadRejectsUnknownBackends(t *testing.T) {
	t.Setenv("SEARCH_BACKEND", "altavista")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unsupported search backend")
	}

	t.Setenv("SEARCH_BACKEND", "brave")
	t.Setenv("CACHE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when postgres cache lacks DATABASE_URL")
	}

	t.Setenv("CACHE_BACKEND", "none")
	t.Setenv("DEFAULT_COUNTRY", "ZAF")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for three-letter country")
	}
}

func TestParseRateLimit(t *testing.T) {
	cfg, err := parseRateLimit("5/sec")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Requests != 5 || cfg.Interval != time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := parseRateLimit("bad-format"); err == nil {
		t.Fatalf("expected error for malformed value")
	}
	if _, err := parseRateLimit("0/min"); err == nil {
		t.Fatalf("expected error for zero requests")
	}
	if _, err := parseRateLimit("5/day"); err == nil {
		t.Fatalf("expected error for unsupported unit")
	}
}

func TestParseTrustedProxies(t *testing.T) {
	proxies, err := ParseTrustedProxies(" 10.0.0.0/8, 203.0.113.9 ,,2001:db8::1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proxies) != 3 {
		t.Fatalf("expected 3 ranges, got %d", len(proxies))
	}
	if proxies[1].String() != "203.0.113.9/32" || proxies[2].String() != "2001:db8::1/128" {
		t.Fatalf("expected single hosts widened to full masks, got %v", proxies)
	}

	if proxies, err := ParseTrustedProxies(""); err != nil || len(proxies) != 0 {
		t.Fatalf("expected no ranges for empty value, got %v, %v", proxies, err)
	}
	if _, err := ParseTrustedProxies("not-an-ip"); err == nil {
		t.Fatalf("expected error for invalid address")
	}
	if _, err := ParseTrustedProxies("10.0.0.0/99"); err == nil {
		t.Fatalf("expected error for invalid range")
	}
}

func TestGetEnv(t *testing.T) {
	os.Unsetenv("FOO")
	if val := getEnv("FOO", "fallback"); val != "fallback" {
		t.Fatalf("expected fallback, got %s", val)
	}
	t.Setenv("FOO", "value")
	if val := getEnv("FOO", "fallback"); val != "value" {
		t.Fatalf("expected env value, got %s", val)
	}
}

func TestParseDuration(t *testing.T) {
	if parseDuration("3h", time.Minute) != 3*time.Hour {
		t.Fatalf("expected 3h duration")
	}
	if parseDuration("invalid", time.Minute) != time.Minute {
		t.Fatalf("expected fallback duration")
	}
	if parseDuration("-5s", time.Minute) != time.Minute {
		t.Fatalf("expected fallback for negative duration")
	}
}

func TestCredentialsHas(t *testing.T) {
	creds := Credentials{
		ApolloAPIKey:        "a",
		PhantomBusterAPIKey: "p",
	}

	cases := []struct {
		provider string
		want     bool
	}{
		{ProviderApollo, true},
		{"apollo", true},
		{ProviderHunter, false},
		{ProviderLinkedIn, false},
		{ProviderPhantomBuster, false}, // agent id missing
		{"unknown", false},
	}
	for _, tc := range cases {
		if got := creds.Has(tc.provider); got != tc.want {
			t.Fatalf("Has(%q)=%v, want %v", tc.provider, got, tc.want)
		}
	}

	creds.PhantomBusterAgentID = "agent-1"
	availability := creds.Availability()
	if len(availability) != 4 || !availability[ProviderPhantomBuster] {
		t.Fatalf("unexpected availability: %+v", availability)
	}
}

func TestLoadProfile(t *testing.T) {
	profile, err := LoadProfile("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profile.Titles) != 8 || profile.Phrase(ProviderApollo) != "music industry contacts email" {
		t.Fatalf("unexpected default profile: %+v", profile)
	}

	path := filepath.Join(t.TempDir(), "profile.yaml")
	content := "titles:\n  - podcast host\nfallback_phrases:\n  Hunter: podcast booking email\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	profile, err = LoadProfile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profile.Titles) != 1 || profile.Titles[0] != "podcast host" {
		t.Fatalf("expected titles override, got %+v", profile.Titles)
	}
	if profile.Phrase(ProviderHunter) != "podcast booking email" {
		t.Fatalf("expected hunter phrase override, got %q", profile.Phrase(ProviderHunter))
	}
	if profile.Phrase(ProviderApollo) != "music industry contacts email" {
		t.Fatalf("expected apollo phrase default kept")
	}
	if profile.Phrase(ProviderLinkedIn) != "music industry contacts email" {
		t.Fatalf("expected industry-derived phrase, got %q", profile.Phrase(ProviderLinkedIn))
	}

	if _, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing profile")
	}
}
