package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/contact-discovery/internal/config"
	"github.com/octobees/contact-discovery/internal/entity"
)

type stubBackend struct {
	results []entity.SearchResult
	err     error
	calls   int
	lastReq Request
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) Search(ctx context.Context, req Request) ([]entity.SearchResult, error) {
	s.calls++
	s.lastReq = req
	return s.results, s.err
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: map[string][]byte{}}
}

func (m *memoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func makeResults(n int) []entity.SearchResult {
	out := make([]entity.SearchResult, n)
	for i := range out {
		out[i] = entity.SearchResult{Title: fmt.Sprintf("Result %d", i), URL: fmt.Sprintf("https://site%d.test", i)}
	}
	return out
}

func TestClientWithoutBackendReturnsEmpty(t *testing.T) {
	client := NewClient(nil)
	results := client.Search(context.Background(), "amapiano bloggers", "ZA")
	require.NotNil(t, results)
	assert.Empty(t, results)
	assert.False(t, client.Available())

	disabled := NewFromConfig(context.Background(), config.SearchConfig{Backend: BackendBrave})
	assert.False(t, disabled.Available())
	assert.Empty(t, disabled.Search(context.Background(), "query", "US"))
}

func TestClientPreservesOrderAndCaps(t *testing.T) {
	backend := &stubBackend{results: makeResults(14)}
	client := NewClient(backend)

	results := client.Search(context.Background(), "  music blogs ", "za")
	require.Len(t, results, 10)
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("Result %d", i), r.Title)
	}
	assert.Equal(t, "music blogs", backend.lastReq.Query)
	assert.Equal(t, "ZA", backend.lastReq.Country)
	assert.Equal(t, 10, backend.lastReq.Count)
}

func TestClientSwallowsBackendErrors(t *testing.T) {
	client := NewClient(&stubBackend{err: errors.New("quota exceeded")})
	results := client.Search(context.Background(), "query", "US")
	require.NotNil(t, results)
	assert.Empty(t, results)

	assert.Empty(t, NewClient(&stubBackend{}).Search(context.Background(), "   ", "US"))
}

func TestClientUsesCache(t *testing.T) {
	backend := &stubBackend{results: makeResults(3)}
	store := newMemoryStore()
	client := NewClient(backend, WithCache(store, time.Hour), WithMaxResults(5))

	first := client.Search(context.Background(), "query", "US")
	second := client.Search(context.Background(), "QUERY", "us")

	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, 5, backend.lastReq.Count)

	// a failing cache read falls through to the backend
	store.getErr = errors.New("cache offline")
	client.Search(context.Background(), "query", "US")
	assert.Equal(t, 2, backend.calls)
}

func TestBraveBackendSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Subscription-Token") != "brave-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("country") != "ZA" || r.URL.Query().Get("count") != "10" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"web": map[string]any{
				"results": []map[string]any{
					{"title": "Amapiano Blog | Home", "url": "https://amapiano.test", "description": "daily", "page_age": "2024-05-01", "thumbnail": map[string]string{"src": "https://img.test/a.png"}},
					{"title": "", "url": "https://second.test"},
					{"title": "no url", "url": ""},
				},
			},
		})
	}))
	defer server.Close()

	backend := NewBraveBackend("brave-key", time.Second, WithBraveEndpoint(server.URL), WithBraveHTTPClient(server.Client()))
	results, err := backend.Search(context.Background(), Request{Query: "amapiano", Country: "za", Count: 50})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Amapiano Blog | Home", results[0].Title)
	assert.Equal(t, "2024-05-01", results[0].Date)
	assert.Equal(t, "https://img.test/a.png", results[0].Image)
	assert.Equal(t, BackendBrave, results[0].Source)
	assert.Equal(t, "https://second.test", results[1].Title)
}

func TestBraveBackendErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.RawQuery, "garbage") {
			w.Write([]byte("not json"))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	backend := NewBraveBackend("key", time.Second, WithBraveEndpoint(server.URL))
	_, err := backend.Search(context.Background(), Request{Query: "query"})
	assert.Error(t, err)
	_, err = backend.Search(context.Background(), Request{Query: "garbage"})
	assert.Error(t, err)
	_, err = backend.Search(context.Background(), Request{Query: " "})
	assert.Error(t, err)

	client := NewClient(backend)
	assert.Empty(t, client.Search(context.Background(), "query", "US"))
}

func TestGoogleBackendSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/customsearch/v1") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		q := r.URL.Query()
		if q.Get("cx") != "engine" || q.Get("q") != "press contacts" || q.Get("gl") != "ng" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"title":"Lagos Press","link":"https://press.test","snippet":"news","pagemap":{"metatags":[{"og:image":"https://press.test/og.png","article:published_time":"2024-02-02"}]}},
			{"title":"Second","link":"https://second.test","snippet":"more"}
		]}`))
	}))
	defer server.Close()

	backend, err := NewGoogleBackend(context.Background(), "g-key", "engine", server.URL+"/")
	require.NoError(t, err)

	results, err := backend.Search(context.Background(), Request{Query: "press contacts", Country: "NG", Count: 5})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://press.test/og.png", results[0].Image)
	assert.Equal(t, "2024-02-02", results[0].Date)
	assert.Equal(t, BackendGoogle, results[1].Source)

	_, err = NewGoogleBackend(context.Background(), "", "engine", "")
	assert.True(t, errors.Is(err, ErrMissingCredential))
}

func TestRequestNormalize(t *testing.T) {
	cases := []struct {
		in   Request
		want int
	}{
		{Request{Count: 0}, 10},
		{Request{Count: 3}, 3},
		{Request{Count: 11}, 10},
		{Request{Count: -1}, 10},
	}
	for _, tc := range cases {
		if got := tc.in.Normalize().Count; got != tc.want {
			t.Fatalf("Normalize(%d)=%d, want %d", tc.in.Count, got, tc.want)
		}
	}
}
