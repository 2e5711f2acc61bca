package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/octobees/contact-discovery/internal/entity"
)

const (
	braveWebSearchEndpoint = "https://api.search.brave.com/res/v1/web/search"
	braveMaxBodyBytes      = 2 << 20
)

type braveWebSearchResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
			Age         string `json:"age"`
			PageAge     string `json:"page_age"`
			Thumbnail   struct {
				Src string `json:"src"`
			} `json:"thumbnail"`
		} `json:"results"`
	} `json:"web"`
}

// BraveBackend queries the Brave Web Search API.
type BraveBackend struct {
	apiKey   string
	endpoint string
	client   HTTPClient
}

// BraveOption customises a BraveBackend.
type BraveOption func(*BraveBackend)

// WithBraveEndpoint overrides the API endpoint.
func WithBraveEndpoint(endpoint string) BraveOption {
	return func(b *BraveBackend) {
		if endpoint != "" {
			b.endpoint = endpoint
		}
	}
}

// WithBraveHTTPClient overrides the HTTP client.
func WithBraveHTTPClient(client HTTPClient) BraveOption {
	return func(b *BraveBackend) {
		if client != nil {
			b.client = client
		}
	}
}

// NewBraveBackend builds a backend with a 15 second transport timeout.
func NewBraveBackend(apiKey string, timeout time.Duration, opts ...BraveOption) *BraveBackend {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	b := &BraveBackend{
		apiKey:   strings.TrimSpace(apiKey),
		endpoint: braveWebSearchEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *BraveBackend) Name() string { return BackendBrave }

func (b *BraveBackend) Search(ctx context.Context, req Request) ([]entity.SearchResult, error) {
	req = req.Normalize()
	if req.Query == "" {
		return nil, eris.New("missing query")
	}

	endpoint, err := url.Parse(b.endpoint)
	if err != nil {
		return nil, eris.Wrap(err, "invalid brave search endpoint")
	}
	q := endpoint.Query()
	q.Set("q", req.Query)
	q.Set("count", strconv.Itoa(req.Count))
	if req.Country != "" {
		q.Set("country", req.Country)
	}
	endpoint.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "build brave request")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "brave request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, braveMaxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "read brave response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("brave web search failed (status %d)", resp.StatusCode)
		}
		return nil, eris.New(msg)
	}

	var decoded braveWebSearchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, eris.Wrap(err, "invalid brave web search response")
	}

	results := make([]entity.SearchResult, 0, len(decoded.Web.Results))
	for _, item := range decoded.Web.Results {
		u := strings.TrimSpace(item.URL)
		if u == "" {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = u
		}
		date := strings.TrimSpace(item.PageAge)
		if date == "" {
			date = strings.TrimSpace(item.Age)
		}
		results = append(results, entity.SearchResult{
			Title:   title,
			URL:     u,
			Snippet: strings.TrimSpace(item.Description),
			Source:  BackendBrave,
			Date:    date,
			Image:   strings.TrimSpace(item.Thumbnail.Src),
		})
	}
	return results, nil
}

var _ Backend = (*BraveBackend)(nil)
