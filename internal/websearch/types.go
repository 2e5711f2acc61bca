// Package websearch wraps a third-party web search API behind a client that
// never propagates an outage to its callers.
package websearch

import (
	"context"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/octobees/contact-discovery/internal/entity"
)

const (
	BackendBrave  = "brave"
	BackendGoogle = "google"

	maxResults = 10
)

// ErrMissingCredential marks a backend that cannot be built without its key.
var ErrMissingCredential = eris.New("missing search credential")

// Searcher is the contract shared by every caller that needs web results.
type Searcher interface {
	Search(ctx context.Context, query, countryCode string) []entity.SearchResult
}

// Backend performs one upstream search call.
type Backend interface {
	Name() string
	Search(ctx context.Context, req Request) ([]entity.SearchResult, error)
}

// HTTPClient abstracts the HTTP transport used by the Brave backend.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request is a single backend query.
type Request struct {
	Query   string
	Country string
	Count   int
}

// Normalize trims the query, upper-cases the country and clamps Count to 1..10.
func (r Request) Normalize() Request {
	r.Query = strings.TrimSpace(r.Query)
	r.Country = strings.ToUpper(strings.TrimSpace(r.Country))
	if r.Count <= 0 || r.Count > maxResults {
		r.Count = maxResults
	}
	return r
}
