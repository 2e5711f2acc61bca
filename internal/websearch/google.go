package websearch

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/octobees/contact-discovery/internal/entity"
)

// GoogleBackend queries the Google Custom Search JSON API.
type GoogleBackend struct {
	svc *customsearch.Service
	cx  string
}

type googlePagemap struct {
	Metatags []map[string]any `json:"metatags"`
	CseImage []struct {
		Src string `json:"src"`
	} `json:"cse_image"`
}

// NewGoogleBackend builds a Custom Search client. endpoint is optional and
// replaces the default API base URL.
func NewGoogleBackend(ctx context.Context, apiKey, cx, endpoint string) (*GoogleBackend, error) {
	apiKey = strings.TrimSpace(apiKey)
	cx = strings.TrimSpace(cx)
	if apiKey == "" || cx == "" {
		return nil, eris.Wrap(ErrMissingCredential, "google custom search requires an api key and engine id")
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "create custom search service")
	}
	return &GoogleBackend{svc: svc, cx: cx}, nil
}

func (g *GoogleBackend) Name() string { return BackendGoogle }

func (g *GoogleBackend) Search(ctx context.Context, req Request) ([]entity.SearchResult, error) {
	req = req.Normalize()
	if req.Query == "" {
		return nil, eris.New("missing query")
	}

	call := g.svc.Cse.List().Cx(g.cx).Q(req.Query).Num(int64(req.Count))
	if req.Country != "" {
		call = call.Gl(strings.ToLower(req.Country))
	}
	res, err := call.Context(ctx).Do()
	if err != nil {
		return nil, eris.Wrap(err, "google custom search failed")
	}

	results := make([]entity.SearchResult, 0, len(res.Items))
	for _, item := range res.Items {
		if item == nil {
			continue
		}
		u := strings.TrimSpace(item.Link)
		if u == "" {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = u
		}
		date, image := readPagemap(item.Pagemap)
		results = append(results, entity.SearchResult{
			Title:   title,
			URL:     u,
			Snippet: strings.TrimSpace(item.Snippet),
			Source:  BackendGoogle,
			Date:    date,
			Image:   image,
		})
	}
	return results, nil
}

// readPagemap pulls the article date and preview image out of the structured
// data Google attaches to a result.
func readPagemap(raw []byte) (date, image string) {
	if len(raw) == 0 {
		return "", ""
	}
	var pm googlePagemap
	if err := json.Unmarshal(raw, &pm); err != nil {
		return "", ""
	}
	for _, tags := range pm.Metatags {
		if image == "" {
			image = stringTag(tags, "og:image")
		}
		if date == "" {
			date = stringTag(tags, "article:published_time")
		}
	}
	if image == "" && len(pm.CseImage) > 0 {
		image = strings.TrimSpace(pm.CseImage[0].Src)
	}
	return date, image
}

func stringTag(tags map[string]any, key string) string {
	if v, ok := tags[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

var _ Backend = (*GoogleBackend)(nil)
