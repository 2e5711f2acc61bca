package provider

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/contact-discovery/internal/config"
	"github.com/octobees/contact-discovery/internal/country"
	"github.com/octobees/contact-discovery/internal/entity"
)

const (
	hunterBaseURL      = "https://api.hunter.io"
	hunterDiscoverPath = "/v2/discover"
	hunterDomainPath   = "/v2/domain-search"
	hunterMaxDomains   = 3
	hunterEmailLimit   = 10
)

type hunterRequest struct {
	Query   string
	Country string
}

type hunterDiscoverRequest struct {
	Query                string          `json:"query"`
	HeadquartersLocation *hunterLocation `json:"headquarters_location,omitempty"`
}

type hunterLocation struct {
	Include []map[string]string `json:"include"`
}

type hunterDiscoverResponse struct {
	Data []struct {
		Domain       string `json:"domain"`
		Organization string `json:"organization"`
	} `json:"data"`
}

type hunterDomainResponse struct {
	Data hunterDomain `json:"data"`
}

type hunterDomain struct {
	Domain       string        `json:"domain"`
	Organization string        `json:"organization"`
	Emails       []hunterEmail `json:"emails"`
}

type hunterEmail struct {
	Value        string `json:"value"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Position     string `json:"position"`
	LinkedIn     string `json:"linkedin"`
	Twitter      string `json:"twitter"`
	PhoneNumber  string `json:"phone_number"`
	Verification struct {
		Status string `json:"status"`
	} `json:"verification"`
}

// NewHunter builds the Hunter pipeline: discover organisations for the query,
// then search up to three of their domains for people.
func NewHunter(d Deps) Pipeline {
	d = d.withDefaults()
	apiKey := d.Credentials.HunterAPIKey
	client := NewJSONClient(d.HTTPClient, d.endpoint(config.ProviderHunter, hunterBaseURL), map[string]string{
		"X-API-KEY": apiKey,
	})

	native := Native[hunterRequest, []hunterDomain]{
		Shape: func(query, countryCode string) hunterRequest {
			return hunterRequest{Query: strings.TrimSpace(query), Country: strings.ToUpper(strings.TrimSpace(countryCode))}
		},
		Call: func(ctx context.Context, req hunterRequest) ([]hunterDomain, error) {
			domains, err := hunterDiscover(ctx, client, req)
			if err != nil {
				return nil, err
			}
			if len(domains) == 0 {
				return nil, nil
			}
			return hunterDomainSearch(ctx, client, domains)
		},
		Map: mapHunterDomains,
	}

	fallback := WebFallback{
		Provider:  config.ProviderHunter,
		Phrase:    d.Profile.Phrase(config.ProviderHunter),
		Limit:     d.FallbackLimit,
		Search:    d.Search,
		Extractor: d.Extractor,
	}
	return New(config.ProviderHunter, d.Credentials.Has(config.ProviderHunter), native, fallback, d.Logger)
}

func hunterDiscover(ctx context.Context, client *JSONClient, req hunterRequest) ([]string, error) {
	body := hunterDiscoverRequest{Query: req.Query}
	if req.Country != "" {
		body.Query = strings.TrimSpace(req.Query + " in " + country.Name(req.Country))
		body.HeadquartersLocation = &hunterLocation{
			Include: []map[string]string{{"country": req.Country}},
		}
	}

	var resp hunterDiscoverResponse
	if err := client.PostJSON(ctx, hunterDiscoverPath, nil, body, &resp); err != nil {
		return nil, eris.Wrap(err, "hunter: discover")
	}

	domains := make([]string, 0, hunterMaxDomains)
	seen := make(map[string]struct{})
	for _, org := range resp.Data {
		domain := strings.ToLower(strings.TrimSpace(org.Domain))
		if domain == "" {
			continue
		}
		if _, dup := seen[domain]; dup {
			continue
		}
		seen[domain] = struct{}{}
		domains = append(domains, domain)
		if len(domains) == hunterMaxDomains {
			break
		}
	}
	return domains, nil
}

// hunterDomainSearch queries every domain concurrently. It fails only when
// every domain fails.
func hunterDomainSearch(ctx context.Context, client *JSONClient, domains []string) ([]hunterDomain, error) {
	results := make([]hunterDomain, len(domains))
	errs := make([]error, len(domains))

	var g errgroup.Group
	for i, domain := range domains {
		g.Go(func() error {
			query := url.Values{}
			query.Set("domain", domain)
			query.Set("limit", "10")
			var resp hunterDomainResponse
			if err := client.GetJSON(ctx, hunterDomainPath, query, &resp); err != nil {
				errs[i] = eris.Wrapf(err, "hunter: domain search %s", domain)
				return nil
			}
			if resp.Data.Domain == "" {
				resp.Data.Domain = domain
			}
			results[i] = resp.Data
			return nil
		})
	}
	_ = g.Wait()

	out := make([]hunterDomain, 0, len(domains))
	var firstErr error
	for i := range domains {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}
		out = append(out, results[i])
	}
	if len(out) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func mapHunterDomains(domains []hunterDomain) []entity.Contact {
	var contacts []entity.Contact
	for _, d := range domains {
		emails := d.Emails
		if len(emails) > hunterEmailLimit {
			emails = emails[:hunterEmailLimit]
		}
		for _, e := range emails {
			name := strings.TrimSpace(e.FirstName + " " + e.LastName)
			c := entity.Contact{
				Name:       name,
				Email:      strings.ToLower(strings.TrimSpace(e.Value)),
				Title:      strings.TrimSpace(e.Position),
				Company:    strings.TrimSpace(d.Organization),
				URL:        "https://" + d.Domain,
				Phone:      strings.TrimSpace(e.PhoneNumber),
				LinkedIn:   strings.TrimSpace(e.LinkedIn),
				Twitter:    twitterURL(e.Twitter),
				Source:     config.ProviderHunter,
				Confidence: entity.ConfidenceMedium,
			}
			if strings.EqualFold(e.Verification.Status, "valid") {
				c.Confidence = entity.ConfidenceHigh
			}
			contacts = append(contacts, c)
		}
	}
	return contacts
}

func twitterURL(handle string) string {
	handle = strings.TrimSpace(handle)
	if handle == "" || strings.Contains(handle, "://") {
		return handle
	}
	return "https://twitter.com/" + strings.TrimPrefix(handle, "@")
}
