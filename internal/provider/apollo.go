package provider

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/octobees/contact-discovery/internal/config"
	"github.com/octobees/contact-discovery/internal/country"
	"github.com/octobees/contact-discovery/internal/entity"
)

const (
	apolloBaseURL    = "https://api.apollo.io"
	apolloPeoplePath = "/api/v1/mixed_people/search"
	apolloPageSize   = 10
)

type apolloSearchRequest struct {
	Keywords        string   `json:"q_keywords,omitempty"`
	PersonTitles    []string `json:"person_titles,omitempty"`
	PersonLocations []string `json:"person_locations,omitempty"`
	Page            int      `json:"page"`
	PerPage         int      `json:"per_page"`
}

type apolloSearchResponse struct {
	People []apolloPerson `json:"people"`
}

type apolloPerson struct {
	Name         string `json:"name"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Title        string `json:"title"`
	Email        string `json:"email"`
	EmailStatus  string `json:"email_status"`
	LinkedInURL  string `json:"linkedin_url"`
	TwitterURL   string `json:"twitter_url"`
	Organization *struct {
		Name       string `json:"name"`
		WebsiteURL string `json:"website_url"`
		Phone      string `json:"phone"`
	} `json:"organization"`
	PhoneNumbers []struct {
		SanitizedNumber string `json:"sanitized_number"`
	} `json:"phone_numbers"`
}

// NewApollo builds the Apollo people-search pipeline.
func NewApollo(d Deps) Pipeline {
	d = d.withDefaults()
	client := NewJSONClient(d.HTTPClient, d.endpoint(config.ProviderApollo, apolloBaseURL), map[string]string{
		"X-Api-Key":     d.Credentials.ApolloAPIKey,
		"Cache-Control": "no-cache",
	})

	native := Native[apolloSearchRequest, apolloSearchResponse]{
		Shape: func(query, countryCode string) apolloSearchRequest {
			req := apolloSearchRequest{
				Keywords:     strings.TrimSpace(query),
				PersonTitles: d.Profile.Titles,
				Page:         1,
				PerPage:      apolloPageSize,
			}
			if name := country.Name(countryCode); name != "" {
				req.PersonLocations = []string{name}
			}
			return req
		},
		Call: func(ctx context.Context, req apolloSearchRequest) (apolloSearchResponse, error) {
			var resp apolloSearchResponse
			if err := client.PostJSON(ctx, apolloPeoplePath, nil, req, &resp); err != nil {
				return resp, eris.Wrap(err, "apollo: people search")
			}
			return resp, nil
		},
		Map: mapApolloPeople,
	}

	fallback := WebFallback{
		Provider:  config.ProviderApollo,
		Phrase:    d.Profile.Phrase(config.ProviderApollo),
		Limit:     d.FallbackLimit,
		Search:    d.Search,
		Extractor: d.Extractor,
	}
	return New(config.ProviderApollo, d.Credentials.Has(config.ProviderApollo), native, fallback, d.Logger)
}

func mapApolloPeople(resp apolloSearchResponse) []entity.Contact {
	contacts := make([]entity.Contact, 0, len(resp.People))
	for _, p := range resp.People {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = strings.TrimSpace(p.FirstName + " " + p.LastName)
		}
		c := entity.Contact{
			Name:       name,
			Email:      strings.TrimSpace(p.Email),
			Title:      strings.TrimSpace(p.Title),
			LinkedIn:   strings.TrimSpace(p.LinkedInURL),
			Twitter:    strings.TrimSpace(p.TwitterURL),
			Source:     config.ProviderApollo,
			Confidence: entity.ConfidenceMedium,
		}
		if p.Organization != nil {
			c.Company = strings.TrimSpace(p.Organization.Name)
			c.URL = strings.TrimSpace(p.Organization.WebsiteURL)
			c.Phone = strings.TrimSpace(p.Organization.Phone)
		}
		if len(p.PhoneNumbers) > 0 && p.PhoneNumbers[0].SanitizedNumber != "" {
			c.Phone = p.PhoneNumbers[0].SanitizedNumber
		}
		if strings.EqualFold(p.EmailStatus, "verified") {
			c.Confidence = entity.ConfidenceHigh
		}
		contacts = append(contacts, c)
	}
	return contacts
}
