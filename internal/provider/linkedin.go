package provider

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/octobees/contact-discovery/internal/config"
	"github.com/octobees/contact-discovery/internal/entity"
)

const (
	linkedInBaseURL    = "https://nubela.co"
	linkedInSearchPath = "/proxycurl/api/v2/search/person"
	linkedInPageSize   = "10"
)

var headlineSeparator = regexp.MustCompile(` - | \| | – | at `)

type linkedInRequest struct {
	Query   string
	Country string
	Titles  string
}

type linkedInSearchResponse struct {
	Results []struct {
		ProfileURL string `json:"linkedin_profile_url"`
		Profile    *struct {
			FullName        string               `json:"full_name"`
			FirstName       string               `json:"first_name"`
			LastName        string               `json:"last_name"`
			Headline        string               `json:"headline"`
			Occupation      string               `json:"occupation"`
			PublicID        string               `json:"public_identifier"`
			FollowerCount   int64                `json:"follower_count"`
			PersonalEmails  []string             `json:"personal_emails"`
			PersonalNumbers []string             `json:"personal_numbers"`
			Experiences     []linkedInExperience `json:"experiences"`
		} `json:"profile"`
	} `json:"results"`
}

type linkedInExperience struct {
	Title      string `json:"title"`
	Company    string `json:"company"`
	CompanyURL string `json:"company_linkedin_profile_url"`
	EndsAt     any    `json:"ends_at"`
}

// NewLinkedIn builds the LinkedIn people-search pipeline. Its fallback searches
// LinkedIn profile pages directly.
func NewLinkedIn(d Deps) Pipeline {
	d = d.withDefaults()
	client := NewJSONClient(d.HTTPClient, d.endpoint(config.ProviderLinkedIn, linkedInBaseURL), map[string]string{
		"Authorization": "Bearer " + d.Credentials.LinkedInAPIKey,
	})

	native := Native[linkedInRequest, linkedInSearchResponse]{
		Shape: func(query, countryCode string) linkedInRequest {
			return linkedInRequest{
				Query:   strings.TrimSpace(query),
				Country: strings.ToUpper(strings.TrimSpace(countryCode)),
				Titles:  titleRegex(d.Profile.Titles),
			}
		},
		Call: func(ctx context.Context, req linkedInRequest) (linkedInSearchResponse, error) {
			query := url.Values{}
			if req.Country != "" {
				query.Set("country", req.Country)
			}
			if req.Query != "" {
				query.Set("headline", req.Query)
			}
			if req.Titles != "" {
				query.Set("current_role_title", req.Titles)
			}
			query.Set("page_size", linkedInPageSize)
			query.Set("enrich_profiles", "enrich")

			var resp linkedInSearchResponse
			if err := client.GetJSON(ctx, linkedInSearchPath, query, &resp); err != nil {
				return resp, eris.Wrap(err, "linkedin: person search")
			}
			return resp, nil
		},
		Map: mapLinkedInResults,
	}

	fallback := PlatformFallback{
		Provider:  config.ProviderLinkedIn,
		Platforms: []entity.Platform{entity.PlatformLinkedIn},
		Social:    d.Social,
		ToContact: LinkedInProfileContact,
	}
	return New(config.ProviderLinkedIn, d.Credentials.Has(config.ProviderLinkedIn), native, fallback, d.Logger)
}

func titleRegex(titles []string) string {
	quoted := make([]string, 0, len(titles))
	for _, t := range titles {
		if t = strings.TrimSpace(t); t != "" {
			quoted = append(quoted, regexp.QuoteMeta(t))
		}
	}
	if len(quoted) == 0 {
		return ""
	}
	return "(?i)" + strings.Join(quoted, "|")
}

func mapLinkedInResults(resp linkedInSearchResponse) []entity.Contact {
	contacts := make([]entity.Contact, 0, len(resp.Results))
	for _, r := range resp.Results {
		c := entity.Contact{
			LinkedIn:   strings.TrimSpace(r.ProfileURL),
			Source:     config.ProviderLinkedIn,
			Confidence: entity.ConfidenceMedium,
		}
		if p := r.Profile; p != nil {
			c.Name = strings.TrimSpace(p.FullName)
			if c.Name == "" {
				c.Name = strings.TrimSpace(p.FirstName + " " + p.LastName)
			}
			c.Title = strings.TrimSpace(p.Occupation)
			if c.Title == "" {
				c.Title = strings.TrimSpace(p.Headline)
			}
			if current := currentExperience(p.Experiences); current != nil {
				if c.Title == "" {
					c.Title = strings.TrimSpace(current.Title)
				}
				c.Company = strings.TrimSpace(current.Company)
			}
			if len(p.PersonalEmails) > 0 {
				c.Email = strings.TrimSpace(p.PersonalEmails[0])
			}
			if len(p.PersonalNumbers) > 0 {
				c.Phone = strings.TrimSpace(p.PersonalNumbers[0])
			}
			c.Followers = p.FollowerCount
			if c.LinkedIn == "" && p.PublicID != "" {
				c.LinkedIn = "https://www.linkedin.com/in/" + p.PublicID
			}
		}
		contacts = append(contacts, c)
	}
	return contacts
}

// currentExperience returns the first open-ended role, else the most recent.
func currentExperience(experiences []linkedInExperience) *linkedInExperience {
	for i := range experiences {
		if experiences[i].EndsAt == nil {
			return &experiences[i]
		}
	}
	if len(experiences) > 0 {
		return &experiences[0]
	}
	return nil
}

// LinkedInProfileContact maps a LinkedIn profile hit. Result titles usually
// read "Name - Title - Company | LinkedIn"; the middle segments become title
// and company.
func LinkedInProfileContact(provider string, profile entity.SocialProfile) entity.Contact {
	c := ProfileContact(provider, profile)
	headline := strings.TrimSpace(profile.Headline)
	if headline == "" {
		return c
	}

	var segments []string
	for _, s := range headlineSeparator.Split(headline, -1) {
		s = strings.TrimSpace(s)
		if s == "" || strings.EqualFold(s, "linkedin") {
			continue
		}
		segments = append(segments, s)
	}
	if len(segments) > 1 {
		c.Title = segments[1]
	}
	if len(segments) > 2 {
		c.Company = segments[2]
	}
	return c
}
