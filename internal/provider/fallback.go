package provider

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/octobees/contact-discovery/internal/country"
	"github.com/octobees/contact-discovery/internal/entity"
	"github.com/octobees/contact-discovery/internal/extractor"
	"github.com/octobees/contact-discovery/internal/social"
	"github.com/octobees/contact-discovery/internal/websearch"
)

const (
	defaultFallbackLimit = 8
	minFallbackLimit     = 5
	maxFallbackLimit     = 10
	fallbackExtractTop   = 3
)

var (
	resultTitleSuffix = regexp.MustCompile(` \| | - `)
	handleSuffix      = regexp.MustCompile(`\s*\(@[^)]*\)\s*$`)
)

// WebFallback approximates a provider with a phrase-enriched web search whose
// top pages are mined for emails, phones and people.
type WebFallback struct {
	Provider  string
	Phrase    string
	Limit     int
	Search    websearch.Searcher
	Extractor extractor.PageExtractor
}

// FallbackQuery renders "<query> <phrase> <country name>".
func FallbackQuery(query, phrase, countryCode string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{query, phrase, country.Name(countryCode)} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// ResultName truncates a search result title at the first " | " or " - ".
func ResultName(title string) string {
	return strings.TrimSpace(resultTitleSuffix.Split(title, 2)[0])
}

func (f WebFallback) Run(ctx context.Context, query, countryCode string, trace *Trace) []entity.Contact {
	if f.Search == nil {
		trace.Addf("web search unavailable")
		return nil
	}
	q := FallbackQuery(query, f.Phrase, countryCode)
	results := f.Search.Search(ctx, q, countryCode)
	if limit := clampLimit(f.Limit); len(results) > limit {
		results = results[:limit]
	}
	trace.Addf("web search %q returned %d results", q, len(results))
	if len(results) == 0 {
		return nil
	}

	source := fmt.Sprintf("%s (web)", f.Provider)
	contacts := make([]entity.Contact, 0, len(results))
	byURL := make(map[string]int, len(results))
	for _, r := range results {
		u := strings.TrimSpace(r.URL)
		if _, dup := byURL[u]; dup {
			continue
		}
		byURL[u] = len(contacts)
		contacts = append(contacts, entity.Contact{
			Name:       ResultName(r.Title),
			URL:        u,
			Source:     source,
			Confidence: entity.ConfidenceLow,
		})
	}

	if f.Extractor == nil {
		return contacts
	}
	top := make([]string, 0, fallbackExtractTop)
	for i := 0; i < len(contacts) && len(top) < fallbackExtractTop; i++ {
		top = append(top, contacts[i].URL)
	}
	pages := f.Extractor.ExtractBatch(ctx, top)

	var people []entity.Contact
	enriched := 0
	for _, u := range top {
		page, ok := pages[u]
		if !ok {
			continue
		}
		c := &contacts[byURL[u]]
		if enrichFromPage(c, page) {
			enriched++
		}
		for _, person := range page.People {
			pc := entity.Contact{
				Name:       person.Name,
				Title:      person.Title,
				Email:      person.Email,
				Company:    page.CompanyInfo.Name,
				URL:        u,
				LinkedIn:   person.LinkedInURL,
				Source:     source,
				Confidence: entity.ConfidenceLow,
			}
			if pc.Email != "" {
				pc.Confidence = entity.ConfidenceMedium
			}
			people = append(people, pc)
		}
	}
	trace.Addf("extracted %d pages: %d contacts enriched with email, %d people found", len(pages), enriched, len(people))
	return append(contacts, people...)
}

// enrichFromPage fills empty contact fields from page and reports whether an
// email was attached.
func enrichFromPage(c *entity.Contact, page entity.ExtractedPageData) bool {
	attached := false
	if c.Email == "" && len(page.Emails) > 0 {
		c.Email = page.Emails[0]
		if c.Confidence.Rank() > entity.ConfidenceMedium.Rank() {
			c.Confidence = entity.ConfidenceMedium
		}
		attached = true
	}
	if c.Phone == "" && len(page.Phones) > 0 {
		c.Phone = page.Phones[0]
	}
	if c.LinkedIn == "" {
		c.LinkedIn = page.SocialLinks.LinkedIn
	}
	if c.Twitter == "" {
		c.Twitter = page.SocialLinks.Twitter
	}
	if c.Instagram == "" {
		c.Instagram = page.SocialLinks.Instagram
	}
	if c.TikTok == "" {
		c.TikTok = page.SocialLinks.TikTok
	}
	if c.Company == "" {
		c.Company = page.CompanyInfo.Name
	}
	return attached
}

func clampLimit(n int) int {
	switch {
	case n == 0:
		return defaultFallbackLimit
	case n < minFallbackLimit:
		return minFallbackLimit
	case n > maxFallbackLimit:
		return maxFallbackLimit
	default:
		return n
	}
}

// PlatformFallback approximates a provider with platform-scoped social search.
type PlatformFallback struct {
	Provider  string
	Platforms []entity.Platform
	Social    social.PlatformSearcher
	// ToContact maps a profile; nil uses ProfileContact.
	ToContact func(provider string, profile entity.SocialProfile) entity.Contact
}

func (f PlatformFallback) Run(ctx context.Context, query, countryCode string, trace *Trace) []entity.Contact {
	if f.Social == nil || len(f.Platforms) == 0 {
		trace.Addf("platform search unavailable")
		return nil
	}
	toContact := f.ToContact
	if toContact == nil {
		toContact = ProfileContact
	}

	var byPlatform map[entity.Platform][]entity.SocialProfile
	if len(f.Platforms) == 1 {
		p := f.Platforms[0]
		byPlatform = map[entity.Platform][]entity.SocialProfile{
			p: f.Social.SearchPlatform(ctx, p, query, countryCode),
		}
	} else {
		byPlatform = f.Social.SearchAllPlatforms(ctx, query, countryCode, f.Platforms...)
	}

	var contacts []entity.Contact
	for _, p := range f.Platforms {
		profiles := byPlatform[p]
		trace.Addf("%s search returned %d profiles", p, len(profiles))
		for _, profile := range profiles {
			contacts = append(contacts, toContact(f.Provider, profile))
		}
	}
	return contacts
}

// ProfileContact maps a social profile onto a low confidence contact, raised
// to medium when the bio exposes an email address.
func ProfileContact(provider string, profile entity.SocialProfile) entity.Contact {
	name := strings.TrimSpace(handleSuffix.ReplaceAllString(profile.DisplayName, ""))
	if name == "" {
		name = profile.Handle
	}
	c := entity.Contact{
		Name:       name,
		Source:     fmt.Sprintf("%s (%s)", provider, profile.Platform),
		Confidence: entity.ConfidenceLow,
	}
	setPlatformLink(&c, profile.Platform, profile.ProfileURL)
	if emails := extractor.FindEmails(profile.Bio); len(emails) > 0 {
		c.Email = emails[0]
		c.Confidence = entity.ConfidenceMedium
	}
	return c
}

func setPlatformLink(c *entity.Contact, platform entity.Platform, link string) {
	switch platform {
	case entity.PlatformInstagram:
		c.Instagram = link
	case entity.PlatformTikTok:
		c.TikTok = link
	case entity.PlatformTwitter:
		c.Twitter = link
	case entity.PlatformLinkedIn:
		c.LinkedIn = link
	default:
		c.URL = link
	}
}
