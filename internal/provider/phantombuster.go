package provider

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/octobees/contact-discovery/internal/config"
	"github.com/octobees/contact-discovery/internal/country"
	"github.com/octobees/contact-discovery/internal/entity"
	"github.com/octobees/contact-discovery/internal/extractor"
)

const (
	phantomBaseURL     = "https://api.phantombuster.com"
	phantomLaunchPath  = "/api/v2/agents/launch"
	phantomResultPath  = "/api/v2/containers/fetch-result-object"
	phantomProfileSize = 10
)

type phantomRequest struct {
	AgentID string
	Search  string
}

type phantomLaunchRequest struct {
	ID       string          `json:"id"`
	Argument phantomArgument `json:"argument"`
}

type phantomArgument struct {
	Search           string `json:"search"`
	NumberOfProfiles int    `json:"numberOfProfiles"`
}

type phantomLaunchResponse struct {
	ContainerID string `json:"containerId"`
}

type phantomResultResponse struct {
	ResultObject *string `json:"resultObject"`
}

type phantomProfile struct {
	FullName      string `json:"fullName"`
	Username      string `json:"username"`
	ProfileURL    string `json:"profileUrl"`
	Bio           string `json:"bio"`
	PublicEmail   string `json:"publicEmail"`
	PublicPhone   string `json:"publicPhoneNumber"`
	Category      string `json:"category"`
	FollowerCount int64  `json:"followerCount"`
	Website       string `json:"website"`
}

// NewPhantomBuster builds the social-automation pipeline. The native path
// launches a configured scraping agent and polls for its result; the fallback
// merges Instagram and TikTok platform search.
func NewPhantomBuster(d Deps) Pipeline {
	d = d.withDefaults()
	client := NewJSONClient(d.HTTPClient, d.endpoint(config.ProviderPhantomBuster, phantomBaseURL), map[string]string{
		"X-Phantombuster-Key-1": d.Credentials.PhantomBusterAPIKey,
	})
	interval, attempts := d.PollInterval, d.PollAttempts

	native := Native[phantomRequest, []phantomProfile]{
		Shape: func(query, countryCode string) phantomRequest {
			search := strings.TrimSpace(query)
			if name := country.Name(countryCode); name != "" {
				search += " " + name
			}
			return phantomRequest{AgentID: d.Credentials.PhantomBusterAgentID, Search: search}
		},
		Call: func(ctx context.Context, req phantomRequest) ([]phantomProfile, error) {
			var launched phantomLaunchResponse
			body := phantomLaunchRequest{
				ID:       req.AgentID,
				Argument: phantomArgument{Search: req.Search, NumberOfProfiles: phantomProfileSize},
			}
			if err := client.PostJSON(ctx, phantomLaunchPath, nil, body, &launched); err != nil {
				return nil, eris.Wrap(err, "phantombuster: launch agent")
			}
			if launched.ContainerID == "" {
				return nil, eris.New("phantombuster: launch returned no container id")
			}
			return pollPhantomResult(ctx, client, launched.ContainerID, interval, attempts)
		},
		Map: mapPhantomProfiles,
	}

	fallback := PlatformFallback{
		Provider:  config.ProviderPhantomBuster,
		Platforms: []entity.Platform{entity.PlatformInstagram, entity.PlatformTikTok},
		Social:    d.Social,
	}
	return New(config.ProviderPhantomBuster, d.Credentials.Has(config.ProviderPhantomBuster), native, fallback, d.Logger)
}

// pollPhantomResult waits for the container's result object, giving up after
// attempts polls.
func pollPhantomResult(ctx context.Context, client *JSONClient, containerID string, interval time.Duration, attempts int) ([]phantomProfile, error) {
	query := url.Values{}
	query.Set("id", containerID)

	for attempt := 1; attempt <= attempts; attempt++ {
		var resp phantomResultResponse
		if err := client.GetJSON(ctx, phantomResultPath, query, &resp); err != nil {
			return nil, eris.Wrap(err, "phantombuster: fetch result")
		}
		if resp.ResultObject != nil && strings.TrimSpace(*resp.ResultObject) != "" {
			var profiles []phantomProfile
			if err := json.Unmarshal([]byte(*resp.ResultObject), &profiles); err != nil {
				return nil, eris.Wrap(err, "phantombuster: decode result object")
			}
			return profiles, nil
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, eris.Wrap(ctx.Err(), "phantombuster: polling cancelled")
		case <-timer.C:
		}
	}
	return nil, eris.Errorf("phantombuster: no result after %d polls", attempts)
}

func mapPhantomProfiles(profiles []phantomProfile) []entity.Contact {
	contacts := make([]entity.Contact, 0, len(profiles))
	for _, p := range profiles {
		name := strings.TrimSpace(p.FullName)
		if name == "" {
			name = strings.TrimSpace(p.Username)
		}
		c := entity.Contact{
			Name:       name,
			Email:      strings.TrimSpace(p.PublicEmail),
			Title:      strings.TrimSpace(p.Category),
			URL:        strings.TrimSpace(p.Website),
			Phone:      strings.TrimSpace(p.PublicPhone),
			Followers:  p.FollowerCount,
			Source:     config.ProviderPhantomBuster,
			Confidence: entity.ConfidenceMedium,
		}
		setProfileLink(&c, p.ProfileURL)
		if c.Email != "" {
			c.Confidence = entity.ConfidenceHigh
		}
		contacts = append(contacts, c)
	}
	return contacts
}

// setProfileLink files a scraped profile URL under the network its host
// belongs to. Links on other hosts only fill an empty URL.
func setProfileLink(c *entity.Contact, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	link, network, ok := extractor.SocialLink(raw)
	switch {
	case !ok:
		if c.URL == "" {
			c.URL = raw
		}
	case network == "instagram":
		c.Instagram = link
	case network == "tiktok":
		c.TikTok = link
	case network == "twitter":
		c.Twitter = link
	case network == "linkedin":
		c.LinkedIn = link
	default:
		if c.URL == "" {
			c.URL = link
		}
	}
}
