package scoring

import (
	"net/url"
	"strings"

	"github.com/octobees/contact-discovery/internal/entity"
)

const (
	categoryReach      = "reachability"
	categorySocial     = "social_presence"
	categoryProfile    = "profile_completeness"
	categoryConfidence = "source_confidence"
)

var freeHostingDomains = []string{
	"wordpress.com",
	"blogspot.com",
	"wixsite.com",
	"weebly.com",
	"squarespace.com",
	"medium.com",
	"substack.com",
	"godaddysites.com",
	"notion.site",
	"googlepages.com",
	"linktr.ee",
	"bandcamp.com",
}

// ContactFeatures captures the signals used to rank a discovered contact for
// outreach.
type ContactFeatures struct {
	Emails     []string
	Phones     []string
	Socials    map[string]string
	Title      string
	Company    string
	Website    string
	Followers  int64
	Confidence entity.Confidence
}

// ScoreResult reports the aggregate score and the per-category breakdown.
type ScoreResult struct {
	Total     int            `json:"total"`
	Breakdown map[string]int `json:"breakdown"`
}

// FeaturesFromContact lifts a contact into scoring features.
func FeaturesFromContact(c entity.Contact) ContactFeatures {
	return ContactFeatures{
		Emails: []string{c.Email},
		Phones: []string{c.Phone},
		Socials: map[string]string{
			"linkedin":  c.LinkedIn,
			"instagram": c.Instagram,
			"twitter":   c.Twitter,
			"tiktok":    c.TikTok,
		},
		Title:      c.Title,
		Company:    c.Company,
		Website:    c.URL,
		Followers:  c.Followers,
		Confidence: c.Confidence,
	}
}

// ScoreContact is ComputeScore over a contact's features.
func ScoreContact(c entity.Contact) ScoreResult {
	return ComputeScore(FeaturesFromContact(c))
}

// ComputeScore evaluates the provided features and returns the score breakdown.
func ComputeScore(input ContactFeatures) ScoreResult {
	breakdown := map[string]int{
		categoryReach:      scoreReachability(input),
		categorySocial:     scoreSocialPresence(input),
		categoryProfile:    scoreProfileCompleteness(input),
		categoryConfidence: scoreConfidence(input.Confidence),
	}

	total := 0
	for _, value := range breakdown {
		total += value
	}

	return ScoreResult{
		Total:     total,
		Breakdown: breakdown,
	}
}

func scoreReachability(input ContactFeatures) int {
	score := 0
	if hasValue(input.Emails) {
		score += 15
	}
	if hasValue(input.Phones) {
		score += 10
	}
	return score
}

func scoreSocialPresence(input ContactFeatures) int {
	if len(input.Socials) == 0 {
		return 0
	}

	score := 0
	normalized := normalizeSocialKeys(input.Socials)
	for _, network := range []string{"linkedin", "instagram", "twitter", "tiktok"} {
		if normalized[network] != "" {
			score += 4
		}
	}
	if input.Followers >= 10000 {
		score += 4
	}
	if score > 20 {
		return 20
	}
	return score
}

func scoreProfileCompleteness(input ContactFeatures) int {
	score := 0
	if strings.TrimSpace(input.Title) != "" {
		score += 10
	}
	if strings.TrimSpace(input.Company) != "" {
		score += 10
	}
	if highQualityDomain(input.Website) {
		score += 10
	}
	return score
}

func scoreConfidence(c entity.Confidence) int {
	switch c {
	case entity.ConfidenceHigh:
		return 25
	case entity.ConfidenceMedium:
		return 15
	case entity.ConfidenceLow:
		return 5
	default:
		return 0
	}
}

func hasValue(values []string) bool {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return true
		}
	}
	return false
}

func normalizeSocialKeys(socials map[string]string) map[string]string {
	if len(socials) == 0 {
		return map[string]string{}
	}
	result := make(map[string]string, len(socials))
	for key, value := range socials {
		normalizedKey := strings.ToLower(strings.TrimSpace(key))
		if normalizedKey == "" {
			continue
		}
		result[normalizedKey] = strings.TrimSpace(value)
	}
	return result
}

func highQualityDomain(raw string) bool {
	domain := extractDomain(raw)
	if domain == "" {
		return false
	}
	for _, bad := range freeHostingDomains {
		if domain == bad || strings.HasSuffix(domain, "."+bad) {
			return false
		}
	}
	return strings.Count(domain, ".") >= 1
}

func extractDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lowered := strings.ToLower(raw)
	if !strings.Contains(lowered, "://") {
		lowered = "https://" + lowered
	}
	parsed, err := url.Parse(lowered)
	if err != nil {
		return ""
	}
	host := strings.TrimSpace(strings.ToLower(parsed.Hostname()))
	host = strings.TrimPrefix(host, "www.")
	return host
}
