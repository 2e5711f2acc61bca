package dto

import "github.com/octobees/contact-discovery/internal/entity"

// DiscoveryRequest is the payload for deep search and single provider search.
type DiscoveryRequest struct {
	Query   string `json:"query"`
	Country string `json:"country,omitempty"`
}

// SocialSearchRequest is the payload for platform-scoped profile search.
type SocialSearchRequest struct {
	Query     string   `json:"query"`
	Country   string   `json:"country,omitempty"`
	Platforms []string `json:"platforms,omitempty"`
}

// ScoredContact is a contact annotated with its outreach score.
type ScoredContact struct {
	entity.Contact
	Score          int            `json:"score"`
	ScoreBreakdown map[string]int `json:"score_breakdown,omitempty"`
}

// DeepSearchResponse mirrors entity.DeepSearchResult with scored contacts.
type DeepSearchResponse struct {
	Query              string                           `json:"query"`
	Country            string                           `json:"country"`
	Contacts           []ScoredContact                  `json:"contacts"`
	PerProviderResults map[string]entity.PipelineResult `json:"per_provider_results"`
	Logs               []string                         `json:"logs"`
	Total              int                              `json:"total"`
	APIsUsed           []string                         `json:"apis_used"`
	APIsUnavailable    []string                         `json:"apis_unavailable"`
}

// SocialSearchResponse lists the profiles found per platform.
type SocialSearchResponse struct {
	Query    string                                      `json:"query"`
	Country  string                                      `json:"country"`
	Profiles map[entity.Platform][]entity.SocialProfile `json:"profiles"`
	Total    int                                         `json:"total"`
}
