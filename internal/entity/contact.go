package entity

import "strings"

// Confidence is the qualitative trust tag attached to a discovered contact.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// MinNameLength is the shortest trimmed name a contact may carry.
const MinNameLength = 3

// Rank orders confidences for sorting: high first, unknown values last.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 0
	case ConfidenceMedium:
		return 1
	case ConfidenceLow:
		return 2
	default:
		return 3
	}
}

// Contact is a single outreach lead. Name is the deduplication key; every
// other field is optional and empty when unknown.
type Contact struct {
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	Title      string     `json:"title,omitempty"`
	Company    string     `json:"company,omitempty"`
	URL        string     `json:"url,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	LinkedIn   string     `json:"linkedin,omitempty"`
	Instagram  string     `json:"instagram,omitempty"`
	Twitter    string     `json:"twitter,omitempty"`
	TikTok     string     `json:"tiktok,omitempty"`
	Followers  int64      `json:"followers,omitempty"`
	Source     string     `json:"source"`
	Confidence Confidence `json:"confidence"`
}

// NormalizedName returns the trimmed, case-folded name used for grouping.
func (c Contact) NormalizedName() string {
	return strings.ToLower(strings.TrimSpace(c.Name))
}

// Valid reports whether the contact carries a usable name.
func (c Contact) Valid() bool {
	return len([]rune(strings.TrimSpace(c.Name))) >= MinNameLength
}
