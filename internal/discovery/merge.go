package discovery

import (
	"sort"

	"github.com/octobees/contact-discovery/internal/entity"
)

// MergeContacts collapses contacts sharing a normalised name into one record,
// keeping first-seen order. Invalid names are dropped before grouping. Within
// a group the confidence only rises (high always wins, medium beats low) and
// each optional field keeps the first non-empty value seen.
func MergeContacts(contacts []entity.Contact) []entity.Contact {
	merged := make([]entity.Contact, 0, len(contacts))
	index := make(map[string]int, len(contacts))

	for _, c := range contacts {
		if !c.Valid() {
			continue
		}
		key := c.NormalizedName()
		i, seen := index[key]
		if !seen {
			index[key] = len(merged)
			merged = append(merged, c)
			continue
		}
		mergeInto(&merged[i], c)
	}
	return merged
}

func mergeInto(dst *entity.Contact, src entity.Contact) {
	if raisesConfidence(dst.Confidence, src.Confidence) {
		dst.Confidence = src.Confidence
	}
	fill(&dst.Email, src.Email)
	fill(&dst.Title, src.Title)
	fill(&dst.Company, src.Company)
	fill(&dst.URL, src.URL)
	fill(&dst.Phone, src.Phone)
	fill(&dst.LinkedIn, src.LinkedIn)
	fill(&dst.Instagram, src.Instagram)
	fill(&dst.Twitter, src.Twitter)
	fill(&dst.TikTok, src.TikTok)
	if dst.Followers == 0 {
		dst.Followers = src.Followers
	}
}

func raisesConfidence(current, next entity.Confidence) bool {
	switch next {
	case entity.ConfidenceHigh:
		return true
	case entity.ConfidenceMedium:
		return current == entity.ConfidenceLow
	default:
		return false
	}
}

func fill(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

// RankContacts returns a copy sorted high, medium, low. Order within a tier is
// preserved.
func RankContacts(contacts []entity.Contact) []entity.Contact {
	ranked := append([]entity.Contact(nil), contacts...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence.Rank() < ranked[j].Confidence.Rank()
	})
	if ranked == nil {
		ranked = []entity.Contact{}
	}
	return ranked
}
