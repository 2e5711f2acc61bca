package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile is the outreach vocabulary used to shape provider requests and
// fallback queries.
type Profile struct {
	Titles          []string          `yaml:"titles"`
	Industries      []string          `yaml:"industries"`
	FallbackPhrases map[string]string `yaml:"fallback_phrases"`
}

// DefaultProfile targets music PR: curators, press and artist management.
func DefaultProfile() Profile {
	return Profile{
		Titles: []string{
			"curator",
			"journalist",
			"blogger",
			"DJ",
			"A&R",
			"publicist",
			"editor",
			"manager",
		},
		Industries: []string{"music", "entertainment", "media"},
		FallbackPhrases: map[string]string{
			ProviderApollo: "music industry contacts email",
			ProviderHunter: "press contact email publicist",
		},
	}
}

// LoadProfile reads a YAML profile from path. Empty sections keep their defaults.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	if strings.TrimSpace(path) == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("read profile: %w", err)
	}

	var loaded Profile
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return profile, fmt.Errorf("parse profile: %w", err)
	}

	if len(loaded.Titles) > 0 {
		profile.Titles = loaded.Titles
	}
	if len(loaded.Industries) > 0 {
		profile.Industries = loaded.Industries
	}
	for provider, phrase := range loaded.FallbackPhrases {
		if strings.TrimSpace(phrase) != "" {
			profile.FallbackPhrases[provider] = strings.TrimSpace(phrase)
		}
	}
	return profile, nil
}

// Phrase returns the fallback search phrase for a provider.
func (p Profile) Phrase(provider string) string {
	if phrase, ok := p.FallbackPhrases[provider]; ok && phrase != "" {
		return phrase
	}
	if len(p.Industries) > 0 {
		return p.Industries[0] + " industry contacts email"
	}
	return "contacts email"
}
