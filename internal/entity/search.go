package entity

import "strings"

// SearchResult is one ranked hit returned by the web search backend.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
	Source  string `json:"source"`
	Date    string `json:"date,omitempty"`
	Image   string `json:"image,omitempty"`
}

// Platform names a social network supported by platform-scoped search.
type Platform string

const (
	PlatformInstagram  Platform = "instagram"
	PlatformTikTok     Platform = "tiktok"
	PlatformTwitter    Platform = "twitter"
	PlatformYouTube    Platform = "youtube"
	PlatformLinkedIn   Platform = "linkedin"
	PlatformSoundCloud Platform = "soundcloud"
	PlatformSpotify    Platform = "spotify"
)

// AllPlatforms lists every supported platform.
var AllPlatforms = []Platform{
	PlatformInstagram,
	PlatformTikTok,
	PlatformTwitter,
	PlatformYouTube,
	PlatformLinkedIn,
	PlatformSoundCloud,
	PlatformSpotify,
}

// ParsePlatform maps user input onto a known platform.
func ParsePlatform(value string) (Platform, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "instagram", "ig":
		return PlatformInstagram, true
	case "tiktok":
		return PlatformTikTok, true
	case "twitter", "x":
		return PlatformTwitter, true
	case "youtube", "yt":
		return PlatformYouTube, true
	case "linkedin":
		return PlatformLinkedIn, true
	case "soundcloud":
		return PlatformSoundCloud, true
	case "spotify":
		return PlatformSpotify, true
	default:
		return "", false
	}
}

// SocialProfile is a normalised profile page found through platform search.
type SocialProfile struct {
	Platform    Platform `json:"platform"`
	DisplayName string   `json:"display_name"`
	Headline    string   `json:"headline,omitempty"`
	ProfileURL  string   `json:"profile_url"`
	Handle      string   `json:"handle"`
	Bio         string   `json:"bio,omitempty"`
	Source      string   `json:"source"`
}
