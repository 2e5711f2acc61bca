package social

import (
	"net/url"
	"strings"

	"github.com/octobees/contact-discovery/internal/entity"
)

// platformRule describes how one network is searched and how its profile URLs
// look.
type platformRule struct {
	// site is the search operator scope, including any profile path shape.
	site    string
	hosts   []string
	profile func(segments []string) (handle string, ok bool)
}

var rules = map[entity.Platform]platformRule{
	entity.PlatformInstagram: {
		site:  "instagram.com",
		hosts: []string{"instagram.com"},
		profile: singleSegment("p", "reel", "reels", "explore", "stories", "tv",
			"accounts", "about", "directory", "developer", "legal", "tags"),
	},
	entity.PlatformTikTok: {
		site:    "tiktok.com/@",
		hosts:   []string{"tiktok.com"},
		profile: tiktokProfile,
	},
	entity.PlatformTwitter: {
		site:  "twitter.com",
		hosts: []string{"twitter.com", "x.com"},
		profile: singleSegment("status", "i", "search", "hashtag", "home", "explore",
			"intent", "share", "settings", "login", "signup", "messages", "notifications", "tos", "privacy"),
	},
	entity.PlatformYouTube: {
		site:    "youtube.com",
		hosts:   []string{"youtube.com"},
		profile: youtubeProfile,
	},
	entity.PlatformLinkedIn: {
		site:    "linkedin.com/in/",
		hosts:   []string{"linkedin.com"},
		profile: linkedinProfile,
	},
	entity.PlatformSoundCloud: {
		site:  "soundcloud.com",
		hosts: []string{"soundcloud.com"},
		profile: singleSegment("discover", "search", "charts", "stream", "you",
			"tags", "upload", "pages", "terms-of-use", "mobile"),
	},
	entity.PlatformSpotify: {
		site:    "open.spotify.com",
		hosts:   []string{"open.spotify.com"},
		profile: spotifyProfile,
	},
}

// ProfileFromURL derives the handle for a profile URL on platform. ok is false
// for non-profile pages (posts, reels, tweets, tracks, videos, playlists,
// company pages) and for hosts that do not belong to the platform.
func ProfileFromURL(platform entity.Platform, raw string) (handle string, ok bool) {
	rule, known := rules[platform]
	if !known {
		return "", false
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	if !hostMatches(u.Hostname(), rule.hosts) {
		return "", false
	}
	return rule.profile(pathSegments(u.Path))
}

func hostMatches(host string, domains []string) bool {
	host = strings.ToLower(strings.Trim(host, "."))
	for _, domain := range domains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func pathSegments(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// singleSegment accepts /<handle> paths whose handle is not a reserved word.
func singleSegment(reserved ...string) func([]string) (string, bool) {
	blocked := make(map[string]struct{}, len(reserved))
	for _, r := range reserved {
		blocked[r] = struct{}{}
	}
	return func(segments []string) (string, bool) {
		if len(segments) != 1 {
			return "", false
		}
		handle := strings.TrimPrefix(segments[0], "@")
		if _, bad := blocked[strings.ToLower(handle)]; bad || handle == "" {
			return "", false
		}
		return handle, true
	}
}

func tiktokProfile(segments []string) (string, bool) {
	if len(segments) != 1 || !strings.HasPrefix(segments[0], "@") {
		return "", false
	}
	handle := strings.TrimPrefix(segments[0], "@")
	return handle, handle != ""
}

func youtubeProfile(segments []string) (string, bool) {
	switch {
	case len(segments) == 1 && strings.HasPrefix(segments[0], "@"):
		handle := strings.TrimPrefix(segments[0], "@")
		return handle, handle != ""
	case len(segments) == 2:
		switch segments[0] {
		case "c", "channel", "user":
			return segments[1], true
		}
	}
	return "", false
}

func linkedinProfile(segments []string) (string, bool) {
	if len(segments) != 2 || segments[0] != "in" {
		return "", false
	}
	return segments[1], true
}

func spotifyProfile(segments []string) (string, bool) {
	if len(segments) != 2 {
		return "", false
	}
	switch segments[0] {
	case "artist", "user":
		return segments[1], true
	}
	return "", false
}
