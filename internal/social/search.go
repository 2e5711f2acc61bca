// Package social runs domain-scoped web searches per social platform and
// normalises the hits into profile records.
package social

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/contact-discovery/internal/country"
	"github.com/octobees/contact-discovery/internal/entity"
	"github.com/octobees/contact-discovery/internal/websearch"
)

// DefaultPlatforms are searched when the caller names none.
var DefaultPlatforms = []entity.Platform{
	entity.PlatformInstagram,
	entity.PlatformTikTok,
	entity.PlatformTwitter,
	entity.PlatformLinkedIn,
}

var titleSuffix = regexp.MustCompile(` \| | - | • `)

// PlatformSearcher is the contract consumed by providers and the HTTP layer.
type PlatformSearcher interface {
	SearchPlatform(ctx context.Context, platform entity.Platform, query, countryCode string) []entity.SocialProfile
	SearchAllPlatforms(ctx context.Context, query, countryCode string, platforms ...entity.Platform) map[entity.Platform][]entity.SocialProfile
}

// Searcher implements PlatformSearcher on top of the generic web search client.
type Searcher struct {
	search websearch.Searcher
	logger *zap.Logger
}

// NewSearcher builds a Searcher. A nil logger disables logging.
func NewSearcher(search websearch.Searcher, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{search: search, logger: logger}
}

// BuildQuery renders the domain-scoped query for platform.
func BuildQuery(platform entity.Platform, query, countryCode string) string {
	rule, ok := rules[platform]
	if !ok {
		return ""
	}
	parts := []string{"site:" + rule.site, strings.TrimSpace(query)}
	if name := country.Name(countryCode); name != "" {
		parts = append(parts, name)
	}
	return strings.Join(parts, " ")
}

// SearchPlatform returns the profile pages found for query on platform. Unknown
// platforms and failed searches yield an empty list.
func (s *Searcher) SearchPlatform(ctx context.Context, platform entity.Platform, query, countryCode string) []entity.SocialProfile {
	if _, ok := rules[platform]; !ok {
		s.logger.Warn("unsupported social platform", zap.String("platform", string(platform)))
		return []entity.SocialProfile{}
	}

	results := s.search.Search(ctx, BuildQuery(platform, query, countryCode), countryCode)
	profiles := make([]entity.SocialProfile, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		handle, ok := ProfileFromURL(platform, r.URL)
		if !ok {
			continue
		}
		key := strings.ToLower(handle)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		profiles = append(profiles, entity.SocialProfile{
			Platform:    platform,
			DisplayName: DisplayName(r.Title),
			Headline:    strings.TrimSpace(r.Title),
			ProfileURL:  r.URL,
			Handle:      handle,
			Bio:         strings.TrimSpace(r.Snippet),
			Source:      fmt.Sprintf("%s search", platform),
		})
	}
	return profiles
}

// SearchAllPlatforms searches every platform concurrently. Each requested
// platform has a key in the result; a platform that fails maps to an empty list.
func (s *Searcher) SearchAllPlatforms(ctx context.Context, query, countryCode string, platforms ...entity.Platform) map[entity.Platform][]entity.SocialProfile {
	if len(platforms) == 0 {
		platforms = DefaultPlatforms
	}
	platforms = uniquePlatforms(platforms)
	results := make([][]entity.SocialProfile, len(platforms))

	var g errgroup.Group
	for i, platform := range platforms {
		g.Go(func() error {
			results[i] = s.searchIsolated(ctx, platform, query, countryCode)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[entity.Platform][]entity.SocialProfile, len(platforms))
	for i, platform := range platforms {
		out[platform] = results[i]
	}
	return out
}

func (s *Searcher) searchIsolated(ctx context.Context, platform entity.Platform, query, countryCode string) (profiles []entity.SocialProfile) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("social platform search panicked",
				zap.String("platform", string(platform)),
				zap.Any("panic", r),
			)
			profiles = []entity.SocialProfile{}
		}
	}()
	return s.SearchPlatform(ctx, platform, query, countryCode)
}

// DisplayName strips the trailing site-name suffix from a result title.
func DisplayName(title string) string {
	return strings.TrimSpace(titleSuffix.Split(title, 2)[0])
}

func uniquePlatforms(platforms []entity.Platform) []entity.Platform {
	seen := make(map[entity.Platform]struct{}, len(platforms))
	out := make([]entity.Platform, 0, len(platforms))
	for _, p := range platforms {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

var _ PlatformSearcher = (*Searcher)(nil)
