package provider

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/octobees/contact-discovery/internal/config"
	"github.com/octobees/contact-discovery/internal/extractor"
	"github.com/octobees/contact-discovery/internal/social"
	"github.com/octobees/contact-discovery/internal/websearch"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultPollAttempts = 10
)

// ErrUnknownProvider is returned when a provider name matches no pipeline.
var ErrUnknownProvider = eris.New("unknown provider")

// Deps carries everything the pipelines share. Endpoints overrides provider
// base URLs, keyed by provider name.
type Deps struct {
	Credentials   config.Credentials
	Profile       config.Profile
	Search        websearch.Searcher
	Extractor     extractor.PageExtractor
	Social        social.PlatformSearcher
	HTTPClient    HTTPClient
	Endpoints     map[string]string
	FallbackLimit int
	PollInterval  time.Duration
	PollAttempts  int
	Logger        *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if len(d.Profile.Titles) == 0 && len(d.Profile.FallbackPhrases) == 0 {
		d.Profile = config.DefaultProfile()
	}
	if d.PollInterval <= 0 {
		d.PollInterval = defaultPollInterval
	}
	if d.PollAttempts <= 0 {
		d.PollAttempts = defaultPollAttempts
	}
	return d
}

func (d Deps) endpoint(provider, fallback string) string {
	if u := strings.TrimSpace(d.Endpoints[provider]); u != "" {
		return u
	}
	return fallback
}

// NewAll builds every provider pipeline in reporting order.
func NewAll(d Deps) []Pipeline {
	return []Pipeline{
		NewApollo(d),
		NewHunter(d),
		NewLinkedIn(d),
		NewPhantomBuster(d),
	}
}

// Lookup finds a pipeline by case-insensitive name.
func Lookup(pipelines []Pipeline, name string) (Pipeline, error) {
	want := strings.TrimSpace(name)
	for _, p := range pipelines {
		if strings.EqualFold(p.Name(), want) {
			return p, nil
		}
	}
	return nil, eris.Wrapf(ErrUnknownProvider, "%q", want)
}
