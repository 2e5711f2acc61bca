// Package discovery runs the provider cascade: every pipeline concurrently,
// each isolated from the others, merged into one ranked contact list.
package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/contact-discovery/internal/config"
	"github.com/octobees/contact-discovery/internal/entity"
	"github.com/octobees/contact-discovery/internal/provider"
	"github.com/octobees/contact-discovery/internal/social"
)

const defaultProviderTimeout = 60 * time.Second

// ProviderStatus reports whether a provider's native API is configured.
type ProviderStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Service orchestrates the provider pipelines.
type Service struct {
	pipelines   []provider.Pipeline
	credentials config.Credentials
	social      social.PlatformSearcher
	timeout     time.Duration
	logger      *zap.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithProviderTimeout bounds each pipeline run.
func WithProviderTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSocial enables SearchSocial.
func WithSocial(searcher social.PlatformSearcher) Option {
	return func(s *Service) {
		s.social = searcher
	}
}

// NewService wires the pipelines in the order their results are reported.
func NewService(pipelines []provider.Pipeline, credentials config.Credentials, opts ...Option) *Service {
	s := &Service{
		pipelines:   pipelines,
		credentials: credentials,
		timeout:     defaultProviderTimeout,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Providers lists every pipeline with its credential availability.
func (s *Service) Providers() []ProviderStatus {
	out := make([]ProviderStatus, 0, len(s.pipelines))
	for _, p := range s.pipelines {
		out = append(out, ProviderStatus{Name: p.Name(), Available: s.credentials.Has(p.Name())})
	}
	return out
}

// RunDeepSearch queries every provider concurrently and merges the contacts.
// It never fails: a provider that errors, panics or overruns its budget
// contributes an empty result and a log line.
func (s *Service) RunDeepSearch(ctx context.Context, query, countryCode string) entity.DeepSearchResult {
	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID), zap.String("query", query), zap.String("country", countryCode))

	for _, p := range s.pipelines {
		logger.Info("provider credential probe",
			zap.String("provider", p.Name()),
			zap.Bool("available", s.credentials.Has(p.Name())),
		)
	}

	results := make([]entity.PipelineResult, len(s.pipelines))
	var g errgroup.Group
	for i, p := range s.pipelines {
		g.Go(func() error {
			results[i] = s.runPipeline(ctx, p, query, countryCode, logger)
			return nil
		})
	}
	_ = g.Wait()

	out := entity.DeepSearchResult{
		PerProviderResults: make(map[string]entity.PipelineResult, len(results)),
		Logs:               []string{},
		APIsUsed:           []string{},
		APIsUnavailable:    []string{},
	}
	var all []entity.Contact
	for i, res := range results {
		name := s.pipelines[i].Name()
		out.PerProviderResults[name] = res
		out.Logs = append(out.Logs, res.Logs...)
		all = append(all, res.Contacts...)
		if res.APIUsed {
			out.APIsUsed = append(out.APIsUsed, name)
		} else {
			out.APIsUnavailable = append(out.APIsUnavailable, name)
		}
	}

	out.Contacts = RankContacts(MergeContacts(all))
	out.Total = len(out.Contacts)
	logger.Info("deep search complete",
		zap.Int("raw_contacts", len(all)),
		zap.Int("contacts", out.Total),
		zap.Strings("apis_used", out.APIsUsed),
	)
	return out
}

// SearchProvider runs a single named pipeline under the same isolation rules
// as the deep search.
func (s *Service) SearchProvider(ctx context.Context, name, query, countryCode string) (entity.PipelineResult, error) {
	p, err := provider.Lookup(s.pipelines, name)
	if err != nil {
		return entity.PipelineResult{}, err
	}
	logger := s.logger.With(zap.String("run_id", uuid.NewString()), zap.String("query", query))
	return s.runPipeline(ctx, p, query, countryCode, logger), nil
}

// SearchSocial runs platform-scoped search. No platforms means the defaults.
func (s *Service) SearchSocial(ctx context.Context, query, countryCode string, platforms []entity.Platform) map[entity.Platform][]entity.SocialProfile {
	if s.social == nil {
		return map[entity.Platform][]entity.SocialProfile{}
	}
	return s.social.SearchAllPlatforms(ctx, query, countryCode, platforms...)
}

// runPipeline bounds one pipeline by the provider timeout. A pipeline that
// ignores cancellation is abandoned once the budget is spent.
func (s *Service) runPipeline(parent context.Context, p provider.Pipeline, query, countryCode string, logger *zap.Logger) entity.PipelineResult {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	done := make(chan entity.PipelineResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("provider panicked", zap.String("provider", p.Name()), zap.Any("panic", r))
				done <- failedResult(p.Name(), fmt.Sprintf("provider failed: %v", r))
			}
		}()
		done <- p.Search(ctx, query, countryCode)
	}()

	select {
	case res := <-done:
		if res.Contacts == nil {
			res.Contacts = []entity.Contact{}
		}
		if res.Source == "" {
			res.Source = p.Name()
		}
		return res
	case <-ctx.Done():
		logger.Warn("provider abandoned", zap.String("provider", p.Name()), zap.Error(ctx.Err()))
		return failedResult(p.Name(), fmt.Sprintf("provider did not finish within %s: %v", s.timeout, ctx.Err()))
	}
}

func failedResult(name, reason string) entity.PipelineResult {
	return entity.PipelineResult{
		Contacts: []entity.Contact{},
		Source:   name,
		Logs:     []string{fmt.Sprintf("[%s] %s", name, reason)},
	}
}
