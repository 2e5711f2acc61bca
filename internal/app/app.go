// Package app assembles the discovery components from configuration. Both the
// HTTP server and the CLI build on it.
package app

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/octobees/contact-discovery/internal/cache"
	"github.com/octobees/contact-discovery/internal/config"
	"github.com/octobees/contact-discovery/internal/database"
	"github.com/octobees/contact-discovery/internal/discovery"
	"github.com/octobees/contact-discovery/internal/extractor"
	"github.com/octobees/contact-discovery/internal/provider"
	"github.com/octobees/contact-discovery/internal/service"
	"github.com/octobees/contact-discovery/internal/social"
	"github.com/octobees/contact-discovery/internal/websearch"
)

// App holds the wired components.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Search    *websearch.Client
	Extractor *extractor.Extractor
	Social    *social.Searcher
	Discovery *discovery.Service
	Queries   *service.QueryService

	closers []func()
}

// NewLogger builds a JSON production logger at level ("debug", "info", ...).
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, eris.Wrapf(err, "invalid log level %q", level)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	logger, err := cfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "build logger")
	}
	return logger, nil
}

// New wires every component described by cfg. Close releases the cache
// connections.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		return nil, eris.Wrap(err, "load discovery profile")
	}

	store, err := a.openCache(ctx, cfg.Cache)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Search = websearch.NewFromConfig(ctx, cfg.Search,
		websearch.WithLogger(logger.Named("websearch")),
		websearch.WithCache(store, cfg.Cache.TTL),
	)
	a.Extractor = extractor.New(
		extractor.WithTimeout(cfg.FetchTimeout),
		extractor.WithRateLimit(cfg.FetchRateLimit),
		extractor.WithPhoneRegion(cfg.DefaultCountry),
		extractor.WithLogger(logger.Named("extractor")),
	)
	a.Social = social.NewSearcher(a.Search, logger.Named("social"))

	pipelines := provider.NewAll(provider.Deps{
		Credentials: cfg.Credentials,
		Profile:     profile,
		Search:      a.Search,
		Extractor:   a.Extractor,
		Social:      a.Social,
		Logger:      logger.Named("provider"),
	})
	a.Discovery = discovery.NewService(pipelines, cfg.Credentials,
		discovery.WithProviderTimeout(cfg.ProviderTimeout),
		discovery.WithSocial(a.Social),
		discovery.WithLogger(logger.Named("discovery")),
	)
	a.Queries = service.NewQueryService(cfg.DefaultCountry)
	return a, nil
}

func (a *App) openCache(ctx context.Context, cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Backend {
	case "redis":
		store, err := cache.NewRedisStore(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, eris.Wrap(err, "connect redis cache")
		}
		a.closers = append(a.closers, func() { _ = store.Close() })
		a.Logger.Info("search cache enabled", zap.String("backend", "redis"), zap.String("addr", cfg.RedisAddr))
		return store, nil
	case "postgres":
		pool, err := database.Connect(ctx, cfg.DatabaseURL, database.DefaultPoolOptions())
		if err != nil {
			return nil, eris.Wrap(err, "connect postgres cache")
		}
		a.closers = append(a.closers, pool.Close)
		store := cache.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, eris.Wrap(err, "prepare search cache table")
		}
		a.Logger.Info("search cache enabled", zap.String("backend", "postgres"))
		return store, nil
	default:
		return cache.Noop{}, nil
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
