package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-discovery/internal/config"
	"github.com/octobees/contact-discovery/internal/handler"
	middlewarepkg "github.com/octobees/contact-discovery/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Discovery *handler.DiscoveryHandler
}

// Register wires all HTTP routes for the API. It also fixes how client IPs
// are resolved, since the discovery limiter buckets by client IP.
func Register(e *echo.Echo, cfg *config.Config, handlers Handlers) {
	e.IPExtractor = middlewarepkg.ClientIPExtractor(cfg.TrustedProxies)

	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	if handlers.Discovery == nil {
		return
	}

	discovery := e.Group("/discovery", middlewarepkg.DiscoveryRateLimiter(cfg.RateLimitDiscovery))
	discovery.GET("/providers", handlers.Discovery.Providers)
	discovery.POST("/providers/:provider", handlers.Discovery.ProviderSearch)
	discovery.POST("/deep-search", handlers.Discovery.DeepSearch)
	discovery.POST("/social", handlers.Discovery.SocialSearch)
}
