package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-discovery/internal/discovery"
	"github.com/octobees/contact-discovery/internal/dto"
	"github.com/octobees/contact-discovery/internal/entity"
	middleware "github.com/octobees/contact-discovery/internal/middleware"
	"github.com/octobees/contact-discovery/internal/provider"
	"github.com/octobees/contact-discovery/internal/service"
	"github.com/octobees/contact-discovery/internal/service/scoring"
)

// DiscoveryRunner is the orchestration surface the handler depends on.
type DiscoveryRunner interface {
	RunDeepSearch(ctx context.Context, query, countryCode string) entity.DeepSearchResult
	SearchProvider(ctx context.Context, name, query, countryCode string) (entity.PipelineResult, error)
	SearchSocial(ctx context.Context, query, countryCode string, platforms []entity.Platform) map[entity.Platform][]entity.SocialProfile
	Providers() []discovery.ProviderStatus
}

// DiscoveryHandler exposes contact discovery over HTTP.
type DiscoveryHandler struct {
	runner  DiscoveryRunner
	queries *service.QueryService
}

// NewDiscoveryHandler wires a handler around runner.
func NewDiscoveryHandler(runner DiscoveryRunner, queries *service.QueryService) *DiscoveryHandler {
	if queries == nil {
		queries = service.NewQueryService("")
	}
	return &DiscoveryHandler{runner: runner, queries: queries}
}

// Providers handles GET /discovery/providers.
func (h *DiscoveryHandler) Providers(c echo.Context) error {
	return Success(c, http.StatusOK, "providers fetched", h.runner.Providers())
}

// DeepSearch handles POST /discovery/deep-search.
func (h *DiscoveryHandler) DeepSearch(c echo.Context) error {
	var req dto.DiscoveryRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	q, err := h.queries.Normalize(req)
	if err != nil {
		return Error(c, http.StatusBadRequest, queryErrorMessage(err))
	}

	result := h.runner.RunDeepSearch(requestContext(c), q.Query, q.Country)

	scored := make([]dto.ScoredContact, 0, len(result.Contacts))
	for _, contact := range result.Contacts {
		score := scoring.ScoreContact(contact)
		scored = append(scored, dto.ScoredContact{
			Contact:        contact,
			Score:          score.Total,
			ScoreBreakdown: score.Breakdown,
		})
	}

	return Success(c, http.StatusOK, "deep search completed", dto.DeepSearchResponse{
		Query:              q.Query,
		Country:            q.Country,
		Contacts:           scored,
		PerProviderResults: result.PerProviderResults,
		Logs:               result.Logs,
		Total:              result.Total,
		APIsUsed:           result.APIsUsed,
		APIsUnavailable:    result.APIsUnavailable,
	})
}

// ProviderSearch handles POST /discovery/providers/:provider.
func (h *DiscoveryHandler) ProviderSearch(c echo.Context) error {
	var req dto.DiscoveryRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	q, err := h.queries.Normalize(req)
	if err != nil {
		return Error(c, http.StatusBadRequest, queryErrorMessage(err))
	}

	name := c.Param("provider")
	result, err := h.runner.SearchProvider(requestContext(c), name, q.Query, q.Country)
	if err != nil {
		if errors.Is(err, provider.ErrUnknownProvider) {
			return Error(c, http.StatusNotFound, "unknown provider: "+name)
		}
		return Error(c, http.StatusInternalServerError, "provider search failed")
	}
	return Success(c, http.StatusOK, "provider search completed", result)
}

// SocialSearch handles POST /discovery/social.
func (h *DiscoveryHandler) SocialSearch(c echo.Context) error {
	var req dto.SocialSearchRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	q, err := h.queries.Normalize(dto.DiscoveryRequest{Query: req.Query, Country: req.Country})
	if err != nil {
		return Error(c, http.StatusBadRequest, queryErrorMessage(err))
	}

	platforms := make([]entity.Platform, 0, len(req.Platforms))
	for _, raw := range req.Platforms {
		p, ok := entity.ParsePlatform(raw)
		if !ok {
			return Error(c, http.StatusBadRequest, "unsupported platform: "+strings.TrimSpace(raw))
		}
		platforms = append(platforms, p)
	}

	profiles := h.runner.SearchSocial(requestContext(c), q.Query, q.Country, platforms)
	total := 0
	for _, list := range profiles {
		total += len(list)
	}
	return Success(c, http.StatusOK, "social search completed", dto.SocialSearchResponse{
		Query:    q.Query,
		Country:  q.Country,
		Profiles: profiles,
		Total:    total,
	})
}

func requestContext(c echo.Context) context.Context {
	return provider.WithRequestID(c.Request().Context(), middleware.RequestIDFromContext(c))
}

func queryErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		return "query is required"
	case errors.Is(err, service.ErrInvalidCountry):
		return "country must be a two-letter ISO 3166 code"
	default:
		return "invalid query"
	}
}
