package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-discovery/internal/discovery"
	"github.com/octobees/contact-discovery/internal/entity"
	middlewarepkg "github.com/octobees/contact-discovery/internal/middleware"
	"github.com/octobees/contact-discovery/internal/provider"
	"github.com/octobees/contact-discovery/internal/service"
)

type runnerStub struct {
	query     string
	country   string
	requestID string
	provider  string
	platforms []entity.Platform
	result    entity.DeepSearchResult
}

func (s *runnerStub) RunDeepSearch(ctx context.Context, query, countryCode string) entity.DeepSearchResult {
	s.query, s.country = query, countryCode
	s.requestID = provider.RequestIDFromContext(ctx)
	return s.result
}

func (s *runnerStub) SearchProvider(ctx context.Context, name, query, countryCode string) (entity.PipelineResult, error) {
	s.provider = name
	if !strings.EqualFold(name, "apollo") {
		return entity.PipelineResult{}, provider.ErrUnknownProvider
	}
	return entity.PipelineResult{Source: "Apollo", Contacts: []entity.Contact{}, APIUsed: true}, nil
}

func (s *runnerStub) SearchSocial(ctx context.Context, query, countryCode string, platforms []entity.Platform) map[entity.Platform][]entity.SocialProfile {
	s.platforms = platforms
	return map[entity.Platform][]entity.SocialProfile{
		entity.PlatformInstagram: {{Platform: entity.PlatformInstagram, Handle: "groove"}},
		entity.PlatformTikTok:    {},
	}
}

func (s *runnerStub) Providers() []discovery.ProviderStatus {
	return []discovery.ProviderStatus{{Name: "Apollo", Available: true}, {Name: "Hunter"}}
}

func newDiscoveryContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestDiscoveryHandler_DeepSearch(t *testing.T) {
	e := echo.New()
	runner := &runnerStub{result: entity.DeepSearchResult{
		Contacts: []entity.Contact{
			{Name: "Lerato Khumalo", Email: "lerato@groove.co.za", Confidence: entity.ConfidenceHigh, Source: "Apollo"},
		},
		PerProviderResults: map[string]entity.PipelineResult{},
		Logs:               []string{"[Apollo] Apollo API returned 1 contacts"},
		Total:              1,
		APIsUsed:           []string{"Apollo"},
		APIsUnavailable:    []string{"Hunter", "LinkedIn", "PhantomBuster"},
	}}
	h := NewDiscoveryHandler(runner, service.NewQueryService("ZA"))

	c, rec := newDiscoveryContext(e, http.MethodPost, "/discovery/deep-search", `{"query":"please find me amapiano curators"}`)
	c.Set(middlewarepkg.ContextKeyRequestID, "req-123")

	if err := h.DeepSearch(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if runner.query != "amapiano curators" || runner.country != "ZA" {
		t.Fatalf("unexpected normalised query %q/%q", runner.query, runner.country)
	}
	if runner.requestID != "req-123" {
		t.Fatalf("expected request id to be forwarded, got %q", runner.requestID)
	}

	var payload struct {
		Status string `json:"status"`
		Data   struct {
			Contacts []struct {
				Name  string `json:"name"`
				Score int    `json:"score"`
			} `json:"contacts"`
			Total    int      `json:"total"`
			APIsUsed []string `json:"apis_used"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Status != "success" || payload.Data.Total != 1 {
		t.Fatalf("unexpected response: %+v", payload)
	}
	if len(payload.Data.Contacts) != 1 || payload.Data.Contacts[0].Name != "Lerato Khumalo" {
		t.Fatalf("unexpected contacts: %+v", payload.Data.Contacts)
	}
	if payload.Data.Contacts[0].Score != 40 {
		t.Fatalf("expected score 40 for email + high confidence, got %d", payload.Data.Contacts[0].Score)
	}
}

func TestDiscoveryHandler_DeepSearchValidation(t *testing.T) {
	e := echo.New()
	h := NewDiscoveryHandler(&runnerStub{}, nil)

	cases := []struct {
		name string
		body string
	}{
		{"invalid payload", "{"},
		{"empty query", `{"query":"   "}`},
		{"filler only", `{"query":"please find me"}`},
		{"bad country", `{"query":"curators","country":"South Africa"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newDiscoveryContext(e, http.MethodPost, "/discovery/deep-search", tc.body)
			_ = h.DeepSearch(c)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestDiscoveryHandler_ProviderSearch(t *testing.T) {
	e := echo.New()
	h := NewDiscoveryHandler(&runnerStub{}, nil)

	c, rec := newDiscoveryContext(e, http.MethodPost, "/discovery/providers/apollo", `{"query":"curators","country":"us"}`)
	c.SetParamNames("provider")
	c.SetParamValues("apollo")
	if err := h.ProviderSearch(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, rec = newDiscoveryContext(e, http.MethodPost, "/discovery/providers/clearbit", `{"query":"curators"}`)
	c.SetParamNames("provider")
	c.SetParamValues("clearbit")
	_ = h.ProviderSearch(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown provider, got %d", rec.Code)
	}
}

func TestDiscoveryHandler_SocialSearch(t *testing.T) {
	e := echo.New()
	runner := &runnerStub{}
	h := NewDiscoveryHandler(runner, nil)

	c, rec := newDiscoveryContext(e, http.MethodPost, "/discovery/social", `{"query":"amapiano","country":"ZA","platforms":["ig","tiktok"]}`)
	if err := h.SocialSearch(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(runner.platforms) != 2 || runner.platforms[0] != entity.PlatformInstagram {
		t.Fatalf("unexpected platforms: %v", runner.platforms)
	}
	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Fatalf("expected total 1 in %s", rec.Body.String())
	}

	c, rec = newDiscoveryContext(e, http.MethodPost, "/discovery/social", `{"query":"amapiano","platforms":["myspace"]}`)
	_ = h.SocialSearch(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported platform, got %d", rec.Code)
	}
}

func TestDiscoveryHandler_Providers(t *testing.T) {
	e := echo.New()
	h := NewDiscoveryHandler(&runnerStub{}, nil)

	c, rec := newDiscoveryContext(e, http.MethodGet, "/discovery/providers", "")
	if err := h.Providers(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"name":"Apollo","available":true`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
