package service

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/octobees/contact-discovery/internal/country"
	"github.com/octobees/contact-discovery/internal/dto"
)

var (
	// ErrEmptyQuery is returned when nothing searchable is left after cleanup.
	ErrEmptyQuery = eris.New("query is required")
	// ErrInvalidCountry is returned for anything but a two-letter region code.
	ErrInvalidCountry = eris.New("country must be a two-letter ISO 3166 code")

	fillerExpr = regexp.MustCompile(`(?i)\b(please|pls|find me|find|search for|look for|look up|get me|i need|i want|cariin|cari|tolong|minta|mohon|carikan|saya|aku|butuh|dong)\b`)
	spaceExpr  = regexp.MustCompile(`\s+`)
)

// QueryService turns raw discovery requests into clean search parameters.
type QueryService struct {
	DefaultCountry string
}

// DiscoveryQuery is a normalised query and target country.
type DiscoveryQuery struct {
	Query   string
	Country string
}

// NewQueryService creates a normaliser. An empty default country falls back to US.
func NewQueryService(defaultCountry string) *QueryService {
	defaultCountry = strings.ToUpper(strings.TrimSpace(defaultCountry))
	if defaultCountry == "" {
		defaultCountry = "US"
	}
	return &QueryService{DefaultCountry: defaultCountry}
}

// Normalize strips conversational filler from the query and resolves the
// country code.
func (s *QueryService) Normalize(req dto.DiscoveryRequest) (DiscoveryQuery, error) {
	query := fillerExpr.ReplaceAllString(req.Query, " ")
	query = strings.Trim(spaceExpr.ReplaceAllString(query, " "), " ,.?!")
	if query == "" {
		return DiscoveryQuery{}, ErrEmptyQuery
	}

	code := strings.ToUpper(strings.TrimSpace(req.Country))
	if code == "" {
		code = s.DefaultCountry
	}
	if !country.Valid(code) {
		return DiscoveryQuery{}, eris.Wrapf(ErrInvalidCountry, "got %q", req.Country)
	}

	return DiscoveryQuery{Query: query, Country: code}, nil
}
