package config

import "strings"

// Provider labels used in results, logs and credential probes.
const (
	ProviderApollo        = "Apollo"
	ProviderHunter        = "Hunter"
	ProviderLinkedIn      = "LinkedIn"
	ProviderPhantomBuster = "PhantomBuster"
)

// ProviderNames lists the providers in the order the deep search reports them.
var ProviderNames = []string{ProviderApollo, ProviderHunter, ProviderLinkedIn, ProviderPhantomBuster}

// Credentials holds the per-provider API secrets. It is passed by value to the
// components that need it so tests can model any availability combination.
type Credentials struct {
	ApolloAPIKey         string
	HunterAPIKey         string
	LinkedInAPIKey       string
	PhantomBusterAPIKey  string
	PhantomBusterAgentID string
}

// Has reports whether the named provider has everything its native API needs.
func (c Credentials) Has(provider string) bool {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "apollo":
		return c.ApolloAPIKey != ""
	case "hunter":
		return c.HunterAPIKey != ""
	case "linkedin":
		return c.LinkedInAPIKey != ""
	case "phantombuster":
		return c.PhantomBusterAPIKey != "" && c.PhantomBusterAgentID != ""
	default:
		return false
	}
}

// Availability returns the credential probe for every known provider.
func (c Credentials) Availability() map[string]bool {
	out := make(map[string]bool, len(ProviderNames))
	for _, name := range ProviderNames {
		out[name] = c.Has(name)
	}
	return out
}
