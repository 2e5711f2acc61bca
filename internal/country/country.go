// Package country resolves ISO 3166-1 alpha-2 codes to English names for
// search query enrichment.
package country

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Name returns the English country name for code, or the upper-cased code
// itself when it is not a known region.
func Name(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return code
	}
	name := display.English.Regions().Name(region)
	if name == "" || strings.EqualFold(name, "Unknown Region") {
		return code
	}
	return name
}

// Valid reports whether code is a well-formed two-letter region code.
func Valid(code string) bool {
	code = strings.TrimSpace(code)
	if len(code) != 2 {
		return false
	}
	_, err := language.ParseRegion(code)
	return err == nil
}
