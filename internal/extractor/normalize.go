package extractor

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

var (
	emailFinder  = regexp.MustCompile(`[a-zA-Z0-9._%+\-']+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	phoneFinder  = regexp.MustCompile(`\+?\(?\d[\d \t().\-]{7,}\d`)
	isoDate      = regexp.MustCompile(`\b(?:19|20)\d{2}[-/.](?:0[1-9]|1[0-2])[-/.](?:0[1-9]|[12]\d|3[01])\b`)
	postalSuffix = regexp.MustCompile(`\b\d{4,6}$`)
	idnaProfile  = idna.Lookup
)

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "US"
	minPhoneDigits     = 10
	maxPhoneDigits     = 15
)

// placeholderDomains never belong to a real inbox.
var placeholderDomains = map[string]struct{}{
	"example.com":         {},
	"example.org":         {},
	"example.net":         {},
	"domain.com":          {},
	"email.com":           {},
	"yourdomain.com":      {},
	"yoursite.com":        {},
	"company.com":         {},
	"sentry.io":           {},
	"sentry.wixpress.com": {},
	"wixpress.com":        {},
}

var imageSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico", ".bmp"}

// socialDomains maps a registrable host to the network it belongs to.
var socialDomains = map[string]string{
	"linkedin.com":  "linkedin",
	"twitter.com":   "twitter",
	"x.com":         "twitter",
	"facebook.com":  "facebook",
	"fb.com":        "facebook",
	"instagram.com": "instagram",
	"tiktok.com":    "tiktok",
	"youtube.com":   "youtube",
	"youtu.be":      "youtube",
}

// FindEmails returns the distinct plausible email addresses in text, in the
// order they first appear.
func FindEmails(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, match := range emailFinder.FindAllString(text, -1) {
		email, ok := normalizeEmail(match)
		if !ok {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}

func normalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.Trim(strings.TrimSpace(raw), ".'"))
	if email == "" || !emailPattern.MatchString(email) {
		return "", false
	}
	if strings.Contains(email, "@2x") || strings.Contains(email, "@3x") {
		return "", false
	}
	for _, suffix := range imageSuffixes {
		if strings.HasSuffix(email, suffix) {
			return "", false
		}
	}

	parts := strings.SplitN(email, "@", 2)
	local, domain := parts[0], parts[1]
	if local == "" || !validEmailDomain(domain) {
		return "", false
	}
	asciiDomain, err := idnaProfile.ToASCII(domain)
	if err != nil || asciiDomain == "" {
		return "", false
	}
	if _, blocked := placeholderDomains[asciiDomain]; blocked {
		return "", false
	}
	return local + "@" + asciiDomain, true
}

// validEmailDomain requires at least two labels, each 1-63 characters
// without a leading or trailing hyphen.
func validEmailDomain(domain string) bool {
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" || len(label) > 63 || label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
	}
	return true
}

// phoneKey returns the dedup key for a phone candidate: E.164 when the number
// parses for region, else its bare digits. ok is false when the candidate has
// too few or too many digits, or contains a calendar date.
func phoneKey(raw, region string) (key string, display string, ok bool) {
	raw = strings.TrimSpace(raw)
	if isoDate.MatchString(raw) {
		return "", "", false
	}
	digits := digitsOnly(raw)
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", "", false
	}
	if region == "" {
		region = defaultPhoneRegion
	}
	if number, err := phonenumbers.Parse(raw, region); err == nil && phonenumbers.IsValidNumber(number) {
		formatted := phonenumbers.Format(number, phonenumbers.E164)
		return formatted, formatted, true
	}
	return digits, raw, true
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SocialLink cleans raw and reports the network its host belongs to. Hosts
// match on a domain suffix, never a substring. Links without a path, such as
// a network's homepage, are rejected.
func SocialLink(raw string) (link, network string, ok bool) {
	u, err := sanitizeURL(raw)
	if err != nil {
		return "", "", false
	}
	return socialLink(u)
}

func socialLink(u *url.URL) (string, string, bool) {
	network, ok := hostNetwork(u.Hostname())
	if !ok || strings.Trim(u.Path, "/") == "" {
		return "", "", false
	}
	return withoutTracking(u).String(), network, true
}

func hostNetwork(host string) (string, bool) {
	host = strings.ToLower(strings.Trim(strings.TrimSpace(host), "."))
	if host == "" {
		return "", false
	}
	for domain, network := range socialDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return network, true
		}
	}
	return "", false
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.New("invalid url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("unsupported scheme")
	}
	u.Scheme = "https"
	u.Fragment = ""
	return u, nil
}

// withoutTracking returns a copy of u minus its utm_* parameters.
func withoutTracking(u *url.URL) *url.URL {
	clean := *u
	params := u.Query()
	kept := make(url.Values, len(params))
	for key, values := range params {
		if !strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			kept[key] = values
		}
	}
	if len(kept) != len(params) {
		clean.RawQuery = kept.Encode()
	}
	return &clean
}

// selectBestAddress picks the highest scoring candidate after collapsing
// whitespace. Ties keep the earlier candidate.
func selectBestAddress(candidates []string) string {
	best, bestScore := "", 0
	for _, raw := range candidates {
		addr := strings.Join(strings.Fields(raw), " ")
		if score := addressScore(addr); score > bestScore {
			best, bestScore = addr, score
		}
	}
	return best
}

// addressScore ranks by the number of comma or semicolon separated parts,
// then a trailing postal code, then length.
func addressScore(addr string) int {
	if addr == "" {
		return 0
	}
	parts := 0
	for _, part := range strings.FieldsFunc(addr, func(r rune) bool { return r == ',' || r == ';' }) {
		if strings.TrimSpace(part) != "" {
			parts++
		}
	}
	score := parts*1000 + utf8.RuneCountInString(addr)
	if postalSuffix.MatchString(addr) {
		score += 500
	}
	return score
}
