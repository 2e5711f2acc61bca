package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/octobees/contact-discovery/internal/entity"
)

var (
	addressFinder = regexp.MustCompile(`(?i)\b\d{1,5}\s+(?:[A-Za-z0-9.'\-]+\s){1,5}?(?:street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr|way|court|ct|place|pl|square|sq|highway|hwy)\b\.?(?:,\s*[A-Za-z0-9 .'\-]{2,40}){0,3}`)
	titleSplitter = regexp.MustCompile(`\s*(?:\||\s-\s|\s–\s|\s—\s|·)\s*`)
)

const maxPhones = 10

// ParseHTML mines markup fetched from pageURL. It never fails; unparseable
// markup yields an empty result.
func ParseHTML(pageURL, markup string) entity.ExtractedPageData {
	return parser{region: defaultPhoneRegion}.parseMarkup(pageURL, markup)
}

type parser struct {
	region string
}

func (p parser) parseMarkup(pageURL, markup string) entity.ExtractedPageData {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return entity.ExtractedPageData{}
	}
	return p.parseSelection(pageURL, doc.Selection, markup)
}

func (p parser) parseSelection(pageURL string, root *goquery.Selection, markup string) entity.ExtractedPageData {
	base, _ := url.Parse(pageURL)

	// links and metadata are read before scripts are stripped for text scans
	emails := collectEmails(root, markup)
	socials := collectSocialLinks(root, base)
	company := collectCompanyInfo(root)

	root.Find("script, style, noscript, template").Remove()
	text := renderedText(root)

	company.Address = selectBestAddress(addressCandidates(root, text))

	return entity.ExtractedPageData{
		Emails:      emails,
		Phones:      p.collectPhones(root, text),
		SocialLinks: socials,
		CompanyInfo: company,
		People:      collectPeople(root, text),
	}
}

func renderedText(root *goquery.Selection) string {
	var b strings.Builder
	root.Find("body").Each(func(_ int, s *goquery.Selection) {
		b.WriteString(blockText(s))
	})
	if b.Len() == 0 {
		b.WriteString(blockText(root))
	}
	return b.String()
}

// blockText renders text with a newline after every element so that adjacent
// blocks do not run together.
func blockText(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		var walk func(*html.Node)
		walk = func(node *html.Node) {
			if node.Type == html.TextNode {
				b.WriteString(node.Data)
				return
			}
			for c := node.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			if node.Type == html.ElementNode {
				b.WriteByte('\n')
			}
		}
		walk(n)
	}
	return b.String()
}

func collectEmails(root *goquery.Selection, markup string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(candidates []string) {
		for _, email := range candidates {
			if _, dup := seen[email]; dup {
				continue
			}
			seen[email] = struct{}{}
			out = append(out, email)
		}
	}

	root.Find(`a[href^="mailto:"], a[href^="MAILTO:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if email := mailtoAddress(href); email != "" {
			add([]string{email})
		}
	})
	add(FindEmails(root.Text()))
	add(FindEmails(html.UnescapeString(markup)))
	return out
}

func mailtoAddress(href string) string {
	addr := strings.TrimSpace(href)
	if len(addr) < len("mailto:") {
		return ""
	}
	addr = addr[len("mailto:"):]
	if i := strings.IndexByte(addr, '?'); i >= 0 {
		addr = addr[:i]
	}
	if decoded, err := url.PathUnescape(addr); err == nil {
		addr = decoded
	}
	if i := strings.IndexByte(addr, ','); i >= 0 {
		addr = addr[:i]
	}
	email, ok := normalizeEmail(addr)
	if !ok {
		return ""
	}
	return email
}

func (p parser) collectPhones(root *goquery.Selection, text string) []string {
	candidates := make([]string, 0)
	root.Find(`a[href^="tel:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		candidates = append(candidates, strings.TrimPrefix(href, "tel:"))
	})
	candidates = append(candidates, phoneFinder.FindAllString(text, -1)...)

	seen := make(map[string]struct{})
	var out []string
	for _, raw := range candidates {
		key, display, ok := phoneKey(raw, p.region)
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, display)
		if len(out) >= maxPhones {
			break
		}
	}
	return out
}

func collectSocialLinks(root *goquery.Selection, base *url.URL) entity.PageSocialLinks {
	links := entity.PageSocialLinks{}
	root.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u := resolveLink(base, href)
		if u == nil {
			return
		}
		if link, network, ok := socialLink(u); ok {
			setSocial(&links, network, link)
		}
	})
	return links
}

func resolveLink(base *url.URL, href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return nil
	}
	if base != nil && !strings.Contains(href, "://") && !strings.HasPrefix(href, "//") {
		ref, err := url.Parse(href)
		if err != nil {
			return nil
		}
		href = base.ResolveReference(ref).String()
	}
	u, err := sanitizeURL(href)
	if err != nil {
		return nil
	}
	return u
}

// setSocial keeps the first link seen per network.
func setSocial(links *entity.PageSocialLinks, network, value string) {
	switch network {
	case "linkedin":
		if links.LinkedIn == "" {
			links.LinkedIn = value
		}
	case "twitter":
		if links.Twitter == "" {
			links.Twitter = value
		}
	case "facebook":
		if links.Facebook == "" {
			links.Facebook = value
		}
	case "instagram":
		if links.Instagram == "" {
			links.Instagram = value
		}
	case "tiktok":
		if links.TikTok == "" {
			links.TikTok = value
		}
	case "youtube":
		if links.YouTube == "" {
			links.YouTube = value
		}
	}
}

func collectCompanyInfo(root *goquery.Selection) entity.CompanyInfo {
	info := entity.CompanyInfo{
		Name: firstMeta(root,
			`meta[property="og:site_name"]`,
			`meta[name="application-name"]`,
			`meta[name="apple-mobile-web-app-title"]`,
		),
		Description: firstMeta(root,
			`meta[name="description"]`,
			`meta[property="og:description"]`,
			`meta[name="twitter:description"]`,
		),
	}
	if info.Name == "" {
		title := strings.TrimSpace(root.Find("title").First().Text())
		if title != "" {
			info.Name = strings.TrimSpace(titleSplitter.Split(title, 2)[0])
		}
	}
	return info
}

func firstMeta(root *goquery.Selection, selectors ...string) string {
	for _, selector := range selectors {
		if content, ok := root.Find(selector).First().Attr("content"); ok {
			if content = strings.TrimSpace(content); content != "" {
				return content
			}
		}
	}
	return ""
}

func addressCandidates(root *goquery.Selection, text string) []string {
	var candidates []string
	root.Find(`address, [itemprop="address"]`).Each(func(_ int, s *goquery.Selection) {
		candidates = append(candidates, strings.Join(strings.Fields(s.Text()), " "))
	})
	for _, line := range strings.Split(text, "\n") {
		candidates = append(candidates, addressFinder.FindAllString(line, -1)...)
	}
	return candidates
}
