package extractor

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/octobees/contact-discovery/internal/entity"
)

const maxFreeTextPeople = 10

// personFamilies are tried in order; the first family with at least one named
// match wins.
var personFamilies = []string{
	`[class*="team-member"], [class*="team_member"], [class*="teamMember"]`,
	`[class*="member"]`,
	`[class*="staff"], [class*="person"], [class*="profile-card"]`,
	`[itemtype*="schema.org/Person"]`,
}

const (
	personNameSelector  = `[itemprop="name"], h1, h2, h3, h4, h5, h6, [class*="name"]`
	personTitleSelector = `[itemprop="jobTitle"], [class*="title"], [class*="role"], [class*="position"], [class*="job"]`
)

var (
	nameRolePattern = regexp.MustCompile(`\b([A-Z][a-z'\-]+(?: [A-Z][a-z'\-]+){1,2}),\s+([A-Za-z&/ \-]{2,60})`)
	roleKeywords    = []string{
		"editor", "manager", "founder", "director", "ceo", "cto", "coo", "curator",
		"journalist", "publicist", "producer", "writer", "head", "lead", "officer",
		"dj", "a&r", "coordinator", "agent", "host", "presenter", "marketing",
		"publisher", "blogger", "reporter", "owner", "partner", "president",
	}
)

func collectPeople(root *goquery.Selection, text string) []entity.PagePerson {
	for _, family := range personFamilies {
		if people := matchFamily(root, family); len(people) > 0 {
			return people
		}
	}
	return freeTextPeople(text)
}

func matchFamily(root *goquery.Selection, selector string) []entity.PagePerson {
	seen := make(map[string]struct{})
	var people []entity.PagePerson
	root.Find(selector).Each(func(_ int, card *goquery.Selection) {
		// containers of other matches are skipped in favour of the innermost card
		if card.Find(selector).Length() > 0 {
			return
		}
		person, ok := personFromCard(card)
		if !ok {
			return
		}
		key := strings.ToLower(person.Name)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		people = append(people, person)
	})
	return people
}

func personFromCard(card *goquery.Selection) (entity.PagePerson, bool) {
	var person entity.PagePerson
	card.Find(personNameSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		candidate := cleanText(s.Text())
		if looksLikeName(candidate) {
			person.Name = candidate
			return false
		}
		return true
	})
	if person.Name == "" {
		return person, false
	}

	card.Find(personTitleSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		candidate := cleanText(s.Text())
		if candidate != "" && candidate != person.Name && len([]rune(candidate)) <= 80 {
			person.Title = candidate
			return false
		}
		return true
	})

	card.Find(`a[href^="mailto:"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		person.Email = mailtoAddress(href)
		return person.Email == ""
	})
	if person.Email == "" {
		if emails := FindEmails(card.Text()); len(emails) > 0 {
			person.Email = emails[0]
		}
	}

	card.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		u, err := sanitizeURL(href)
		if err != nil {
			return true
		}
		if link, network, ok := socialLink(u); ok && network == "linkedin" {
			person.LinkedInURL = link
			return false
		}
		return true
	})
	return person, true
}

func freeTextPeople(text string) []entity.PagePerson {
	seen := make(map[string]struct{})
	var people []entity.PagePerson
	for _, line := range strings.Split(text, "\n") {
		for _, m := range nameRolePattern.FindAllStringSubmatch(line, -1) {
			name := cleanText(m[1])
			role := cleanText(m[2])
			if !looksLikeName(name) || !hasRoleKeyword(role) {
				continue
			}
			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			people = append(people, entity.PagePerson{Name: name, Title: role})
			if len(people) >= maxFreeTextPeople {
				return people
			}
		}
	}
	return people
}

func hasRoleKeyword(role string) bool {
	words := strings.FieldsFunc(strings.ToLower(role), func(r rune) bool {
		return unicode.IsSpace(r) || r == '/' || r == '-'
	})
	for _, w := range words {
		for _, keyword := range roleKeywords {
			if w == keyword {
				return true
			}
		}
	}
	return false
}

// looksLikeName accepts two to four capitalised words made of letters.
func looksLikeName(s string) bool {
	if len([]rune(s)) < entity.MinNameLength || len([]rune(s)) > 60 {
		return false
	}
	words := strings.Fields(s)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		runes := []rune(w)
		if !unicode.IsUpper(runes[0]) {
			return false
		}
		for _, r := range runes {
			if !unicode.IsLetter(r) && r != '\'' && r != '-' && r != '.' {
				return false
			}
		}
	}
	return true
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
