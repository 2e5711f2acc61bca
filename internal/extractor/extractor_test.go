package extractor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/contact-discovery/internal/config"
)

const labelPage = `<!doctype html>
<html>
<head>
  <title>Acme Records | Home</title>
  <meta property="og:site_name" content="Acme Records">
  <meta name="description" content="Independent amapiano label from Cape Town.">
</head>
<body>
  <img src="/static/logo@2x.png" alt="logo">
  <p>Press enquiries: press@acme.co.za or call (415) 555-1234.</p>
  <p>Alt line +1 415 555 1234, fax 12345.</p>
  <p>Template address user@example.com</p>
  <p>Visit us at 12 Long Street, Cape Town, 8001</p>
  <a href="mailto:booking@acme.co.za?subject=Hello">Booking</a>
  <a href="https://www.linkedin.com/company/acme?utm_source=site&amp;ref=footer">LinkedIn</a>
  <a href="https://notlinkedin.com/in/fake">Fake</a>
  <a href="https://x.com/acmerecords">X</a>
  <a href="https://twitter.com/">Twitter home</a>
  <a href="https://facebook.com/acme">Facebook</a>
  <a href="https://facebook.com/acme-second">Facebook 2</a>
  <a href="https://www.instagram.com/acme.records/">Instagram</a>
</body>
</html>`

func TestParseHTMLContactSignals(t *testing.T) {
	data := ParseHTML("https://acme.co.za/contact", labelPage)

	assert.ElementsMatch(t, []string{"booking@acme.co.za", "press@acme.co.za"}, data.Emails)
	assert.Equal(t, []string{"+14155551234"}, data.Phones)

	assert.Equal(t, "https://www.linkedin.com/company/acme?ref=footer", data.SocialLinks.LinkedIn)
	assert.Equal(t, "https://x.com/acmerecords", data.SocialLinks.Twitter)
	assert.Equal(t, "https://facebook.com/acme", data.SocialLinks.Facebook)
	assert.Equal(t, "https://www.instagram.com/acme.records/", data.SocialLinks.Instagram)

	assert.Equal(t, "Acme Records", data.CompanyInfo.Name)
	assert.Equal(t, "Independent amapiano label from Cape Town.", data.CompanyInfo.Description)
	assert.Equal(t, "12 Long Street, Cape Town, 8001", data.CompanyInfo.Address)
}

func TestParseHTMLRejectsImageFilenames(t *testing.T) {
	markup := `<html><body><img src="logo@2x.png"><p>logo@2x.png</p></body></html>`
	data := ParseHTML("https://site.test", markup)
	assert.Empty(t, data.Emails)
}

func TestParseHTMLCompanyNameFromTitle(t *testing.T) {
	markup := `<html><head><title>Groove Blog - Amapiano news</title></head><body></body></html>`
	data := ParseHTML("https://groove.test", markup)
	assert.Equal(t, "Groove Blog", data.CompanyInfo.Name)
	assert.False(t, data.Empty())
}

func TestParseHTMLTeamCards(t *testing.T) {
	markup := `<html><body>
<div class="team">
  <h2>Our Team</h2>
  <div class="team-member">
    <h3>Thandi Mokoena</h3>
    <p class="role">Editor in Chief</p>
    <a href="mailto:thandi@groove.co.za">Email</a>
    <a href="https://za.linkedin.com/in/thandi">LinkedIn</a>
  </div>
  <div class="team-member">
    <h3>Sipho Dlamini</h3>
    <span class="position">Head of A&amp;R</span>
  </div>
</div>
<div class="staff"><h4>Ignored Person</h4></div>
</body></html>`

	data := ParseHTML("https://groove.test/about", markup)
	require.Len(t, data.People, 2)
	assert.Equal(t, "Thandi Mokoena", data.People[0].Name)
	assert.Equal(t, "Editor in Chief", data.People[0].Title)
	assert.Equal(t, "thandi@groove.co.za", data.People[0].Email)
	assert.Equal(t, "https://za.linkedin.com/in/thandi", data.People[0].LinkedInURL)
	assert.Equal(t, "Sipho Dlamini", data.People[1].Name)
	assert.Equal(t, "Head of A&R", data.People[1].Title)
}

func TestParseHTMLFreeTextPeople(t *testing.T) {
	markup := `<html><body>
<p>Jane Smith, Senior Editor at Groove Magazine.</p>
<p>Welcome Home, Friends</p>
<p>Peter Nkosi, Founder</p>
</body></html>`

	data := ParseHTML("https://groove.test", markup)
	require.Len(t, data.People, 2)
	assert.Equal(t, "Jane Smith", data.People[0].Name)
	assert.Equal(t, "Senior Editor at Groove Magazine", data.People[0].Title)
	assert.Equal(t, "Peter Nkosi", data.People[1].Name)
}

func TestFindEmails(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"DM or email Hello@Artist.Com for bookings", []string{"hello@artist.com"}},
		{"a@b.co a@b.co", []string{"a@b.co"}},
		{"icon@3x.webp hero@2x.jpg", nil},
		{"noreply@example.com test@domain.com", nil},
		{"no email here", nil},
	}
	for _, tc := range cases {
		got := FindEmails(tc.text)
		if len(got) != len(tc.want) {
			t.Fatalf("FindEmails(%q)=%v, want %v", tc.text, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("FindEmails(%q)=%v, want %v", tc.text, got, tc.want)
			}
		}
	}
}

func TestHostNetworkUsesSuffixMatch(t *testing.T) {
	cases := []struct {
		host    string
		network string
		ok      bool
	}{
		{"www.linkedin.com", "linkedin", true},
		{"linkedin.com", "linkedin", true},
		{"notlinkedin.com", "", false},
		{"linkedin.com.evil.test", "", false},
		{"mobile.twitter.com", "twitter", true},
		{"x.com", "twitter", true},
		{"box.com", "", false},
	}
	for _, tc := range cases {
		network, ok := hostNetwork(tc.host)
		if network != tc.network || ok != tc.ok {
			t.Fatalf("hostNetwork(%q)=(%q,%v), want (%q,%v)", tc.host, network, ok, tc.network, tc.ok)
		}
	}
}

func TestExtractFetchesPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contact" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, labelPage)
	}))
	defer server.Close()

	e := New(WithTimeout(2 * time.Second))
	data := e.Extract(context.Background(), server.URL+"/contact")
	assert.Contains(t, data.Emails, "press@acme.co.za")
	assert.Equal(t, "Acme Records", data.CompanyInfo.Name)

	missing := e.Extract(context.Background(), server.URL+"/missing")
	assert.True(t, missing.Empty())

	assert.True(t, e.Extract(context.Background(), "ftp://acme.test/file").Empty())
	assert.True(t, e.Extract(context.Background(), "not a url").Empty())
}

func TestExtractBatchCapsAndMapsFailures(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path == "/page-0" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><body><p>reach us at team%s@label.test</p></body></html>`, r.URL.Path[len("/page-"):])
	}))
	defer server.Close()

	urls := []string{"", server.URL + "/page-1"}
	for i := 0; i < 12; i++ {
		urls = append(urls, fmt.Sprintf("%s/page-%d", server.URL, i))
	}

	e := New(WithTimeout(2*time.Second), WithRateLimit(config.RateLimitConfig{Requests: 100, Interval: time.Second}))
	results := e.ExtractBatch(context.Background(), urls)

	require.Len(t, results, MaxBatch)
	assert.LessOrEqual(t, int(atomic.LoadInt32(&hits)), MaxBatch)
	assert.Equal(t, []string{"team1@label.test"}, results[server.URL+"/page-1"].Emails)
	failed, ok := results[server.URL+"/page-0"]
	assert.True(t, ok)
	assert.True(t, failed.Empty())
	_, ok = results[server.URL+"/page-11"]
	assert.False(t, ok)
}

func TestBatchTargets(t *testing.T) {
	got := BatchTargets([]string{" a ", "a", "", "b"})
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestParseHTMLIgnoresDateStamps(t *testing.T) {
	markup := `<html><body>
<p>Posted 2024-01-15 10:30 by the editors.</p>
<p>Updated 2023.11.02 09:15</p>
<p>Bookings: +27 21 555 0142</p>
</body></html>`

	data := ParseHTML("https://groove.test/news", markup)
	require.Len(t, data.Phones, 1)
	assert.Equal(t, "27215550142", digitsOnly(data.Phones[0]))

	for _, raw := range []string{"2024-01-15 10", "1999/12/31 2359", "Posted 2024-01-15 10:30"} {
		if _, _, ok := phoneKey(raw, "US"); ok {
			t.Fatalf("phoneKey(%q) accepted a date", raw)
		}
	}
	if _, _, ok := phoneKey("(415) 555-1234", "US"); !ok {
		t.Fatalf("expected a US number to be accepted")
	}
}

func TestSocialLink(t *testing.T) {
	cases := []struct {
		raw     string
		link    string
		network string
		ok      bool
	}{
		{"https://www.instagram.com/djlindi/?utm_source=ig&hl=en", "https://www.instagram.com/djlindi/?hl=en", "instagram", true},
		{"http://x.com/groovecurator", "https://x.com/groovecurator", "twitter", true},
		{"//www.tiktok.com/@amapiano.daily", "https://www.tiktok.com/@amapiano.daily", "tiktok", true},
		{"https://www.dropbox.com/s/abc", "", "", false},
		{"https://box.com/x.com/fake", "", "", false},
		{"https://twitter.com/", "", "", false},
		{"mailto:press@groove.co.za", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		link, network, ok := SocialLink(tc.raw)
		if link != tc.link || network != tc.network || ok != tc.ok {
			t.Fatalf("SocialLink(%q)=(%q,%q,%v), want (%q,%q,%v)", tc.raw, link, network, ok, tc.link, tc.network, tc.ok)
		}
	}
}

func TestSelectBestAddress(t *testing.T) {
	got := selectBestAddress([]string{
		"",
		"12 Long Street",
		"12 Long   Street, Cape Town",
		"5 Bree Street, Cape Town, 8001",
	})
	if got != "5 Bree Street, Cape Town, 8001" {
		t.Fatalf("expected the most complete address, got %q", got)
	}
	if selectBestAddress(nil) != "" {
		t.Fatalf("expected empty result without candidates")
	}
}
