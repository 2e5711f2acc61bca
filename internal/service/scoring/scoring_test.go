package scoring

import (
	"testing"

	"github.com/octobees/contact-discovery/internal/entity"
)

func TestComputeScore_FullCoverage(t *testing.T) {
	input := ContactFeatures{
		Emails: []string{"lerato@groove.co.za"},
		Phones: []string{"+27215551234"},
		Socials: map[string]string{
			"LinkedIn":  "https://linkedin.com/in/lerato",
			"instagram": "https://instagram.com/lerato",
			"twitter":   "https://twitter.com/lerato",
			"tiktok":    "https://tiktok.com/@lerato",
		},
		Title:      "A&R Manager",
		Company:    "Groove Records",
		Website:    "https://groove.co.za",
		Followers:  25000,
		Confidence: entity.ConfidenceHigh,
	}

	score := ComputeScore(input)

	if score.Total != 100 {
		t.Fatalf("expected full score 100, got %d", score.Total)
	}
	if score.Breakdown[categoryReach] != 25 {
		t.Fatalf("expected reachability 25, got %d", score.Breakdown[categoryReach])
	}
	if score.Breakdown[categorySocial] != 20 {
		t.Fatalf("expected social presence 20, got %d", score.Breakdown[categorySocial])
	}
	if score.Breakdown[categoryProfile] != 30 {
		t.Fatalf("expected profile completeness 30, got %d", score.Breakdown[categoryProfile])
	}
	if score.Breakdown[categoryConfidence] != 25 {
		t.Fatalf("expected source confidence 25, got %d", score.Breakdown[categoryConfidence])
	}
}

func TestComputeScore_MinimalSignals(t *testing.T) {
	input := ContactFeatures{
		Emails: []string{"   "},
		Phones: []string{},
		Socials: map[string]string{
			"linkedin": "",
		},
		Website: "http://mybeats.wordpress.com",
	}

	score := ComputeScore(input)

	if score.Total != 0 {
		t.Fatalf("expected zero score for insufficient signals, got %d", score.Total)
	}
	if score.Breakdown[categoryProfile] != 0 {
		t.Fatalf("expected profile completeness 0, got %d", score.Breakdown[categoryProfile])
	}
}

func TestScoreContact(t *testing.T) {
	low := ScoreContact(entity.Contact{Name: "Groove Blog", URL: "https://groove.co.za", Confidence: entity.ConfidenceLow})
	medium := ScoreContact(entity.Contact{
		Name:       "Groove Blog",
		URL:        "https://groove.co.za",
		Email:      "press@groove.co.za",
		Confidence: entity.ConfidenceMedium,
	})

	if low.Total != 15 {
		t.Fatalf("expected 15 for a bare low contact, got %d", low.Total)
	}
	if medium.Total <= low.Total {
		t.Fatalf("expected an email and higher confidence to score more: %d vs %d", medium.Total, low.Total)
	}
}

func TestHighQualityDomain(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"https://example.com", true},
		{"http://www.example.co.za:8080/team", true},
		{"mybrand.wordpress.com", false},
		{"https://linktr.ee/djlindi", false},
		{"", false},
		{"ftp://subdomain.googlepages.com", false},
	}

	for _, tc := range cases {
		if got := highQualityDomain(tc.input); got != tc.want {
			t.Fatalf("highQualityDomain(%q)=%v, want %v", tc.input, got, tc.want)
		}
	}
}
