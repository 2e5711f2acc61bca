package country

import "testing"

func TestName(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"ZA", "South Africa"},
		{"ng", "Nigeria"},
		{" gb ", "United Kingdom"},
		{"", ""},
		{"12", "12"},
	}

	for _, tc := range cases {
		if got := Name(tc.input); got != tc.want {
			t.Fatalf("Name(%q)=%q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid("ZA") || !Valid("us") {
		t.Fatalf("expected ZA and us to be valid")
	}
	if Valid("ZAF") || Valid("") || Valid("1") {
		t.Fatalf("expected malformed codes to be rejected")
	}
}
