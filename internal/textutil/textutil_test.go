package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"  plain  ":        "plain",
		"a/b: c?":          "a-b- c",
		`x\y*z"<>|`:        "x-y-z",
		"":                 "",
		"Match Day (Live)": "Match Day (Live)",
		"tab\there":        "tabhere",
	}
	for in, want := range cases {
		if got := SanitizeFileName(in); got != want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplayTitle(t *testing.T) {
	cases := map[string]string{
		"match_day-final": "Match Day Final",
		"stream.2024":     "Stream 2024",
		"  ":              "",
		"already Fine":    "Already Fine",
	}
	for in, want := range cases {
		if got := DisplayTitle(in); got != want {
			t.Fatalf("DisplayTitle(%q) = %q, want %q", in, got, want)
		}
	}
}
