// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantOK        bool
		wantCanonical string
		wantBase      string
		wantVersion   string
	}{
		// Positive: new-style IDs.
		{"new style", "2310.20256", true, "2310.20256", "2310.20256", ""},
		{"new style five digits", "2310.00001", true, "2310.00001", "2310.00001", ""},
		{"new style with version", "2301.07041v2", true, "2301.07041v2", "2301.07041", "v2"},
		{"new style with prefix", "arXiv:2310.20256", true, "2310.20256", "2310.20256", ""},
		{"prefix and version", "arXiv:2301.07041v11", true, "2301.07041v11", "2301.07041", "v11"},

		// Positive: old-style IDs.
		{"old style", "math/0211159", true, "math/0211159", "math/0211159", ""},
		{"old style with class", "math.GT/0309136", true, "math.GT/0309136", "math.GT/0309136", ""},
		{"old style hyphenated", "cond-mat/9901001v3", true, "cond-mat/9901001v3", "cond-mat/9901001", "v3"},
		{"old style with prefix", "arXiv:hep-th/9901001", true, "hep-th/9901001", "hep-th/9901001", ""},

		// Whitespace handling.
		{"surrounding whitespace", "  2310.20256  ", true, "2310.20256", "2310.20256", ""},

		// Negative.
		{"empty string", "", false, "", "", ""},
		{"DOI", "10.1145/1234567.1234568", false, "", "", ""},
		{"URL", "https://arxiv.org/abs/2310.20256", false, "", "", ""},
		{"too few digits", "231.2025", false, "", "", ""},
		{"missing number", "arXiv:", false, "", "", ""},
		{"garbage", "hello-world", false, "", "", ""},
		{"old style short number", "math/02111", false, "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := Parse(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if id.Canonical != tt.wantCanonical {
				t.Errorf("Parse(%q) canonical = %q, want %q", tt.input, id.Canonical, tt.wantCanonical)
			}
			if id.Base != tt.wantBase {
				t.Errorf("Parse(%q) base = %q, want %q", tt.input, id.Base, tt.wantBase)
			}
			if id.Version != tt.wantVersion {
				t.Errorf("Parse(%q) version = %q, want %q", tt.input, id.Version, tt.wantVersion)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"new style", "2310.20256", "2310.20256"},
		{"new style with version", "2301.07041v2", "2301.07041v2"},
		{"old style", "math/0211159", "math-0211159"},
		{"old style with class", "math.GT/0309136", "math.GT-0309136"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := Parse(tt.input)
			if !ok {
				t.Fatalf("Parse(%q) failed", tt.input)
			}
			if got := id.Slug(); got != tt.want {
				t.Errorf("Slug() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestURLs(t *testing.T) {
	id, ok := Parse("2310.20256")
	if !ok {
		t.Fatal("Parse failed")
	}
	if got, want := id.EPrintURL(), "https://arxiv.org/e-print/2310.20256"; got != want {
		t.Errorf("EPrintURL() = %q, want %q", got, want)
	}
	if got, want := id.AbsURL(), "https://arxiv.org/abs/2310.20256"; got != want {
		t.Errorf("AbsURL() = %q, want %q", got, want)
	}
}
