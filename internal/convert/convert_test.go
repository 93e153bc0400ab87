// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/marxiv/pkg/types"
)

func TestFrontmatter(t *testing.T) {
	paper := types.Paper{
		ArxivID: "2310.20256",
		Title:   "A Paper",
		Authors: []string{"Ada Lovelace", "Alan Turing"},
		Date:    time.Date(2023, 10, 31, 0, 0, 0, 0, time.UTC),
	}

	got := Frontmatter(paper, "# Body\n")

	if !strings.HasPrefix(got, "---\n") {
		t.Fatalf("missing frontmatter fence: %q", got)
	}
	for _, want := range []string{
		`arxiv_id: "2310.20256"`,
		`title: "A Paper"`,
		`- "Ada Lovelace"`,
		`date: "2023-10-31"`,
		"converted_at:",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("frontmatter missing %q:\n%s", want, got)
		}
	}
	if !strings.HasSuffix(got, "# Body\n") {
		t.Errorf("body not preserved: %q", got)
	}
}

func TestFrontmatter_SparseMetadata(t *testing.T) {
	got := Frontmatter(types.Paper{ArxivID: "2310.20256"}, "body")

	for _, absent := range []string{"title:", "authors:", "date:"} {
		if strings.Contains(got, absent) {
			t.Errorf("frontmatter should omit %q when unset:\n%s", absent, got)
		}
	}
}
