// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert renders LaTeX source to terminal-displayable text through
// an external converter.
package convert

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/marxiv/pkg/types"
)

// Converter transforms a LaTeX file into rendered text. The production
// backend shells out to pandoc; tests substitute fakes.
type Converter interface {
	// Convert renders the LaTeX file at mainPath to the given pandoc
	// output format. workDir is the source root, so relative \input and
	// \include paths resolve.
	Convert(workDir, mainPath, format string) (string, error)
}

// DefaultFormat is the pandoc output format used when none is requested.
const DefaultFormat = "gfm"

// Extension returns the output filename extension for a pandoc format.
// Markdown flavors map to "md"; everything else gets "txt".
func Extension(format string) string {
	switch format {
	case "markdown", "markdown_mmd", "gfm", "commonmark":
		return "md"
	default:
		return "txt"
	}
}

// Frontmatter prepends YAML frontmatter with paper metadata to the
// rendered body. Used for the cached Markdown copy.
func Frontmatter(paper types.Paper, body string) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "arxiv_id: %q\n", paper.ArxivID)
	if paper.Title != "" {
		fmt.Fprintf(&b, "title: %q\n", paper.Title)
	}
	if len(paper.Authors) > 0 {
		b.WriteString("authors:\n")
		for _, a := range paper.Authors {
			fmt.Fprintf(&b, "  - %q\n", a)
		}
	}
	if !paper.Date.IsZero() {
		fmt.Fprintf(&b, "date: %q\n", paper.Date.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "converted_at: %q\n", time.Now().UTC().Format(time.RFC3339))
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String()
}
