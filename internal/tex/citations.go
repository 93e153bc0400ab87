// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tex

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/marxiv/pkg/types"
)

// Citation command regex patterns.
var (
	// citeRe matches \cite and its natbib/biblatex variants, capturing the
	// brace-delimited key list. Optional arguments like [p. 3] are skipped.
	citeRe = regexp.MustCompile(`\\(?:cite|citet|citep|citealt|citealp|citeauthor|citeyear|textcite|parencite|autocite)\*?(?:\[[^\]]*\])*\{([^}]+)\}`)

	// bibitemRe matches \bibitem entries with an optional bracketed label.
	bibitemRe = regexp.MustCompile(`\\bibitem\s*(?:\[((?:[^\[\]]|\[[^\]]*\])*)\])?\s*\{([^}]+)\}`)

	// texCommandRe matches LaTeX commands for stripping bibliography text.
	texCommandRe = regexp.MustCompile(`\\[a-zA-Z@]+\*?\s*`)

	// yearRe matches a plausible 4-digit publication year.
	yearRe = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
)

// ScanCitations extracts citation references from LaTeX source text.
// Comma-separated keys inside one \cite are counted individually. Each
// returned Citation carries the occurrence count, a context snippet from
// the first occurrence, and BibIndex -1 (unlinked).
func ScanCitations(text string) []types.Citation {
	order := make(map[string]int) // key → index in result
	var citations []types.Citation

	for _, match := range citeRe.FindAllStringSubmatchIndex(text, -1) {
		keyList := text[match[2]:match[3]]
		for _, key := range strings.Split(keyList, ",") {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			if idx, ok := order[key]; ok {
				citations[idx].Count++
				continue
			}
			order[key] = len(citations)
			citations = append(citations, types.Citation{
				Key:      key,
				BibIndex: -1,
				Count:    1,
				Context:  extractContext(text, match[0], match[1]),
			})
		}
	}

	return citations
}

// extractContext returns a snippet of surrounding text around a citation.
// It takes up to 40 characters before and after the match boundaries,
// trimmed to word boundaries.
func extractContext(text string, start, end int) string {
	const window = 40
	ctxStart := start - window
	if ctxStart < 0 {
		ctxStart = 0
	}
	ctxEnd := end + window
	if ctxEnd > len(text) {
		ctxEnd = len(text)
	}
	snippet := text[ctxStart:ctxEnd]
	if ctxStart > 0 {
		if i := strings.IndexByte(snippet, ' '); i >= 0 && i < window {
			snippet = snippet[i+1:]
		}
	}
	if ctxEnd < len(text) {
		if i := strings.LastIndexByte(snippet, ' '); i >= 0 && i > len(snippet)-window {
			snippet = snippet[:i]
		}
	}
	return strings.Join(strings.Fields(snippet), " ")
}

// ScanBibliography extracts \bibitem entries from LaTeX or .bbl text.
// Entry text runs to the next \bibitem or \end{thebibliography}, with
// LaTeX commands stripped.
func ScanBibliography(text string) []types.BibliographyEntry {
	matches := bibitemRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var entries []types.BibliographyEntry
	for i, m := range matches {
		bodyStart := m[1]
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		if end := strings.Index(text[bodyStart:bodyEnd], `\end{thebibliography}`); end >= 0 {
			bodyEnd = bodyStart + end
		}

		entry := types.BibliographyEntry{
			Key:  text[m[4]:m[5]],
			Text: stripTeX(text[bodyStart:bodyEnd]),
		}
		if m[2] >= 0 {
			entry.Label = text[m[2]:m[3]]
		}
		entry.Year = extractYear(entry.Text)
		entries = append(entries, entry)
	}
	return entries
}

// stripTeX removes commands, braces, and comment lines, collapsing the
// remainder to single-spaced text.
func stripTeX(s string) string {
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "%") {
			continue
		}
		kept = append(kept, line)
	}
	s = strings.Join(kept, " ")
	s = texCommandRe.ReplaceAllString(s, "")
	s = strings.NewReplacer("{", "", "}", "", "~", " ", "--", "-").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// extractYear finds the first 4-digit year (19xx or 20xx) in the text.
func extractYear(text string) string {
	m := yearRe.FindStringSubmatch(text)
	if len(m) >= 2 {
		return m[1]
	}
	return ""
}

// Link matches citations to bibliography entries by key, filling in
// BibIndex for every citation whose key has an entry.
func Link(citations []types.Citation, bibliography []types.BibliographyEntry) []types.Citation {
	if len(bibliography) == 0 {
		return citations
	}

	keyIndex := make(map[string]int, len(bibliography))
	for i, entry := range bibliography {
		keyIndex[entry.Key] = i
	}

	linked := make([]types.Citation, len(citations))
	copy(linked, citations)

	for i := range linked {
		if idx, ok := keyIndex[linked[i].Key]; ok {
			linked[i].BibIndex = idx
		}
	}

	return linked
}

// ScanSourceDir scans every .tex and .bbl file under dir and returns the
// aggregated, linked citations and bibliography entries. Citations are
// sorted by descending occurrence count, then key.
func ScanSourceDir(dir string) ([]types.Citation, []types.BibliographyEntry, error) {
	// Bibliographies live in .bbl files or thebibliography environments
	// inside .tex files; one combined scan covers both.
	var source strings.Builder

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(d.Name()) {
		case ".tex", ".bbl":
		default:
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		source.Write(data)
		source.WriteByte('\n')
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	citations := ScanCitations(source.String())
	bibliography := ScanBibliography(source.String())
	citations = Link(citations, bibliography)

	sort.SliceStable(citations, func(i, j int) bool {
		if citations[i].Count != citations[j].Count {
			return citations[i].Count > citations[j].Count
		}
		return citations[i].Key < citations[j].Key
	})

	return citations, bibliography, nil
}
