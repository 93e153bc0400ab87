// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries academic APIs and returns unified, deduplicated
// results for papers that can then be fetched by arXiv ID.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/pdiddy/marxiv/internal/arxiv"
	"github.com/pdiddy/marxiv/pkg/types"
)

// Backend searches a single academic API. Each backend (arXiv, Semantic
// Scholar) implements this interface.
type Backend interface {
	Name() string
	Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.SearchResult, error)
}

// Query holds the search parameters.
type Query struct {
	FreeText string
	Author   string
	Keywords []string
	DateFrom time.Time
	DateTo   time.Time
}

// IsEmpty reports whether the query contains no searchable terms.
func (q Query) IsEmpty() bool {
	return q.FreeText == "" && q.Author == "" && len(q.Keywords) == 0
}

// Output holds the merged results and dedup statistics.
type Output struct {
	Results       []types.SearchResult
	DupsRemoved   int
	BackendErrors []string
}

// Backends builds the backend list the config enables.
func Backends(client *http.Client, cfg types.SearchConfig) []Backend {
	var backends []Backend
	if cfg.EnableArxiv {
		backends = append(backends, &ArxivBackend{Client: client})
	}
	if cfg.EnableSemanticScholar {
		backends = append(backends, &SemanticScholarBackend{Client: client, APIKey: cfg.SemanticScholarAPIKey})
	}
	return backends
}

// Run queries all backends concurrently, merges and deduplicates their
// results, optionally boosts recent papers, and returns them ranked by
// relevance. Individual backend failures are reported as warnings, not
// errors; Run fails only when the query is empty.
func Run(ctx context.Context, backends []Backend, query Query, cfg types.SearchConfig, recencyBias bool, w io.Writer) (Output, error) {
	if query.IsEmpty() {
		return Output{}, fmt.Errorf("empty query: provide free text, an author, or keywords")
	}
	if len(backends) == 0 {
		return Output{}, fmt.Errorf("no search backends enabled")
	}

	type backendResult struct {
		results []types.SearchResult
		err     error
		name    string
	}

	ch := make(chan backendResult, len(backends))
	var wg sync.WaitGroup

	for _, b := range backends {
		wg.Add(1)
		go func(b Backend) {
			defer wg.Done()
			results, err := b.Search(ctx, query, cfg)
			ch <- backendResult{results: results, err: err, name: b.Name()}
		}(b)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.SearchResult
	var backendErrors []string
	for br := range ch {
		if br.err != nil {
			msg := fmt.Sprintf("%s: %v", br.name, br.err)
			backendErrors = append(backendErrors, msg)
			fmt.Fprintf(w, "warning: backend %s failed: %v\n", br.name, br.err)
			continue
		}
		all = append(all, br.results...)
	}

	deduped, removed := deduplicate(all)

	if recencyBias && cfg.RecencyBiasWindow > 0 {
		applyRecencyBias(deduped, cfg.RecencyBiasWindow)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].RelevanceScore > deduped[j].RelevanceScore
	})

	if cfg.MaxResults > 0 && len(deduped) > cfg.MaxResults {
		deduped = deduped[:cfg.MaxResults]
	}

	return Output{
		Results:       deduped,
		DupsRemoved:   removed,
		BackendErrors: backendErrors,
	}, nil
}

// deduplicate merges results that share an identifier or normalized title.
func deduplicate(results []types.SearchResult) ([]types.SearchResult, int) {
	seen := make(map[string]int) // dedup key → index in deduped
	var deduped []types.SearchResult
	removed := 0

	for _, r := range results {
		key := ""
		if r.Identifier != "" {
			key = "id:" + r.Identifier
		}
		if idx, ok := seen[key]; ok && key != "" {
			mergeInto(&deduped[idx], r)
			removed++
			continue
		}

		titleKey := "title:" + normalizeTitle(r.Title)
		if titleKey != "title:" {
			if idx, ok := seen[titleKey]; ok {
				mergeInto(&deduped[idx], r)
				removed++
				continue
			}
		}

		idx := len(deduped)
		deduped = append(deduped, r)
		if key != "" {
			seen[key] = idx
		}
		if titleKey != "title:" {
			seen[titleKey] = idx
		}
	}
	return deduped, removed
}

// mergeInto fills empty fields of dst from src and keeps the higher score.
// An arXiv ID wins the FetchID slot, since that is what the fetch stage
// can download.
func mergeInto(dst *types.SearchResult, src types.SearchResult) {
	if dst.Title == "" && src.Title != "" {
		dst.Title = src.Title
	}
	if len(dst.Authors) == 0 && len(src.Authors) > 0 {
		dst.Authors = src.Authors
	}
	if dst.Abstract == "" && src.Abstract != "" {
		dst.Abstract = src.Abstract
	}
	if dst.Date.IsZero() && !src.Date.IsZero() {
		dst.Date = src.Date
	}
	if src.RelevanceScore > dst.RelevanceScore {
		dst.RelevanceScore = src.RelevanceScore
	}
	if dst.FetchID == "" && src.FetchID != "" {
		dst.FetchID = src.FetchID
	}
	if dst.Source != src.Source && !strings.Contains(dst.Source, src.Source) {
		dst.Source = dst.Source + "," + src.Source
	}
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// applyRecencyBias boosts scores for papers published within the window.
func applyRecencyBias(results []types.SearchResult, window time.Duration) {
	now := time.Now()
	for i := range results {
		if results[i].Date.IsZero() {
			continue
		}
		age := now.Sub(results[i].Date)
		if age <= window {
			boost := 0.2 * (1.0 - float64(age)/float64(window))
			results[i].RelevanceScore = math.Min(1.0, results[i].RelevanceScore+boost)
		}
	}
}

// positionScore assigns a relevance score from a result's rank in a
// backend's ordering: 1.0 for the first, tapering to 0.1 for the last.
func positionScore(i, total int) float64 {
	if total <= 1 {
		return 1.0
	}
	return 1.0 - float64(i)/float64(total-1)*0.9
}

// FormatTable writes results as a human-readable table to w. Rows with a
// FetchID can be passed straight to the fetch command.
func FormatTable(out Output, w io.Writer) {
	if len(out.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-6s  %-14s  %s\n",
		"Rank", "Title", "Authors", "Year", "Score", "Fetch ID", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 125))

	for i, r := range out.Results {
		title := truncate(r.Title, 60)
		authors := formatAuthors(r.Authors)
		year := ""
		if !r.Date.IsZero() {
			year = fmt.Sprintf("%d", r.Date.Year())
		}
		fetchID := r.FetchID
		if _, ok := arxiv.Parse(fetchID); !ok {
			fetchID = "-"
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-6.2f  %-14s  %s\n",
			i+1, title, authors, year, r.RelevanceScore, fetchID, r.Source)
	}

	fmt.Fprintf(w, "\n%d results", len(out.Results))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Results)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

// truncate shortens s to max runes, never splitting a multibyte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
