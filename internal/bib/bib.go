// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bib builds bibliometric reports for fetched papers, combining
// counts derived from the LaTeX source with Semantic Scholar Graph API
// citation data.
package bib

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/marxiv/internal/arxiv"
	"github.com/pdiddy/marxiv/internal/httputil"
	"github.com/pdiddy/marxiv/internal/tex"
	"github.com/pdiddy/marxiv/pkg/types"
)

// GraphAPIBase is the Semantic Scholar Graph API paper endpoint. Declared
// as a var so tests can substitute an httptest server.
var GraphAPIBase = "https://api.semanticscholar.org/graph/v1/paper/"

const (
	statsFields  = "title,citationCount,referenceCount,influentialCitationCount"
	citersFields = "title,year,citationCount,externalIds,isInfluential"
)

// Report builds citation statistics for a fetched paper. Source-derived
// counts always succeed when sourceDir holds LaTeX source; Semantic
// Scholar lookups degrade to warnings on w so the report still comes back
// for papers the API does not know.
func Report(ctx context.Context, client *http.Client, id arxiv.ID, sourceDir string, cfg types.BiblioConfig, w io.Writer) (*types.CitationStats, error) {
	citations, bibliography, err := tex.ScanSourceDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("scanning source in %s: %w", sourceDir, err)
	}

	stats := &types.CitationStats{
		ArxivID:    id.Canonical,
		UniqueKeys: len(citations),
		BibEntries: len(bibliography),
	}
	for _, c := range citations {
		stats.TotalCites += c.Count
		if c.BibIndex >= 0 {
			stats.LinkedKeys++
		}
	}

	if err := fetchGraphStats(ctx, client, id, stats, cfg); err != nil {
		fmt.Fprintf(w, "warning: Semantic Scholar stats unavailable: %v\n", err)
		return stats, nil
	}

	topCiters := cfg.TopCiters
	if topCiters <= 0 {
		topCiters = 10
	}
	citers, err := fetchTopCiters(ctx, client, id, topCiters, cfg)
	if err != nil {
		fmt.Fprintf(w, "warning: citing papers unavailable: %v\n", err)
		return stats, nil
	}
	stats.TopCiters = citers

	return stats, nil
}

// graphPaper is the Graph API paper object.
type graphPaper struct {
	Title                    string `json:"title"`
	Year                     int    `json:"year"`
	CitationCount            int    `json:"citationCount"`
	ReferenceCount           int    `json:"referenceCount"`
	InfluentialCitationCount int    `json:"influentialCitationCount"`
	ExternalIDs              struct {
		ArXiv string `json:"ArXiv"`
	} `json:"externalIds"`
}

type citersResponse struct {
	Data []struct {
		IsInfluential bool       `json:"isInfluential"`
		CitingPaper   graphPaper `json:"citingPaper"`
	} `json:"data"`
}

// fetchGraphStats fills citation, reference, and influence counts from the
// Graph API paper endpoint.
func fetchGraphStats(ctx context.Context, client *http.Client, id arxiv.ID, stats *types.CitationStats, cfg types.BiblioConfig) error {
	reqURL := GraphAPIBase + "arXiv:" + id.Base + "?fields=" + url.QueryEscape(statsFields)

	var paper graphPaper
	if err := getJSON(ctx, client, reqURL, cfg, &paper); err != nil {
		return err
	}

	stats.Title = paper.Title
	stats.CitationCount = paper.CitationCount
	stats.ReferenceCount = paper.ReferenceCount
	stats.InfluentialCitationCount = paper.InfluentialCitationCount
	return nil
}

// fetchTopCiters returns the most cited papers citing id, influential
// citers first.
func fetchTopCiters(ctx context.Context, client *http.Client, id arxiv.ID, limit int, cfg types.BiblioConfig) ([]types.CitingPaper, error) {
	reqURL := fmt.Sprintf("%sarXiv:%s/citations?fields=%s&limit=%d",
		GraphAPIBase, id.Base, url.QueryEscape(citersFields), limit)

	var resp citersResponse
	if err := getJSON(ctx, client, reqURL, cfg, &resp); err != nil {
		return nil, err
	}

	citers := make([]types.CitingPaper, 0, len(resp.Data))
	for _, d := range resp.Data {
		citers = append(citers, types.CitingPaper{
			Title:         d.CitingPaper.Title,
			Year:          d.CitingPaper.Year,
			ArxivID:       d.CitingPaper.ExternalIDs.ArXiv,
			CitationCount: d.CitingPaper.CitationCount,
			IsInfluential: d.IsInfluential,
		})
	}
	return citers, nil
}

// getJSON performs a Graph API GET with retry and decodes the response.
func getJSON(ctx context.Context, client *http.Client, reqURL string, cfg types.BiblioConfig, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if cfg.SemanticScholarAPIKey != "" {
		req.Header.Set("x-api-key", cfg.SemanticScholarAPIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return nil
}

// FormatReport writes the report as human-readable text to w.
func FormatReport(stats *types.CitationStats, w io.Writer) {
	if stats.Title != "" {
		fmt.Fprintf(w, "%s (arXiv:%s)\n", stats.Title, stats.ArxivID)
	} else {
		fmt.Fprintf(w, "arXiv:%s\n", stats.ArxivID)
	}
	fmt.Fprintln(w, strings.Repeat("-", 60))

	fmt.Fprintf(w, "Source:    %d unique citation keys, %d total \\cite occurrences\n",
		stats.UniqueKeys, stats.TotalCites)
	fmt.Fprintf(w, "           %d bibliography entries, %d keys linked\n",
		stats.BibEntries, stats.LinkedKeys)
	fmt.Fprintf(w, "Scholar:   cited by %d (%d influential), cites %d\n",
		stats.CitationCount, stats.InfluentialCitationCount, stats.ReferenceCount)

	if len(stats.TopCiters) > 0 {
		fmt.Fprintf(w, "\nTop citing papers:\n")
		for i, c := range stats.TopCiters {
			marker := " "
			if c.IsInfluential {
				marker = "*"
			}
			year := ""
			if c.Year > 0 {
				year = fmt.Sprintf(" (%d)", c.Year)
			}
			fmt.Fprintf(w, "%3d.%s %s%s, %d citations", i+1, marker, c.Title, year, c.CitationCount)
			if c.ArxivID != "" {
				fmt.Fprintf(w, " [arXiv:%s]", c.ArxivID)
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, "\n* influential citation")
	}
}

// FormatJSON writes the report as indented JSON to w.
func FormatJSON(stats *types.CitationStats, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
