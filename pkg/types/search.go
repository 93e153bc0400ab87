// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SearchResult represents a candidate paper returned by an academic API query.
// Each result carries an identifier, metadata, source, relevance score, and
// the identifier the fetch stage should use to download it.
type SearchResult struct {
	// Identifier is the canonical ID from the source (arXiv ID, DOI, or
	// backend-native ID).
	Identifier string `json:"identifier" yaml:"identifier"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract or summary.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Date is the publication or preprint date.
	Date time.Time `json:"date" yaml:"date"`

	// Source identifies which backend found this result
	// (e.g. "arxiv", "semantic_scholar").
	Source string `json:"source" yaml:"source"`

	// RelevanceScore is a value between 0.0 and 1.0 indicating relevance to the query.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`

	// FetchID is the arXiv ID to pass to the fetch stage, when the paper
	// is available on arXiv; empty otherwise.
	FetchID string `json:"fetch_id,omitempty" yaml:"fetch_id,omitempty"`
}
