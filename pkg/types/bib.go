// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Citation is an inline citation reference found in LaTeX source.
type Citation struct {
	// Key is the citation key as written in the \cite command
	// (e.g. "vaswani2017attention").
	Key string `json:"key" yaml:"key"`

	// BibIndex is the index of the matching BibliographyEntry, or -1 when
	// the citation could not be linked.
	BibIndex int `json:"bib_index" yaml:"bib_index"`

	// Count is the number of times the key is cited in the source.
	Count int `json:"count" yaml:"count"`

	// Context is a snippet of source text surrounding the first occurrence.
	Context string `json:"context,omitempty" yaml:"context,omitempty"`
}

// BibliographyEntry is one entry from a thebibliography environment or
// .bbl file in the paper source.
type BibliographyEntry struct {
	// Key is the \bibitem key.
	Key string `json:"key" yaml:"key"`

	// Label is the optional bracketed label (e.g. "Vas17").
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// Text is the entry body with LaTeX commands stripped.
	Text string `json:"text" yaml:"text"`

	// Year is the first plausible publication year found in the text.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`
}

// CitationStats holds bibliometric counts for a paper, combining numbers
// derived from the fetched source with Semantic Scholar Graph API data.
type CitationStats struct {
	// ArxivID is the normalized arXiv identifier.
	ArxivID string `json:"arxiv_id" yaml:"arxiv_id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// UniqueKeys is the number of distinct citation keys in the source.
	UniqueKeys int `json:"unique_keys" yaml:"unique_keys"`

	// TotalCites is the total number of \cite occurrences in the source.
	TotalCites int `json:"total_cites" yaml:"total_cites"`

	// BibEntries is the number of bibliography entries in the source.
	BibEntries int `json:"bib_entries" yaml:"bib_entries"`

	// LinkedKeys is the number of citation keys matched to a bibliography entry.
	LinkedKeys int `json:"linked_keys" yaml:"linked_keys"`

	// CitationCount is how many papers cite this one (Semantic Scholar).
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// ReferenceCount is how many papers this one cites (Semantic Scholar).
	ReferenceCount int `json:"reference_count" yaml:"reference_count"`

	// InfluentialCitationCount is the Semantic Scholar influential citation count.
	InfluentialCitationCount int `json:"influential_citation_count" yaml:"influential_citation_count"`

	// TopCiters lists the most influential citing papers.
	TopCiters []CitingPaper `json:"top_citers,omitempty" yaml:"top_citers,omitempty"`
}

// CitingPaper is a paper that cites the subject paper.
type CitingPaper struct {
	Title         string `json:"title" yaml:"title"`
	Year          int    `json:"year,omitempty" yaml:"year,omitempty"`
	ArxivID       string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`
	CitationCount int    `json:"citation_count" yaml:"citation_count"`
	IsInfluential bool   `json:"is_influential" yaml:"is_influential"`
}
