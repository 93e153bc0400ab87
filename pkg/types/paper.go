// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the marxiv pipeline:
// fetched papers, search results, citation records, and per-stage
// configuration.
package types

import "time"

// Paper holds metadata and file paths for a fetched arXiv paper.
type Paper struct {
	// ID is a filesystem-safe slug derived from the arXiv ID
	// (e.g. "2310.20256", "math-0211159").
	ID string `json:"id" yaml:"id"`

	// ArxivID is the normalized arXiv identifier (e.g. "math/0211159").
	ArxivID string `json:"arxiv_id" yaml:"arxiv_id"`

	// SourceURL is the e-print URL the source archive was downloaded from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// SourceDir is the local directory holding the extracted LaTeX source.
	SourceDir string `json:"source_dir" yaml:"source_dir"`

	// MainTexPath is the main LaTeX file chosen by the selection heuristics.
	MainTexPath string `json:"main_tex_path" yaml:"main_tex_path"`

	// MarkdownPath is the cached converted Markdown copy, if any.
	MarkdownPath string `json:"markdown_path,omitempty" yaml:"markdown_path,omitempty"`

	// Title is the paper title from the arXiv API.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Date is the publication or preprint date.
	Date time.Time `json:"date" yaml:"date"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// FetchedAt records when the source was downloaded.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}
