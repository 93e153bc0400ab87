// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the fetch-and-render sequence: resolve an arXiv
// identifier, download and extract its source, choose the main LaTeX
// file, convert it, and emit the result.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pdiddy/marxiv/internal/arxiv"
	"github.com/pdiddy/marxiv/internal/cache"
	"github.com/pdiddy/marxiv/internal/convert"
	"github.com/pdiddy/marxiv/internal/fetch"
	"github.com/pdiddy/marxiv/internal/tex"
	"github.com/pdiddy/marxiv/pkg/types"
)

// Options bundles the stage configurations the pipeline needs.
type Options struct {
	Fetch   types.FetchConfig
	Convert types.ConvertConfig
}

// Result holds the outcome of a pipeline run.
type Result struct {
	Rendered int
	Failed   int
	Papers   []*types.Paper
}

// HasFailures reports whether any identifiers failed.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Run processes identifiers in order, writing rendered documents to out
// and per-item status to status. It continues after individual failures.
// store may be nil to skip cache indexing.
func Run(ctx context.Context, client *http.Client, conv convert.Converter, store *cache.Store, identifiers []string, opts Options, out, status io.Writer) Result {
	var result Result
	for _, raw := range identifiers {
		paper, err := runOne(ctx, client, conv, store, raw, opts, out, status)
		if err != nil {
			fmt.Fprintf(status, "failed:   %s (%v)\n", raw, err)
			result.Failed++
			continue
		}
		result.Rendered++
		result.Papers = append(result.Papers, paper)
	}

	if len(identifiers) > 1 {
		fmt.Fprintf(status, "\nBatch summary: %d rendered, %d failed\n",
			result.Rendered, result.Failed)
	}
	return result
}

func runOne(ctx context.Context, client *http.Client, conv convert.Converter, store *cache.Store, raw string, opts Options, out, status io.Writer) (*types.Paper, error) {
	id, ok := arxiv.Parse(raw)
	if !ok {
		return nil, fmt.Errorf("unrecognized arXiv identifier: %q", raw)
	}

	srcDir := fetch.SourceDir(opts.Fetch.CacheDir, id)
	if _, err := os.Stat(srcDir); err == nil && !opts.Fetch.Force {
		fmt.Fprintf(status, "cached:   %s\n", id)
	} else {
		fmt.Fprintf(status, "fetching: %s\n", id)
		if srcDir, err = fetch.Source(ctx, client, id, opts.Fetch); err != nil {
			return nil, err
		}
	}

	mainPath, err := tex.FindMain(srcDir)
	if err != nil {
		return nil, err
	}

	format := opts.Convert.Format
	if format == "" {
		format = convert.DefaultFormat
	}
	doc, err := conv.Convert(srcDir, mainPath, format)
	if err != nil {
		return nil, err
	}

	if opts.Convert.OutputFile != "" {
		if err := os.WriteFile(opts.Convert.OutputFile, []byte(doc), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", opts.Convert.OutputFile, err)
		}
		fmt.Fprintf(status, "wrote:    %s\n", opts.Convert.OutputFile)
	} else {
		if _, err := io.WriteString(out, doc); err != nil {
			return nil, fmt.Errorf("writing output: %w", err)
		}
	}

	paper := &types.Paper{
		ID:          id.Slug(),
		ArxivID:     id.Canonical,
		SourceURL:   id.EPrintURL(),
		SourceDir:   srcDir,
		MainTexPath: mainPath,
		FetchedAt:   time.Now().UTC(),
	}

	// Metadata and indexing are best-effort: the document has already
	// been delivered.
	if err := arxiv.FetchMetadata(ctx, client, id, paper, opts.Fetch.HTTPConfig); err != nil {
		fmt.Fprintf(status, "  warning: arXiv metadata fetch failed: %v\n", err)
	}

	if store != nil {
		if convert.Extension(format) == "md" {
			mdPath, err := store.WriteMarkdown(paper.ID, convert.Frontmatter(*paper, doc))
			if err != nil {
				fmt.Fprintf(status, "  warning: caching markdown failed: %v\n", err)
			} else {
				paper.MarkdownPath = mdPath
			}
		}
		if err := store.Record(ctx, paper); err != nil {
			fmt.Fprintf(status, "  warning: cache index update failed: %v\n", err)
		}
	}

	return paper, nil
}
