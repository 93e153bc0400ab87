// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/marxiv/internal/arxiv"
	"github.com/pdiddy/marxiv/internal/bib"
	"github.com/pdiddy/marxiv/internal/fetch"
	"github.com/pdiddy/marxiv/internal/secrets"
	"github.com/pdiddy/marxiv/pkg/types"
)

var refsCmd = &cobra.Command{
	Use:   "refs [arxiv-id]",
	Short: "Bibliometric report for a fetched paper",
	Long: `Refs scans the cached LaTeX source of a paper for \cite and \bibitem
commands, links citations to bibliography entries, and augments the counts
with citation statistics and top citing papers from the Semantic Scholar
Graph API. The paper must have been fetched first.

Semantic Scholar lookups degrade to warnings when the API is unreachable;
the source-derived counts are still reported.`,
	Example: `  marxiv refs 2310.20256
  marxiv refs 2310.20256 --json --top-citers 5`,
	Args: cobra.ExactArgs(1),
	RunE: runRefs,
}

func init() {
	refsCmd.Flags().Bool("json", false, "output the report as JSON")
	refsCmd.Flags().Int("top-citers", 10, "number of top citing papers to include")
	refsCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	refsCmd.Flags().String("semantic-scholar-api-key", "", "Semantic Scholar API key (default: .secrets/semantic-scholar-api-key)")

	rootCmd.AddCommand(refsCmd)
}

func runRefs(cmd *cobra.Command, args []string) error {
	id, ok := arxiv.Parse(args[0])
	if !ok {
		return fmt.Errorf("unrecognized arXiv identifier: %q", args[0])
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	topCiters, _ := cmd.Flags().GetInt("top-citers")
	apiKey, _ := cmd.Flags().GetString("semantic-scholar-api-key")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	sourceDir := fetch.SourceDir(cacheDir(cmd), id)
	if _, err := os.Stat(sourceDir); err != nil {
		return fmt.Errorf("no cached source for %s: run `marxiv fetch %s` first", id, id)
	}

	cfg := types.BiblioConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: userAgent(),
		},
		SemanticScholarAPIKey: secretDefault(secrets.SemanticScholarAPIKey, apiKey),
		TopCiters:             topCiters,
	}

	client := &http.Client{Timeout: timeout}
	stats, err := bib.Report(context.Background(), client, id, sourceDir, cfg, os.Stderr)
	if err != nil {
		return err
	}

	if jsonOutput {
		return bib.FormatJSON(stats, os.Stdout)
	}
	bib.FormatReport(stats, os.Stdout)
	fmt.Printf("\nAbstract page: %s\n", id.AbsURL())
	return nil
}
