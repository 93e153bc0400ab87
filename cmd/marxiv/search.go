package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/marxiv/internal/search"
	"github.com/pdiddy/marxiv/internal/secrets"
	"github.com/pdiddy/marxiv/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search arXiv and Semantic Scholar for papers",
	Long: `Search queries academic APIs (arXiv, Semantic Scholar) for papers matching
a free-text query or structured parameters. Results are deduplicated across
sources and ranked by relevance; rows with an arXiv fetch ID can be passed
straight to marxiv fetch.`,
	Example: `  marxiv search --query "state space models for long sequences"
  marxiv search --author "Hinton" --from 2023-01-01 --json`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "free-text search query")
	searchCmd.Flags().String("author", "", "filter by author name")
	searchCmd.Flags().String("keywords", "", "filter by keywords (comma-separated)")
	searchCmd.Flags().String("from", "", "publication date range start (YYYY-MM-DD)")
	searchCmd.Flags().String("to", "", "publication date range end (YYYY-MM-DD)")
	searchCmd.Flags().Int("max-results", 20, "maximum number of results to return")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("recency-bias", false, "boost recently published papers")
	searchCmd.Flags().Bool("arxiv", true, "query the arXiv backend")
	searchCmd.Flags().Bool("semantic-scholar", true, "query the Semantic Scholar backend")
	searchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	searchCmd.Flags().String("semantic-scholar-api-key", "", "Semantic Scholar API key (default: .secrets/semantic-scholar-api-key)")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	freeText, _ := cmd.Flags().GetString("query")
	if freeText == "" && len(args) > 0 {
		freeText = strings.Join(args, " ")
	}
	author, _ := cmd.Flags().GetString("author")
	keywordsFlag, _ := cmd.Flags().GetString("keywords")
	fromFlag, _ := cmd.Flags().GetString("from")
	toFlag, _ := cmd.Flags().GetString("to")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	recencyBias, _ := cmd.Flags().GetBool("recency-bias")
	enableArxiv, _ := cmd.Flags().GetBool("arxiv")
	enableSemantic, _ := cmd.Flags().GetBool("semantic-scholar")
	apiKey, _ := cmd.Flags().GetString("semantic-scholar-api-key")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	from, err := parseDate(fromFlag, "from")
	if err != nil {
		return err
	}
	to, err := parseDate(toFlag, "to")
	if err != nil {
		return err
	}

	var keywords []string
	for _, k := range strings.Split(keywordsFlag, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}

	query := search.Query{
		FreeText: freeText,
		Author:   author,
		Keywords: keywords,
		DateFrom: from,
		DateTo:   to,
	}

	cfg := types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: userAgent(),
		},
		MaxResults:            maxResults,
		EnableArxiv:           enableArxiv,
		EnableSemanticScholar: enableSemantic,
		SemanticScholarAPIKey: secretDefault(secrets.SemanticScholarAPIKey, apiKey),
		RecencyBiasWindow:     2 * 365 * 24 * time.Hour,
	}

	client := &http.Client{Timeout: timeout}
	backends := search.Backends(client, cfg)

	out, err := search.Run(context.Background(), backends, query, cfg, recencyBias, os.Stderr)
	if err != nil {
		return err
	}

	if jsonOutput {
		return search.FormatJSON(out, os.Stdout)
	}
	search.FormatTable(out, os.Stdout)
	return nil
}

// parseDate parses a YYYY-MM-DD flag value, tolerating an empty string.
func parseDate(value, flag string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s date %q: use YYYY-MM-DD", flag, value)
	}
	return t, nil
}
