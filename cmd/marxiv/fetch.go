// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/marxiv/internal/cache"
	"github.com/pdiddy/marxiv/internal/convert"
	"github.com/pdiddy/marxiv/internal/pipeline"
	"github.com/pdiddy/marxiv/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [arxiv-ids...]",
	Short: "Download arXiv papers and render them with pandoc",
	Long: `Fetch downloads the LaTeX source for each arXiv ID, picks the main TeX
file, converts it with pandoc, and writes the result to stdout (or to a
file with -o). Sources are cached; a second fetch of the same ID skips the
download unless --force is given.

Accepts new-style (2310.20256, optionally versioned) and old-style
(math/0211159) identifiers, with or without the arXiv: prefix.`,
	Example: `  marxiv fetch 2310.20256 | glow -p
  marxiv fetch arXiv:2310.20256v2 -f markdown -o paper.md
  marxiv fetch math/0211159 cond-mat/9901001`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringP("format", "f", convert.DefaultFormat, "pandoc output format (gfm, markdown, plain, ...)")
	fetchCmd.Flags().StringP("output", "o", "", "write output to file instead of stdout (single ID only)")
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().Bool("force", false, "refetch the source even when cached")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more arXiv identifiers")
	}

	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	if output != "" && len(args) > 1 {
		return fmt.Errorf("-o/--output requires a single identifier")
	}
	if output != "" && !strings.Contains(output, ".") {
		output = output + "." + convert.Extension(format)
	}

	opts := pipeline.Options{
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: userAgent(),
			},
			CacheDir: cacheDir(cmd),
			Force:    force,
		},
		Convert: types.ConvertConfig{
			Format:     format,
			OutputFile: output,
		},
	}

	conv, err := convert.NewPandocConverter()
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: timeout}

	// A broken index should not block reading a paper.
	var store *cache.Store
	if s, err := cache.Open(types.CacheConfig{CacheDir: opts.Fetch.CacheDir}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cache index unavailable: %v\n", err)
	} else {
		store = s
		defer store.Close()
	}

	result := pipeline.Run(context.Background(), client, conv, store,
		args, opts, os.Stdout, os.Stderr)
	if result.HasFailures() {
		return fmt.Errorf("%d paper(s) failed", result.Failed)
	}
	return nil
}
