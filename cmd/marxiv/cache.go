// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/marxiv/internal/cache"
	"github.com/pdiddy/marxiv/pkg/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local paper cache",
	Long: `Cache manages the local store of fetched papers: extracted sources under
src/, converted Markdown under markdown/, YAML metadata under meta/, and a
SQLite index with full-text search over titles and abstracts.`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached papers, most recently fetched first",
	RunE:  runCacheList,
}

var cacheSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over cached titles and abstracts",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCacheSearch,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache index statistics",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached sources, copies, and index entries",
	RunE:  runCacheClear,
}

func init() {
	cacheListCmd.Flags().Bool("json", false, "output as JSON")
	cacheSearchCmd.Flags().Bool("json", false, "output as JSON")
	cacheSearchCmd.Flags().Int("max-results", 0, "maximum results (0 = default)")

	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheSearchCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(cacheCmd)
}

func openStore(cmd *cobra.Command) (*cache.Store, error) {
	return cache.Open(types.CacheConfig{CacheDir: cacheDir(cmd)})
}

func runCacheList(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	papers, err := store.List(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatPapers(papers, jsonOutput)
}

func runCacheSearch(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	maxResults, _ := cmd.Flags().GetInt("max-results")
	papers, err := store.Search(context.Background(), strings.Join(args, " "), maxResults)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatPapers(papers, jsonOutput)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	st, err := store.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Cache directory:  %s\n", cacheDir(cmd))
	fmt.Printf("Papers indexed:   %d\n", st.Papers)
	fmt.Printf("With markdown:    %d\n", st.WithMarkdown)
	fmt.Printf("Disk usage:       %s\n", formatBytes(st.CacheDiskSize))
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(context.Background()); err != nil {
		return err
	}
	fmt.Println("Cache cleared.")
	return nil
}

func formatPapers(papers []types.Paper, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	}

	if len(papers) == 0 {
		fmt.Println("No cached papers.")
		return nil
	}

	fmt.Printf("%-16s  %-56s  %-12s  %s\n", "ID", "Title", "Fetched", "Markdown")
	fmt.Println(strings.Repeat("-", 95))
	for _, p := range papers {
		title := truncateTitle(p.Title, 56)
		fetched := ""
		if !p.FetchedAt.IsZero() {
			fetched = p.FetchedAt.Format("2006-01-02")
		}
		md := "no"
		if p.MarkdownPath != "" {
			md = "yes"
		}
		fmt.Printf("%-16s  %-56s  %-12s  %s\n", p.ArxivID, title, fetched, md)
	}
	fmt.Printf("\n%d paper(s)\n", len(papers))
	return nil
}

// truncateTitle shortens s to max runes, never splitting a multibyte rune.
func truncateTitle(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
