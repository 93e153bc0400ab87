// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the marxiv CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/marxiv/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultTimeout = 60 * time.Second

// userAgent identifies marxiv to arXiv. Automated clients are asked to
// identify themselves.
func userAgent() string {
	return "marxiv/" + version
}

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault resolves a secret from the flag value, the loaded
// secrets, or the environment, in that order.
func secretDefault(key, fallback string) string {
	return secrets.Get(loadedSecrets, key, fallback)
}

// rootCmd is the base command for the marxiv CLI.
var rootCmd = &cobra.Command{
	Use:   "marxiv",
	Short: "Fetch arXiv papers and render them for the terminal",
	Long: `marxiv downloads the LaTeX source of an arXiv paper, converts it with
pandoc, and writes the result to stdout for terminal viewing (pipe it to a
Markdown renderer such as glow). Fetched papers are cached locally and
indexed for full-text search.

Subcommands: fetch (download and render), search (query arXiv and Semantic
Scholar), refs (bibliometric report), cache (manage the local cache).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./marxiv.yaml or ~/.config/marxiv/marxiv.yaml)")
	rootCmd.PersistentFlags().String("cache-dir", "", "cache directory (default: $XDG_CACHE_HOME/marxiv)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("marxiv")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "marxiv"))
		}
	}

	viper.SetEnvPrefix("MARXIV")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// cacheDir resolves the cache directory: the --cache-dir flag, then the
// cache_dir config key, then the platform cache directory.
func cacheDir(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("cache-dir"); dir != "" {
		return dir
	}
	if dir := viper.GetString("cache_dir"); dir != "" {
		return dir
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return ".marxiv"
	}
	return filepath.Join(base, "marxiv")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
