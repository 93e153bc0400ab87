package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "marxiv/0.1"). arXiv asks automated clients to identify themselves.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// CacheDir is the base directory for fetched sources
	// (contains src/, markdown/, meta/, index.db).
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// Force refetches the source even when it is already cached.
	Force bool `json:"force" yaml:"force"`
}

// ConvertConfig holds settings for the conversion stage.
type ConvertConfig struct {
	// Format is the pandoc output format (default "gfm").
	Format string `json:"format" yaml:"format"`

	// OutputFile receives the converted document; empty means stdout.
	OutputFile string `json:"output_file,omitempty" yaml:"output_file,omitempty"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of results to return (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// EnableArxiv controls whether the arXiv backend is used.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// EnableSemanticScholar controls whether the Semantic Scholar backend is used.
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// RecencyBiasWindow is the time window for boosting recent papers (default 2 years).
	RecencyBiasWindow time.Duration `json:"recency_bias_window" yaml:"recency_bias_window"`
}

// BiblioConfig holds settings for the bibliometric report stage.
type BiblioConfig struct {
	HTTPConfig `yaml:",inline"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// TopCiters is the number of top citing papers to include (default 10).
	TopCiters int `json:"top_citers" yaml:"top_citers"`
}

// CacheConfig holds settings for the local cache index.
type CacheConfig struct {
	// CacheDir is the base directory for fetched sources
	// (contains src/, markdown/, meta/, index.db).
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
