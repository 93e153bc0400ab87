// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: semantic-scholar-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SemanticScholarAPIKey names the Semantic Scholar Graph API key, both as
// a file under the secrets directory and as a Get lookup name.
const SemanticScholarAPIKey = "semantic-scholar-api-key"

// Get resolves the named secret: an explicit value (e.g. from a flag)
// wins, then the loaded secrets map, then the MARXIV_* environment
// variable derived from the name.
func Get(secrets map[string]string, name, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v, ok := secrets[name]; ok {
		return v
	}
	return os.Getenv(envName(name))
}

// envName maps a secret name to its environment variable
// (semantic-scholar-api-key → MARXIV_SEMANTIC_SCHOLAR_API_KEY).
func envName(name string) string {
	return "MARXIV_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
