// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tex inspects extracted LaTeX sources: choosing the main file of
// a multi-file paper and scanning citation commands.
package tex

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// candidate scores one .tex file for main-file selection.
type candidate struct {
	path string

	// nameHasMain is set when the filename contains "main".
	nameHasMain bool

	// hasDocumentclass is set when the content declares a document class.
	hasDocumentclass bool

	// includes counts \input and \include occurrences.
	includes int
}

// score is the number of boolean heuristics the candidate passes.
func (c candidate) score() int {
	n := 0
	if c.nameHasMain {
		n++
	}
	if c.hasDocumentclass {
		n++
	}
	return n
}

// FindMain chooses the most likely main LaTeX file under dir. Candidates
// are ranked by filename ("main" is a plus), presence of \documentclass,
// and how many other files they pull in via \input or \include. Returns
// an error when the directory holds no .tex files.
func FindMain(dir string) (string, error) {
	var candidates []candidate

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".tex") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		content := string(data)

		candidates = append(candidates, candidate{
			path:             path,
			nameHasMain:      strings.Contains(strings.ToLower(d.Name()), "main"),
			hasDocumentclass: strings.Contains(content, `\documentclass`),
			includes:         strings.Count(content, `\input`) + strings.Count(content, `\include`),
		})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scanning %s: %w", dir, err)
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("no .tex files found in %s", dir)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score() != candidates[j].score() {
			return candidates[i].score() > candidates[j].score()
		}
		return candidates[i].includes > candidates[j].includes
	})

	return candidates[0].path, nil
}
