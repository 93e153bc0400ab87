// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const binPandoc = "pandoc"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunPiped(dir, name string, args []string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunPiped(dir, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec executor = &osExecutor{}

// PandocConverter renders LaTeX by invoking the pandoc binary.
type PandocConverter struct {
	exec executor
}

// NewPandocConverter verifies that pandoc is installed and returns a
// converter backed by it.
func NewPandocConverter() (*PandocConverter, error) {
	return newPandocConverter(defaultExec)
}

func newPandocConverter(exec executor) (*PandocConverter, error) {
	if _, err := exec.LookPath(binPandoc); err != nil {
		return nil, fmt.Errorf("pandoc not found on PATH (install pandoc to render papers): %w", err)
	}
	return &PandocConverter{exec: exec}, nil
}

// Convert runs pandoc on the LaTeX file at mainPath with workDir as the
// working directory and returns the rendered text.
func (p *PandocConverter) Convert(workDir, mainPath, format string) (string, error) {
	if format == "" {
		format = DefaultFormat
	}
	args := []string{"-s", mainPath, "-t", format, "--wrap=none"}

	var out, errBuf bytes.Buffer
	if err := p.exec.RunPiped(workDir, binPandoc, args, &out, &errBuf); err != nil {
		msg := strings.TrimSpace(errBuf.String())
		if msg != "" {
			return "", fmt.Errorf("pandoc failed on %s: %v: %s", mainPath, err, lastLine(msg))
		}
		return "", fmt.Errorf("pandoc failed on %s: %w", mainPath, err)
	}

	if out.Len() == 0 {
		return "", fmt.Errorf("pandoc produced empty output for %s", mainPath)
	}

	return out.String(), nil
}

// lastLine returns the final non-empty line of pandoc's stderr, which
// carries the actual error message after any warnings.
func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return s
}
