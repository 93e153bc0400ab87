// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/marxiv/internal/arxiv"
	"github.com/pdiddy/marxiv/internal/cache"
	"github.com/pdiddy/marxiv/internal/convert"
	"github.com/pdiddy/marxiv/pkg/types"
)

const mainTex = `\documentclass{article}
\begin{document}
Hello.
\end{document}
`

const atomFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2310.20256v1</id>
    <title>Pipeline Test Paper</title>
    <summary>An abstract.</summary>
    <published>2023-10-31T12:00:00Z</published>
    <author><name>A. Author</name></author>
  </entry>
</feed>`

// fakeConverter records its inputs and returns a canned document.
type fakeConverter struct {
	doc      string
	err      error
	workDirs []string
	formats  []string
}

func (c *fakeConverter) Convert(workDir, mainPath, format string) (string, error) {
	c.workDirs = append(c.workDirs, workDir)
	c.formats = append(c.formats, format)
	if c.err != nil {
		return "", c.err
	}
	return c.doc, nil
}

func tarball(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		if err := tw.WriteHeader(&tar.Header{
			Name: name, Mode: 0o644, Size: int64(len(content)),
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	tw.Close()
	gz.Close()
	return buf.Bytes()
}

// withServers points the arXiv endpoints at httptest servers for the
// duration of the test.
func withServers(t *testing.T, archive []byte) {
	t.Helper()

	eprint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if archive == nil {
			http.NotFound(w, r)
			return
		}
		w.Write(archive)
	}))
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, atomFeed)
	}))

	oldEPrint, oldAPI := arxiv.EPrintBase, arxiv.APIBase
	arxiv.EPrintBase = eprint.URL + "/"
	arxiv.APIBase = api.URL
	t.Cleanup(func() {
		arxiv.EPrintBase = oldEPrint
		arxiv.APIBase = oldAPI
		eprint.Close()
		api.Close()
	})
}

func testOptions(cacheDir string) Options {
	return Options{
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{UserAgent: "marxiv-test"},
			CacheDir:   cacheDir,
		},
		Convert: types.ConvertConfig{Format: "gfm"},
	}
}

func TestRun(t *testing.T) {
	cacheDir := t.TempDir()
	withServers(t, tarball(t, map[string]string{"main.tex": mainTex}))

	store, err := cache.Open(types.CacheConfig{CacheDir: cacheDir})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	conv := &fakeConverter{doc: "# Rendered\n"}
	var out, status bytes.Buffer

	result := Run(context.Background(), http.DefaultClient, conv, store,
		[]string{"2310.20256"}, testOptions(cacheDir), &out, &status)

	if result.Rendered != 1 || result.Failed != 0 {
		t.Fatalf("result = %+v, want 1 rendered", result)
	}
	if out.String() != "# Rendered\n" {
		t.Errorf("out = %q, want rendered document", out.String())
	}
	if !strings.Contains(status.String(), "fetching: 2310.20256") {
		t.Errorf("status = %q, want fetching line", status.String())
	}

	p, err := store.ReadMeta("2310.20256")
	if err != nil {
		t.Fatalf("ReadMeta: %v", err)
	}
	if p.Title != "Pipeline Test Paper" {
		t.Errorf("cached title = %q", p.Title)
	}
	if p.MarkdownPath == "" {
		t.Error("expected a cached markdown copy for a md format")
	}
	if data, err := os.ReadFile(p.MarkdownPath); err != nil {
		t.Errorf("reading markdown copy: %v", err)
	} else if !strings.Contains(string(data), "# Rendered") {
		t.Errorf("markdown copy = %q", data)
	}
}

func TestRun_EmptyFormatDefaultsAndCachesMarkdown(t *testing.T) {
	cacheDir := t.TempDir()
	withServers(t, tarball(t, map[string]string{"main.tex": mainTex}))

	store, err := cache.Open(types.CacheConfig{CacheDir: cacheDir})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	opts := testOptions(cacheDir)
	opts.Convert.Format = ""

	conv := &fakeConverter{doc: "# Default\n"}
	var out, status bytes.Buffer

	result := Run(context.Background(), http.DefaultClient, conv, store,
		[]string{"2310.20256"}, opts, &out, &status)

	if result.Rendered != 1 {
		t.Fatalf("result = %+v; status: %s", result, status.String())
	}
	if len(conv.formats) != 1 || conv.formats[0] != convert.DefaultFormat {
		t.Errorf("converter got formats %v, want [%s]", conv.formats, convert.DefaultFormat)
	}

	// The default format is a markdown flavor, so the cached copy is written.
	p, err := store.ReadMeta("2310.20256")
	if err != nil {
		t.Fatalf("ReadMeta: %v", err)
	}
	if p.MarkdownPath == "" {
		t.Error("markdown copy missing for the default format")
	}
}

func TestRun_CachedSourceSkipsDownload(t *testing.T) {
	cacheDir := t.TempDir()
	// No servers: a download attempt would fail. Pre-populate the source.
	srcDir := filepath.Join(cacheDir, "src", "2310.20256")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "main.tex"), []byte(mainTex), 0o644); err != nil {
		t.Fatal(err)
	}

	withServers(t, nil) // metadata server still answers; e-print 404s

	conv := &fakeConverter{doc: "cached doc"}
	var out, status bytes.Buffer

	result := Run(context.Background(), http.DefaultClient, conv, nil,
		[]string{"2310.20256"}, testOptions(cacheDir), &out, &status)

	if result.Rendered != 1 {
		t.Fatalf("result = %+v, want 1 rendered; status: %s", result, status.String())
	}
	if !strings.Contains(status.String(), "cached:") {
		t.Errorf("status = %q, want cached line", status.String())
	}
	if len(conv.workDirs) != 1 || conv.workDirs[0] != srcDir {
		t.Errorf("converter ran in %v, want %s", conv.workDirs, srcDir)
	}
}

func TestRun_ContinuesAfterFailure(t *testing.T) {
	cacheDir := t.TempDir()
	withServers(t, tarball(t, map[string]string{"main.tex": mainTex}))

	conv := &fakeConverter{doc: "ok"}
	var out, status bytes.Buffer

	result := Run(context.Background(), http.DefaultClient, conv, nil,
		[]string{"not-an-id", "2310.20256"}, testOptions(cacheDir), &out, &status)

	if result.Rendered != 1 || result.Failed != 1 {
		t.Fatalf("result = %+v, want 1 rendered 1 failed", result)
	}
	if !strings.Contains(status.String(), "failed:") {
		t.Errorf("status = %q, want failed line", status.String())
	}
	if !strings.Contains(status.String(), "Batch summary: 1 rendered, 1 failed") {
		t.Errorf("status = %q, want batch summary", status.String())
	}
}

func TestRun_OutputFile(t *testing.T) {
	cacheDir := t.TempDir()
	withServers(t, tarball(t, map[string]string{"main.tex": mainTex}))

	outPath := filepath.Join(t.TempDir(), "paper.md")
	opts := testOptions(cacheDir)
	opts.Convert.OutputFile = outPath

	conv := &fakeConverter{doc: "to file"}
	var out, status bytes.Buffer

	result := Run(context.Background(), http.DefaultClient, conv, nil,
		[]string{"2310.20256"}, opts, &out, &status)

	if result.Rendered != 1 {
		t.Fatalf("result = %+v; status: %s", result, status.String())
	}
	if out.Len() != 0 {
		t.Errorf("stdout = %q, want empty when writing to a file", out.String())
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "to file" {
		t.Errorf("file content = %q", data)
	}
}
