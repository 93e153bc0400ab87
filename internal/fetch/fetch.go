// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads arXiv e-print source archives and extracts them
// into the local cache.
package fetch

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/marxiv/internal/arxiv"
	"github.com/pdiddy/marxiv/internal/httputil"
	"github.com/pdiddy/marxiv/pkg/types"
)

// srcDir is the subdirectory under the cache base for extracted sources.
const srcDir = "src"

// ErrNotFound indicates the identifier does not resolve to an e-print on
// the server.
var ErrNotFound = errors.New("arXiv ID not found")

// ErrPDFOnly indicates the paper has no LaTeX source; arXiv serves the
// published PDF from the e-print endpoint for such papers.
var ErrPDFOnly = errors.New("paper has no LaTeX source (PDF-only e-print)")

// SourceDir returns the cache directory that holds the extracted source
// for the identifier.
func SourceDir(cacheDir string, id arxiv.ID) string {
	return filepath.Join(cacheDir, srcDir, id.Slug())
}

// Source downloads the e-print archive for id and extracts it into the
// cache, returning the source directory. The archive is downloaded to a
// temporary file and extracted into a staging directory that replaces the
// cached source only after extraction succeeds, so a failed refetch keeps
// the previous source intact and a forced refetch carries no stale files
// over. A 404 from the server is reported as ErrNotFound.
//
// The e-print endpoint serves three shapes: a gzipped tarball (the common
// case), a gzipped single TeX file, or a raw PDF for papers without
// source. The first two are extracted; the last is ErrPDFOnly.
func Source(ctx context.Context, client *http.Client, id arxiv.ID, cfg types.FetchConfig) (string, error) {
	destDir := SourceDir(cfg.CacheDir, id)

	if err := os.MkdirAll(filepath.Dir(destDir), 0o755); err != nil {
		return "", fmt.Errorf("creating source directory: %w", err)
	}

	tmpPath, err := download(ctx, client, id, cfg)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmpPath)

	// Stage next to the destination so the final rename stays on one
	// filesystem.
	stageDir, err := os.MkdirTemp(filepath.Dir(destDir), ".extract-*")
	if err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}
	if err := os.Chmod(stageDir, 0o755); err != nil {
		os.RemoveAll(stageDir)
		return "", err
	}

	if err := extract(tmpPath, stageDir, id); err != nil {
		os.RemoveAll(stageDir)
		return "", fmt.Errorf("extracting source for %s: %w", id, err)
	}

	if err := os.RemoveAll(destDir); err != nil {
		os.RemoveAll(stageDir)
		return "", fmt.Errorf("replacing %s: %w", destDir, err)
	}
	if err := os.Rename(stageDir, destDir); err != nil {
		os.RemoveAll(stageDir)
		return "", fmt.Errorf("replacing %s: %w", destDir, err)
	}

	return destDir, nil
}

// download fetches the e-print archive to a temporary file and returns its path.
func download(ctx context.Context, client *http.Client, id arxiv.ID, cfg types.FetchConfig) (string, error) {
	url := id.EPrintURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(cfg.CacheDir, ".fetch-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	return tmpPath, nil
}

// extract unpacks the downloaded archive at srcPath into destDir, sniffing
// the content shape first.
func extract(srcPath, destDir string, id arxiv.ID) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer f.Close()

	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		return fmt.Errorf("reading archive header: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	switch {
	case magic[0] == 0x1f && magic[1] == 0x8b:
		return extractGzip(f, destDir, id)
	case string(magic) == "%PDF":
		return ErrPDFOnly
	default:
		return fmt.Errorf("unrecognized e-print format (magic %q)", magic)
	}
}

// extractGzip handles the two gzip shapes: a tarball or a bare TeX file.
func extractGzip(f *os.File, destDir string, id arxiv.ID) error {
	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("opening gzip stream: %w", err)
	}

	tr := tar.NewReader(gz)
	first, err := tr.Next()
	if err != nil {
		// Not a tarball: rewind and treat the gunzipped content as a
		// single TeX file.
		if _, serr := f.Seek(0, io.SeekStart); serr != nil {
			return serr
		}
		return extractSingle(f, destDir, id)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	for hdr := first; ; {
		if err := writeEntry(tr, hdr, destDir); err != nil {
			return err
		}
		hdr, err = tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tarball: %w", err)
		}
	}
}

// writeEntry writes one tar entry under destDir, rejecting paths that
// would escape it. Symlinks and other special entries are skipped.
func writeEntry(tr *tar.Reader, hdr *tar.Header, destDir string) error {
	name := filepath.Clean(hdr.Name)
	if filepath.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") {
		return fmt.Errorf("tarball entry escapes destination: %q", hdr.Name)
	}
	target := filepath.Join(destDir, name)

	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, 0o755)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		_, copyErr := io.Copy(out, tr)
		closeErr := out.Close()
		if copyErr != nil {
			return fmt.Errorf("writing %s: %w", target, copyErr)
		}
		return closeErr
	default:
		// Symlinks, devices, etc. have no business in a paper source.
		return nil
	}
}

// extractSingle gunzips f into destDir as a lone TeX file named after the slug.
func extractSingle(f *os.File, destDir string, id arxiv.ID) error {
	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("opening gzip stream: %w", err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	target := filepath.Join(destDir, id.Slug()+".tex")
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	_, copyErr := io.Copy(out, gz)
	closeErr := out.Close()
	if copyErr != nil {
		return fmt.Errorf("writing %s: %w", target, copyErr)
	}
	return closeErr
}
