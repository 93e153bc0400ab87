// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/marxiv/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.CacheConfig{CacheDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePaper(id string) *types.Paper {
	return &types.Paper{
		ID:        id,
		ArxivID:   id,
		Title:     "Attention Is All You Need",
		Authors:   []string{"Ashish Vaswani"},
		Date:      time.Date(2017, 6, 12, 0, 0, 0, 0, time.UTC),
		Abstract:  "We propose the Transformer, based solely on attention mechanisms.",
		SourceURL: "https://arxiv.org/e-print/" + id,
		FetchedAt: time.Now().UTC(),
	}
}

func TestRecordAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, samplePaper("1706.03762")))

	papers, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, papers, 1)

	got := papers[0]
	assert.Equal(t, "1706.03762", got.ID)
	assert.Equal(t, "Attention Is All You Need", got.Title)
	assert.Equal(t, []string{"Ashish Vaswani"}, got.Authors)
	assert.Equal(t, 2017, got.Date.Year())

	// A metadata YAML file is written alongside the index row.
	meta, err := s.ReadMeta("1706.03762")
	require.NoError(t, err)
	assert.Equal(t, got.Title, meta.Title)
}

func TestRecord_Upsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := samplePaper("1706.03762")
	require.NoError(t, s.Record(ctx, p))

	p.Title = "Attention Is All You Need (v2)"
	require.NoError(t, s.Record(ctx, p))

	papers, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "Attention Is All You Need (v2)", papers[0].Title)
}

func TestSearch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, samplePaper("1706.03762")))

	other := samplePaper("2310.20256")
	other.Title = "Diffusion Models for Image Synthesis"
	other.Abstract = "A study of denoising diffusion probabilistic models."
	require.NoError(t, s.Record(ctx, other))

	hits, err := s.Search(ctx, "attention", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "1706.03762", hits[0].ID)

	hits, err = s.Search(ctx, "diffusion", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "2310.20256", hits[0].ID)

	hits, err = s.Search(ctx, "nonexistent", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_SeesUpdates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := samplePaper("1706.03762")
	require.NoError(t, s.Record(ctx, p))

	p.Title = "Graph Neural Networks"
	p.Abstract = "A survey of message passing."
	require.NoError(t, s.Record(ctx, p))

	hits, err := s.Search(ctx, "attention", 0)
	require.NoError(t, err)
	assert.Empty(t, hits, "stale FTS rows should be gone after update")

	hits, err = s.Search(ctx, "graph", 0)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestWriteMarkdownAndStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := samplePaper("1706.03762")
	path, err := s.WriteMarkdown(p.ID, "# Attention\n")
	require.NoError(t, err)
	p.MarkdownPath = path
	require.NoError(t, s.Record(ctx, p))

	require.NoError(t, s.Record(ctx, samplePaper("2310.20256")))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Papers)
	assert.Equal(t, 1, st.WithMarkdown)
	assert.Greater(t, st.CacheDiskSize, int64(0))
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := samplePaper("1706.03762")
	_, err := s.WriteMarkdown(p.ID, "# md")
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, p))

	require.NoError(t, s.Clear(ctx))

	papers, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, papers)

	_, err = os.Stat(filepath.Join(s.cacheDir, markdownDir))
	assert.True(t, os.IsNotExist(err))
}
