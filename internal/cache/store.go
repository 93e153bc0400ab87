// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache manages the local cache of fetched papers: source trees,
// Markdown copies, YAML metadata records, and a SQLite index with FTS5
// full-text search over titles and abstracts.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/marxiv/pkg/types"
)

const (
	srcDir      = "src"
	markdownDir = "markdown"
	metaDir     = "meta"
	dbFile      = "index.db"
)

// Store manages the cache index database and metadata files.
type Store struct {
	db         *sql.DB
	cacheDir   string
	maxResults int
}

// Open opens or creates the cache index at cacheDir/index.db, creating
// the schema if it does not exist.
func Open(cfg types.CacheConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(cfg.CacheDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		cacheDir:   cfg.CacheDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			arxiv_id TEXT NOT NULL,
			title TEXT,
			authors TEXT,
			date TEXT,
			abstract TEXT,
			source_url TEXT,
			source_dir TEXT,
			main_tex_path TEXT,
			markdown_path TEXT,
			fetched_at TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE papers_fts USING fts5(title, abstract, content=papers, content_rowid=rowid)`,
			`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
				INSERT INTO papers_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
			`CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			END`,
			`CREATE TRIGGER papers_au AFTER UPDATE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
				INSERT INTO papers_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Record upserts the paper into the index and writes its YAML metadata
// file under meta/.
func (s *Store) Record(ctx context.Context, p *types.Paper) error {
	authorsJSON, _ := json.Marshal(p.Authors)
	dateStr := ""
	if !p.Date.IsZero() {
		dateStr = p.Date.Format(time.RFC3339)
	}
	fetchedStr := ""
	if !p.FetchedAt.IsZero() {
		fetchedStr = p.FetchedAt.Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO papers (id, arxiv_id, title, authors, date, abstract,
			source_url, source_dir, main_tex_path, markdown_path, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			arxiv_id=excluded.arxiv_id, title=excluded.title,
			authors=excluded.authors, date=excluded.date,
			abstract=excluded.abstract, source_url=excluded.source_url,
			source_dir=excluded.source_dir, main_tex_path=excluded.main_tex_path,
			markdown_path=excluded.markdown_path, fetched_at=excluded.fetched_at`,
		p.ID, p.ArxivID, p.Title, string(authorsJSON), dateStr, p.Abstract,
		p.SourceURL, p.SourceDir, p.MainTexPath, p.MarkdownPath, fetchedStr,
	)
	if err != nil {
		return fmt.Errorf("upserting paper %s: %w", p.ID, err)
	}

	return s.writeMeta(p)
}

// writeMeta writes the paper record to meta/[slug].yaml.
func (s *Store) writeMeta(p *types.Paper) error {
	dir := filepath.Join(s.cacheDir, metaDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating metadata directory: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, p.ID+".yaml"), data, 0o644)
}

// ReadMeta reads the YAML metadata record for a paper slug, or returns an
// error when the paper has not been fetched.
func (s *Store) ReadMeta(slug string) (*types.Paper, error) {
	data, err := os.ReadFile(filepath.Join(s.cacheDir, metaDir, slug+".yaml"))
	if err != nil {
		return nil, err
	}
	var p types.Paper
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing metadata for %s: %w", slug, err)
	}
	return &p, nil
}

// MarkdownPath returns the cache path for the converted Markdown copy of
// a paper slug.
func (s *Store) MarkdownPath(slug string) string {
	return filepath.Join(s.cacheDir, markdownDir, slug+".md")
}

// WriteMarkdown stores the converted Markdown copy for a paper slug and
// returns its path.
func (s *Store) WriteMarkdown(slug, content string) (string, error) {
	dir := filepath.Join(s.cacheDir, markdownDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating markdown directory: %w", err)
	}
	path := s.MarkdownPath(slug)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// List returns all indexed papers, most recently fetched first.
func (s *Store) List(ctx context.Context) ([]types.Paper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, arxiv_id, title, authors, date, abstract,
			source_url, source_dir, main_tex_path, markdown_path, fetched_at
		 FROM papers ORDER BY fetched_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	return scanPapers(rows)
}

// Search runs an FTS5 query over titles and abstracts, ranked by
// relevance. maxResults of 0 uses the store default.
func (s *Store) Search(ctx context.Context, query string, maxResults int) ([]types.Paper, error) {
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.arxiv_id, p.title, p.authors, p.date, p.abstract,
			p.source_url, p.source_dir, p.main_tex_path, p.markdown_path, p.fetched_at
		 FROM papers_fts
		 JOIN papers p ON p.rowid = papers_fts.rowid
		 WHERE papers_fts MATCH ?
		 ORDER BY papers_fts.rank
		 LIMIT ?`,
		query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("searching papers: %w", err)
	}
	defer rows.Close()

	return scanPapers(rows)
}

func scanPapers(rows *sql.Rows) ([]types.Paper, error) {
	var papers []types.Paper
	for rows.Next() {
		var p types.Paper
		var authorsJSON, dateStr, fetchedStr string
		if err := rows.Scan(&p.ID, &p.ArxivID, &p.Title, &authorsJSON, &dateStr,
			&p.Abstract, &p.SourceURL, &p.SourceDir, &p.MainTexPath,
			&p.MarkdownPath, &fetchedStr); err != nil {
			return nil, fmt.Errorf("scanning paper row: %w", err)
		}
		if authorsJSON != "" {
			json.Unmarshal([]byte(authorsJSON), &p.Authors)
		}
		if dateStr != "" {
			if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
				p.Date = t
			}
		}
		if fetchedStr != "" {
			if t, err := time.Parse(time.RFC3339, fetchedStr); err == nil {
				p.FetchedAt = t
			}
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// Stats holds cache index statistics.
type Stats struct {
	Papers        int
	WithMarkdown  int
	CacheDiskSize int64
}

// Stats reports how many papers are indexed, how many have a converted
// Markdown copy, and the total cache size on disk.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM papers`).Scan(&st.Papers); err != nil {
		return st, fmt.Errorf("counting papers: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM papers WHERE markdown_path != ''`,
	).Scan(&st.WithMarkdown); err != nil {
		return st, fmt.Errorf("counting converted papers: %w", err)
	}

	filepath.Walk(s.cacheDir, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			st.CacheDiskSize += info.Size()
		}
		return nil
	})
	return st, nil
}

// Clear removes all cached sources, Markdown copies, metadata files, and
// index rows. The database file itself is kept.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM papers`); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}
	for _, dir := range []string{srcDir, markdownDir, metaDir} {
		if err := os.RemoveAll(filepath.Join(s.cacheDir, dir)); err != nil {
			return fmt.Errorf("removing %s: %w", dir, err)
		}
	}
	return nil
}
