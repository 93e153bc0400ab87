// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/marxiv/internal/httputil"
	"github.com/pdiddy/marxiv/pkg/types"
)

// arXiv Atom feed XML structures.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

// FetchMetadata retrieves title, authors, date, and abstract for the paper
// from the arXiv Atom API and fills them into p. The API reports unknown
// IDs as an empty feed, which is returned as an error.
func FetchMetadata(ctx context.Context, client *http.Client, id ID, p *types.Paper, cfg types.HTTPConfig) error {
	apiURL := fmt.Sprintf("%s?id_list=%s", APIBase, id.Base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return fmt.Errorf("parsing arXiv response: %w", err)
	}

	if len(feed.Entries) == 0 {
		return fmt.Errorf("no entries found for arXiv ID %s", id)
	}

	entry := feed.Entries[0]
	p.Title = collapseWhitespace(entry.Title)
	p.Abstract = collapseWhitespace(entry.Summary)

	p.Authors = p.Authors[:0]
	for _, a := range entry.Authors {
		p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
	}

	if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
		p.Date = t
	}
	return nil
}

// collapseWhitespace trims the string and folds the hard line breaks the
// Atom API inserts into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
