package tikz

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// FetchPaper retrieves a paper's metadata from the arXiv API, serving from
// the cache first when one is configured (metadata never expires).
func (c *Client) FetchPaper(ctx context.Context, id string) (*Paper, error) {
	if c.cache != nil {
		if paper, err := c.cache.GetPaper(ctx, id); err == nil {
			return paper, nil
		}
	}

	feed, err := c.queryAPI(ctx, url.Values{"id_list": []string{id}})
	if err != nil {
		return nil, err
	}
	if len(feed.Entries) == 0 {
		return nil, fmt.Errorf("paper not found: %s", id)
	}

	paper := parseAtomEntry(feed.Entries[0])
	if paper.ID == "" {
		paper.ID = id
	}

	if c.cache != nil {
		if err := c.cache.PutPaper(ctx, paper); err != nil {
			c.log.Warn("cache paper", zap.String("paper", id), zap.Error(err))
		}
	}
	return paper, nil
}

// FetchBatch fetches metadata for multiple papers in a single API call.
// arXiv supports roughly 100 IDs per request.
func (c *Client) FetchBatch(ctx context.Context, ids []string) ([]*Paper, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	feed, err := c.queryAPI(ctx, url.Values{
		"id_list":     []string{strings.Join(ids, ",")},
		"max_results": []string{fmt.Sprint(len(ids))},
	})
	if err != nil {
		return nil, err
	}

	var papers []*Paper
	for _, entry := range feed.Entries {
		paper := parseAtomEntry(entry)
		if paper.ID == "" {
			continue
		}
		if c.cache != nil {
			if err := c.cache.PutPaper(ctx, paper); err != nil {
				c.log.Warn("cache paper", zap.String("paper", paper.ID), zap.Error(err))
			}
		}
		papers = append(papers, paper)
	}
	return papers, nil
}

func (c *Client) queryAPI(ctx context.Context, params url.Values) (*atomFeed, error) {
	if err := c.rateLimit(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	return &feed, nil
}

// Atom feed structures for the arXiv API

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      string         `xml:"title"`
	Summary    string         `xml:"summary"`
	Authors    []atomAuthor   `xml:"author"`
	Categories []atomCategory `xml:"category"`
	Published  string         `xml:"published"`
	Updated    string         `xml:"updated"`
	Comment    string         `xml:"comment"`
	JournalRef string         `xml:"journal_ref"`
	DOI        string         `xml:"doi"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// parseAtomEntry converts an atom entry to a Paper.
func parseAtomEntry(entry atomEntry) *Paper {
	// Extract ID from the URL (e.g., http://arxiv.org/abs/2301.00001v1 -> 2301.00001)
	paperID := ""
	if idx := strings.LastIndex(entry.ID, "/abs/"); idx >= 0 {
		paperID = normalizePaperID(entry.ID[idx+5:])
	}

	var authors []string
	for _, a := range entry.Authors {
		authors = append(authors, a.Name)
	}

	var categories []string
	for _, cat := range entry.Categories {
		categories = append(categories, cat.Term)
	}

	paper := &Paper{
		ID:         paperID,
		Title:      strings.Join(strings.Fields(entry.Title), " "),
		Abstract:   strings.TrimSpace(entry.Summary),
		Authors:    strings.Join(authors, ", "),
		Categories: strings.Join(categories, " "),
		Comments:   entry.Comment,
		JournalRef: entry.JournalRef,
		DOI:        entry.DOI,
	}

	paper.Created, _ = time.Parse(time.RFC3339, entry.Published)
	paper.Updated, _ = time.Parse(time.RFC3339, entry.Updated)

	return paper
}
