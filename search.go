package tikz

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// SearchOptions configures an arXiv API search.
type SearchOptions struct {
	// Query is matched against all fields. May be empty if Author or
	// Category is set.
	Query string

	// Category filters results (e.g., "cs.LG").
	Category string

	// Author filters by author name.
	Author string

	// SortBy is one of "relevance", "date_desc", "date_asc"
	// (default relevance).
	SortBy string

	// Limit caps the number of results (default 10, max 100).
	Limit int

	// Page selects a result page, starting at 1.
	Page int
}

// Search queries the arXiv API for papers.
func (c *Client) Search(ctx context.Context, opts SearchOptions) ([]*Paper, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}

	var parts []string
	if opts.Query != "" {
		parts = append(parts, "all:"+opts.Query)
	}
	if opts.Author != "" {
		parts = append(parts, "au:"+opts.Author)
	}
	if opts.Category != "" {
		parts = append(parts, "cat:"+opts.Category)
	}
	query := strings.Join(parts, " AND ")
	if query == "" {
		query = "all:*"
	}

	sortBy := "relevance"
	sortOrder := "descending"
	switch opts.SortBy {
	case "date_desc":
		sortBy = "submittedDate"
	case "date_asc":
		sortBy = "submittedDate"
		sortOrder = "ascending"
	}

	params := url.Values{
		"search_query": []string{query},
		"start":        []string{fmt.Sprint((page - 1) * limit)},
		"max_results":  []string{fmt.Sprint(limit)},
		"sortBy":       []string{sortBy},
		"sortOrder":    []string{sortOrder},
	}

	feed, err := c.queryAPI(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var papers []*Paper
	for _, entry := range feed.Entries {
		paper := parseAtomEntry(entry)
		if paper.ID == "" {
			continue
		}
		papers = append(papers, paper)
	}
	return papers, nil
}
