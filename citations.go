package tikz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const scholarBaseURL = "https://api.semanticscholar.org/graph/v1"

// ScholarClient looks up citation data from the Semantic Scholar Graph API.
// Like Client, it owns its own rate-limit state; the public API allows
// roughly two requests per second.
type ScholarClient struct {
	http    *http.Client
	baseURL string
	apiKey  string
	cache   *Cache
	log     *zap.Logger

	mu          sync.Mutex
	lastRequest time.Time
}

// ScholarOptions configures a ScholarClient. The zero value is usable.
type ScholarOptions struct {
	// BaseURL overrides the API endpoint (useful for tests).
	BaseURL string

	// APIKey is an optional Semantic Scholar API key.
	APIKey string

	// Cache, when set, stores citation counts and references with a
	// 7-day TTL.
	Cache *Cache

	// Logger receives client diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// NewScholarClient creates a Semantic Scholar client. opts may be nil.
func NewScholarClient(opts *ScholarOptions) *ScholarClient {
	if opts == nil {
		opts = &ScholarOptions{}
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = scholarBaseURL
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &ScholarClient{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		apiKey:  opts.APIKey,
		cache:   opts.Cache,
		log:     log,
	}
}

func (s *ScholarClient) rateLimit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if wait := 500*time.Millisecond - time.Since(s.lastRequest); wait > 0 {
		time.Sleep(wait)
	}
	s.lastRequest = time.Now()
}

func (s *ScholarClient) get(ctx context.Context, path string, params url.Values, out any) (bool, error) {
	s.rateLimit()

	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return false, err
	}
	if s.apiKey != "" {
		req.Header.Set("x-api-key", s.apiKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("http %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("parse json: %w", err)
	}
	return true, nil
}

// Citations returns citation counts for an arXiv paper, cached for seven
// days. Returns (nil, nil) when Semantic Scholar does not know the paper.
func (s *ScholarClient) Citations(ctx context.Context, paperID string) (*CitationRecord, error) {
	if s.cache != nil {
		if rec, ok, err := s.cache.GetCitations(ctx, paperID); err == nil && ok {
			return rec, nil
		}
	}

	var body struct {
		CitationCount            int `json:"citationCount"`
		InfluentialCitationCount int `json:"influentialCitationCount"`
	}
	found, err := s.get(ctx, "/paper/arXiv:"+paperID, url.Values{
		"fields": []string{"citationCount,influentialCitationCount"},
	}, &body)
	if err != nil {
		return nil, fmt.Errorf("citations %s: %w", paperID, err)
	}
	if !found {
		return nil, nil
	}

	rec := &CitationRecord{
		PaperID:          paperID,
		CitationCount:    body.CitationCount,
		InfluentialCount: body.InfluentialCitationCount,
		CachedAt:         time.Now(),
	}
	if s.cache != nil {
		if err := s.cache.PutCitations(ctx, paperID, rec.CitationCount, rec.InfluentialCount); err != nil {
			s.log.Warn("cache citations", zap.String("paper", paperID), zap.Error(err))
		}
	}
	return rec, nil
}

// References returns the papers cited by an arXiv paper, cached for seven
// days.
func (s *ScholarClient) References(ctx context.Context, paperID string, limit int) ([]ReferenceRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	if s.cache != nil {
		if refs, ok, err := s.cache.GetReferences(ctx, paperID); err == nil && ok {
			return refs, nil
		}
	}

	var body struct {
		Data []struct {
			CitedPaper struct {
				Title       string `json:"title"`
				Year        int    `json:"year"`
				ExternalIDs struct {
					ArXiv string `json:"ArXiv"`
				} `json:"externalIds"`
				Authors []struct {
					Name string `json:"name"`
				} `json:"authors"`
			} `json:"citedPaper"`
		} `json:"data"`
	}
	found, err := s.get(ctx, "/paper/arXiv:"+paperID+"/references", url.Values{
		"fields": []string{"externalIds,title,authors,year"},
		"limit":  []string{fmt.Sprint(limit)},
	}, &body)
	if err != nil {
		return nil, fmt.Errorf("references %s: %w", paperID, err)
	}
	if !found {
		return nil, nil
	}

	refs := make([]ReferenceRecord, 0, len(body.Data))
	for _, d := range body.Data {
		var names []string
		for _, a := range d.CitedPaper.Authors {
			names = append(names, a.Name)
		}
		refs = append(refs, ReferenceRecord{
			SourceID:   paperID,
			RefPaperID: d.CitedPaper.ExternalIDs.ArXiv,
			RefTitle:   d.CitedPaper.Title,
			RefAuthors: strings.Join(names, ", "),
			RefYear:    d.CitedPaper.Year,
		})
	}

	if s.cache != nil {
		if err := s.cache.PutReferences(ctx, paperID, refs); err != nil {
			s.log.Warn("cache references", zap.String("paper", paperID), zap.Error(err))
		}
	}
	return refs, nil
}
