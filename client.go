package tikz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://arxiv.org"
	defaultAPIURL  = "https://export.arxiv.org/api/query"
)

// ErrSourceUnavailable indicates that arXiv has no downloadable LaTeX source
// for a paper (PDF-only submissions return 403).
var ErrSourceUnavailable = errors.New("source unavailable")

// ClientOptions configures a Client. The zero value is usable.
type ClientOptions struct {
	// BaseURL overrides the arXiv base URL (useful for tests).
	BaseURL string

	// APIBaseURL overrides the arXiv metadata API endpoint.
	APIBaseURL string

	// Timeout is the per-request HTTP timeout (default 60s).
	Timeout time.Duration

	// MinInterval is the minimum spacing between requests. arXiv asks for
	// one request per 3 seconds; that is the default.
	MinInterval time.Duration

	// Cache, when set, is used as a write-through store for extracted
	// figures and fetched metadata.
	Cache *Cache

	// LRUSize bounds the in-memory figure cache (default 128 papers).
	LRUSize int

	// Logger receives client diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Client downloads e-print sources and extracts TikZ figures from them.
// The rate-limit state is owned by the client instance, not by the process:
// independent clients rate-limit independently.
type Client struct {
	http        *http.Client
	baseURL     string
	apiURL      string
	minInterval time.Duration
	cache       *Cache
	figures     *LRUCache
	log         *zap.Logger

	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient creates a client. opts may be nil for defaults.
func NewClient(opts *ClientOptions) *Client {
	if opts == nil {
		opts = &ClientOptions{}
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	apiURL := opts.APIBaseURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	minInterval := opts.MinInterval
	if minInterval == 0 {
		minInterval = 3 * time.Second
	}
	lruSize := opts.LRUSize
	if lruSize == 0 {
		lruSize = 128
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		http:        &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		apiURL:      apiURL,
		minInterval: minInterval,
		cache:       opts.Cache,
		figures:     NewLRUCache(lruSize),
		log:         log,
	}
}

// rateLimit blocks until the minimum interval since the previous request has
// elapsed, or the context is canceled.
func (c *Client) rateLimit(ctx context.Context) error {
	c.mu.Lock()
	wait := c.minInterval - time.Since(c.lastRequest)
	if wait < 0 {
		wait = 0
	}
	// Reserve the slot so concurrent callers queue up behind it.
	c.lastRequest = time.Now().Add(wait)
	c.mu.Unlock()

	if wait == 0 {
		return nil
	}
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DownloadSource fetches the raw e-print payload for a paper. Returns
// ErrSourceUnavailable when arXiv has no source for the paper.
func (c *Client) DownloadSource(ctx context.Context, paperID string) ([]byte, error) {
	if err := c.rateLimit(ctx); err != nil {
		return nil, err
	}

	url := c.baseURL + "/e-print/" + paperID

	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusForbidden,
				resp.StatusCode == http.StatusNotFound:
				return retry.Unrecoverable(ErrSourceUnavailable)
			case resp.StatusCode != http.StatusOK:
				return fmt.Errorf("http %s", resp.Status)
			}

			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(2*time.Second),
	)
	if err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			return nil, ErrSourceUnavailable
		}
		return nil, fmt.Errorf("download source %s: %w", paperID, err)
	}

	c.log.Debug("downloaded source", zap.String("paper", paperID), zap.Int("bytes", len(body)))
	return body, nil
}

// ExtractFigures downloads a paper's source and extracts its TikZ figures.
// Results are served from the in-memory LRU and, when a cache is
// configured, from SQLite before any network request is made. A paper
// without downloadable source yields an empty slice, not an error.
func (c *Client) ExtractFigures(ctx context.Context, paperID string) ([]Figure, error) {
	if cached, ok := c.figures.Get(paperID); ok {
		return cached.([]Figure), nil
	}

	if c.cache != nil {
		if figures, ok, err := c.cache.GetFigures(ctx, paperID); err == nil && ok {
			c.figures.Put(paperID, figures)
			return figures, nil
		}
	}

	data, err := c.DownloadSource(ctx, paperID)
	if err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			c.log.Info("no source available", zap.String("paper", paperID))
			return nil, nil
		}
		return nil, err
	}

	figures := extractFigures(detectArchive(data, c.log), paperID)

	c.figures.Put(paperID, figures)
	if c.cache != nil {
		if err := c.cache.PutFigures(ctx, paperID, figures); err != nil {
			// Cache failures never block extraction results.
			c.log.Warn("cache figures", zap.String("paper", paperID), zap.Error(err))
		}
	}

	return figures, nil
}
