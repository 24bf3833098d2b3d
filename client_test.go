package tikz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(&ClientOptions{
		BaseURL:     srv.URL,
		APIBaseURL:  srv.URL + "/api/query",
		MinInterval: time.Millisecond,
	})
	return client, srv
}

func TestDownloadSource(t *testing.T) {
	payload := gzipped(t, []byte(`\documentclass{article}`))
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/e-print/2301.00001" {
			http.NotFound(w, r)
			return
		}
		w.Write(payload)
	}))

	got, err := client.DownloadSource(context.Background(), "2301.00001")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(payload) {
		t.Error("payload mangled in transit")
	}
}

func TestDownloadSourceUnavailable(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusNotFound} {
		var hits atomic.Int32
		client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(status)
		}))

		_, err := client.DownloadSource(context.Background(), "2301.00001")
		if !errors.Is(err, ErrSourceUnavailable) {
			t.Errorf("status %d: got %v, want ErrSourceUnavailable", status, err)
		}
		// PDF-only papers are a permanent condition, never retried.
		if hits.Load() != 1 {
			t.Errorf("status %d: %d requests, want 1", status, hits.Load())
		}
	}
}

func TestClientExtractFiguresWriteThrough(t *testing.T) {
	payload := gzipped(t, []byte(`\documentclass{article}
\begin{tikzpicture}\draw;\end{tikzpicture}`))

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(payload)
	}))
	defer srv.Close()

	cache := testCache(t)
	client := NewClient(&ClientOptions{
		BaseURL:     srv.URL,
		MinInterval: time.Millisecond,
		Cache:       cache,
	})

	ctx := context.Background()
	figures, err := client.ExtractFigures(ctx, "2301.00001")
	if err != nil {
		t.Fatal(err)
	}
	if len(figures) != 1 || figures[0].Type != "tikzpicture" {
		t.Fatalf("figures = %+v", figures)
	}

	// Second call must be served from cache.
	if _, err := client.ExtractFigures(ctx, "2301.00001"); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Errorf("%d network requests, want 1", hits.Load())
	}

	// A fresh client sharing the same SQLite cache also avoids the network.
	other := NewClient(&ClientOptions{
		BaseURL:     srv.URL,
		MinInterval: time.Millisecond,
		Cache:       cache,
	})
	got, err := other.ExtractFigures(ctx, "2301.00001")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("cached figures = %+v", got)
	}
	if hits.Load() != 1 {
		t.Errorf("%d network requests after cache read, want 1", hits.Load())
	}
}

func TestClientExtractFiguresNoSource(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	figures, err := client.ExtractFigures(context.Background(), "2301.00001")
	if err != nil {
		t.Fatalf("PDF-only paper must not error: %v", err)
	}
	if len(figures) != 0 {
		t.Errorf("got %d figures, want none", len(figures))
	}
}

func TestRateLimitSpacing(t *testing.T) {
	client := NewClient(&ClientOptions{MinInterval: 50 * time.Millisecond})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := client.rateLimit(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("three requests spaced only %v apart", elapsed)
	}
}

func TestRateLimitCanceled(t *testing.T) {
	client := NewClient(&ClientOptions{MinInterval: time.Hour})
	ctx := context.Background()

	// First call consumes the free slot.
	if err := client.rateLimit(ctx); err != nil {
		t.Fatal(err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := client.rateLimit(canceled); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
