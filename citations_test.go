package tikz

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testScholar(t *testing.T, handler http.Handler) *ScholarClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewScholarClient(&ScholarOptions{BaseURL: srv.URL, Cache: testCache(t)})
}

func TestCitations(t *testing.T) {
	var hits int
	scholar := testScholar(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/paper/arXiv:2301.00001" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"citationCount": 42, "influentialCitationCount": 7}`)
	}))

	ctx := context.Background()
	rec, err := scholar.Citations(ctx, "2301.00001")
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.CitationCount != 42 || rec.InfluentialCount != 7 {
		t.Fatalf("rec = %+v", rec)
	}

	// Within the TTL the second lookup is served from cache.
	if _, err := scholar.Citations(ctx, "2301.00001"); err != nil {
		t.Fatal(err)
	}
	if hits != 1 {
		t.Errorf("%d API requests, want 1", hits)
	}
}

func TestCitationsUnknownPaper(t *testing.T) {
	scholar := testScholar(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec, err := scholar.Citations(context.Background(), "2301.00001")
	if err != nil {
		t.Fatalf("unknown paper must not error: %v", err)
	}
	if rec != nil {
		t.Errorf("rec = %+v, want nil", rec)
	}
}

func TestReferences(t *testing.T) {
	scholar := testScholar(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/paper/arXiv:2301.00001/references" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"data": [
			{"citedPaper": {"title": "Earlier Work", "year": 2022,
				"externalIds": {"ArXiv": "2201.00001"},
				"authors": [{"name": "Ada Lovelace"}, {"name": "Alan Turing"}]}},
			{"citedPaper": {"title": "A Book", "year": 1995,
				"externalIds": {}, "authors": []}}
		]}`)
	}))

	refs, err := scholar.References(context.Background(), "2301.00001", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 2 {
		t.Fatalf("got %d refs, want 2", len(refs))
	}
	if refs[0].RefPaperID != "2201.00001" || refs[0].RefAuthors != "Ada Lovelace, Alan Turing" {
		t.Errorf("ref 0 = %+v", refs[0])
	}
	// Non-arXiv references keep their metadata with an empty paper ID.
	if refs[1].RefPaperID != "" || refs[1].RefTitle != "A Book" {
		t.Errorf("ref 1 = %+v", refs[1])
	}
}
