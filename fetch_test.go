package tikz

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const atomFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.00001v2</id>
    <title>A Study of
      Line-Wrapped Titles</title>
    <summary>  The abstract text.  </summary>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
    <category term="math.CT"/>
    <category term="cs.LO"/>
    <published>2023-01-02T00:00:00Z</published>
    <updated>2023-02-03T00:00:00Z</updated>
  </entry>
</feed>`

func TestFetchPaper(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id_list"); got != "2301.00001" {
			t.Errorf("id_list = %q", got)
		}
		fmt.Fprint(w, atomFixture)
	}))

	paper, err := client.FetchPaper(context.Background(), "2301.00001")
	if err != nil {
		t.Fatal(err)
	}

	if paper.ID != "2301.00001" {
		t.Errorf("ID = %q; version suffix must be stripped", paper.ID)
	}
	if paper.Title != "A Study of Line-Wrapped Titles" {
		t.Errorf("Title = %q; feed line wrapping must be collapsed", paper.Title)
	}
	if paper.Abstract != "The abstract text." {
		t.Errorf("Abstract = %q", paper.Abstract)
	}
	if paper.Authors != "Ada Lovelace, Alan Turing" {
		t.Errorf("Authors = %q", paper.Authors)
	}
	if paper.Categories != "math.CT cs.LO" {
		t.Errorf("Categories = %q", paper.Categories)
	}
	if paper.PrimaryCategory() != "math.CT" {
		t.Errorf("PrimaryCategory = %q", paper.PrimaryCategory())
	}
	if paper.Created.Year() != 2023 || paper.Created.Month() != time.January {
		t.Errorf("Created = %v", paper.Created)
	}
}

func TestFetchPaperCacheFirst(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, atomFixture)
	}))
	defer srv.Close()

	cache := testCache(t)
	client := NewClient(&ClientOptions{
		APIBaseURL:  srv.URL,
		MinInterval: time.Millisecond,
		Cache:       cache,
	})

	ctx := context.Background()
	if _, err := client.FetchPaper(ctx, "2301.00001"); err != nil {
		t.Fatal(err)
	}
	if _, err := client.FetchPaper(ctx, "2301.00001"); err != nil {
		t.Fatal(err)
	}
	if hits != 1 {
		t.Errorf("%d API requests, want 1; metadata never expires", hits)
	}
}

func TestFetchBatch(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id_list"); got != "2301.00001,2302.00002" {
			t.Errorf("id_list = %q", got)
		}
		fmt.Fprint(w, atomFixture)
	}))

	papers, err := client.FetchBatch(context.Background(), []string{"2301.00001", "2302.00002"})
	if err != nil {
		t.Fatal(err)
	}
	if len(papers) != 1 {
		t.Fatalf("got %d papers", len(papers))
	}

	// An empty ID list is a no-op, not a request.
	papers, err = client.FetchBatch(context.Background(), nil)
	if err != nil || papers != nil {
		t.Errorf("empty batch: papers=%v err=%v", papers, err)
	}
}

func TestFetchPaperNotFound(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom"></feed>`)
	}))

	if _, err := client.FetchPaper(context.Background(), "9999.99999"); err == nil {
		t.Error("empty feed must yield an error")
	}
}

func TestSearchQueryBuilding(t *testing.T) {
	var lastQuery string
	var lastStart, lastMax string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		lastQuery = q.Get("search_query")
		lastStart = q.Get("start")
		lastMax = q.Get("max_results")
		fmt.Fprint(w, atomFixture)
	}))

	ctx := context.Background()
	papers, err := client.Search(ctx, SearchOptions{
		Query:    "monoidal categories",
		Author:   "Lovelace",
		Category: "math.CT",
		Limit:    25,
		Page:     3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(papers) != 1 {
		t.Fatalf("got %d papers", len(papers))
	}

	if lastQuery != "all:monoidal categories AND au:Lovelace AND cat:math.CT" {
		t.Errorf("search_query = %q", lastQuery)
	}
	if lastStart != "50" || lastMax != "25" {
		t.Errorf("paging start=%s max=%s, want 50/25", lastStart, lastMax)
	}
}
