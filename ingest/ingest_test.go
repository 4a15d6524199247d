package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/priyanshu2307/Newschat/index/badgerindex"
	"github.com/priyanshu2307/Newschat/models"
	"github.com/priyanshu2307/Newschat/news"
	fetchmodels "github.com/priyanshu2307/Newschat/tools/web_fetch/models"
)

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{float32(i) + 1, 1, 0}
	}
	return vecs, nil
}

type fakeFetcher struct {
	text string
	err  error
}

func (f *fakeFetcher) Exec(_ context.Context, url string) (fetchmodels.Result, error) {
	if f.err != nil {
		return fetchmodels.Result{}, f.err
	}
	return fetchmodels.Result{URL: url, Text: f.text, Status: 200}, nil
}

func newTestIndex(t *testing.T) *badgerindex.Store {
	t.Helper()
	store, err := badgerindex.Open("", true)
	if err != nil {
		t.Fatalf("opening in-memory index: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestProcessIndexesArticles(t *testing.T) {
	t.Parallel()
	idx := newTestIndex(t)
	p := NewPipeline(&fakeEmbedder{}, idx, nil, nil, "", 500)

	articles := []models.Article{
		{Title: "One", Content: "first body", URL: "https://example.com/1", Source: "Example"},
		{Title: "Two", Content: "second body", URL: "https://example.com/2", Source: "Example"},
	}
	count, err := p.Process(context.Background(), articles)
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	n, err := idx.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if n != 2 {
		t.Fatalf("indexed %d documents, want 2", n)
	}

	docs, err := idx.All(context.Background())
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	for _, doc := range docs {
		if !strings.Contains(doc.Text, "\n\n") {
			t.Fatalf("document text %q not composed as title and body", doc.Text)
		}
		if !strings.HasPrefix(doc.ID, "doc_") {
			t.Fatalf("document id %q missing doc_ prefix", doc.ID)
		}
		if doc.Metadata.Source != "Example" {
			t.Fatalf("metadata source = %q", doc.Metadata.Source)
		}
	}
}

func TestProcessEmptyBatch(t *testing.T) {
	t.Parallel()
	embedder := &fakeEmbedder{}
	p := NewPipeline(embedder, newTestIndex(t), nil, nil, "", 500)

	count, err := p.Process(context.Background(), nil)
	if err != nil || count != 0 {
		t.Fatalf("Process(nil) = %d, %v; want 0, nil", count, err)
	}
	if embedder.calls != 0 {
		t.Fatal("embedder called for an empty batch")
	}
}

func TestProcessEmbeddingFailureAbortsBatch(t *testing.T) {
	t.Parallel()
	idx := newTestIndex(t)
	p := NewPipeline(&fakeEmbedder{err: errors.New("quota exceeded")}, idx, nil, nil, "", 500)

	_, err := p.Process(context.Background(), []models.Article{{Title: "One", Content: "body"}})
	if err == nil {
		t.Fatal("expected error from failed embedding")
	}
	n, _ := idx.Count(context.Background())
	if n != 0 {
		t.Fatalf("index has %d documents after aborted batch, want 0", n)
	}
}

func TestFromFileMissingFile(t *testing.T) {
	t.Parallel()
	p := NewPipeline(&fakeEmbedder{}, newTestIndex(t), nil, nil, filepath.Join(t.TempDir(), "absent.json"), 500)

	count, err := p.FromFile(context.Background())
	if err != nil || count != 0 {
		t.Fatalf("FromFile() with missing file = %d, %v; want 0, nil", count, err)
	}
}

func TestFromFileMalformedJSON(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "articles.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewPipeline(&fakeEmbedder{}, newTestIndex(t), nil, nil, path, 500)

	if _, err := p.FromFile(context.Background()); err == nil {
		t.Fatal("expected error for malformed data file")
	}
}

func TestFromFileIngestsArticles(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "articles.json")
	data, _ := json.Marshal([]models.Article{
		{Title: "Saved", Content: "persisted body", URL: "https://example.com/saved"},
	})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	idx := newTestIndex(t)
	p := NewPipeline(&fakeEmbedder{}, idx, nil, nil, path, 500)

	count, err := p.FromFile(context.Background())
	if err != nil {
		t.Fatalf("FromFile() error: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Wire</title>
    <item>
      <title>Short item</title>
      <link>%s/article</link>
      <description>tiny summary</description>
    </item>
    <item>
      <title>Long item</title>
      <link>%s/long</link>
      <description>%s</description>
    </item>
  </channel>
</rss>`

func TestFromFeedEnrichesShortEntries(t *testing.T) {
	t.Parallel()
	longBody := strings.Repeat("already complete content ", 30)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, feedXML, "https://example.com", "https://example.com", longBody)
	}))
	t.Cleanup(srv.Close)

	idx := newTestIndex(t)
	fetched := strings.Repeat("full article text ", 40)
	dataPath := filepath.Join(t.TempDir(), "articles.json")
	p := NewPipeline(&fakeEmbedder{}, idx, news.NewFeedClient(50), &fakeFetcher{text: fetched}, dataPath, 500)

	count, err := p.FromFeed(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FromFeed() error: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	// Short entries got the fetched page text, long ones kept their summary.
	data, err := os.ReadFile(dataPath)
	if err != nil {
		t.Fatalf("reading persisted articles: %v", err)
	}
	var saved []models.Article
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("parsing persisted articles: %v", err)
	}
	for _, a := range saved {
		switch a.Title {
		case "Short item":
			if a.Content != fetched {
				t.Fatalf("short entry content = %q, want fetched text", a.Content)
			}
		case "Long item":
			if a.Content != longBody {
				t.Fatal("long entry should keep its summary")
			}
		}
	}
}

func TestFromFeedEnrichmentFailureKeepsSummary(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, feedXML, "https://example.com", "https://example.com", "another tiny summary")
	}))
	t.Cleanup(srv.Close)

	idx := newTestIndex(t)
	dataPath := filepath.Join(t.TempDir(), "articles.json")
	p := NewPipeline(&fakeEmbedder{}, idx, news.NewFeedClient(50), &fakeFetcher{err: errors.New("timeout")}, dataPath, 500)

	count, err := p.FromFeed(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FromFeed() must not fail on enrichment errors: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestFromFeedReplacesDataFile(t *testing.T) {
	t.Parallel()
	dataPath := filepath.Join(t.TempDir(), "articles.json")
	prior, _ := json.Marshal([]models.Article{{Title: "Stale", Content: "old"}})
	if err := os.WriteFile(dataPath, prior, 0o644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, feedXML, "https://example.com", "https://example.com", "summary")
	}))
	t.Cleanup(srv.Close)

	p := NewPipeline(&fakeEmbedder{}, newTestIndex(t), news.NewFeedClient(50), nil, dataPath, 500)
	if _, err := p.FromFeed(context.Background(), srv.URL); err != nil {
		t.Fatalf("FromFeed() error: %v", err)
	}

	data, _ := os.ReadFile(dataPath)
	var saved []models.Article
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatal(err)
	}
	for _, a := range saved {
		if a.Title == "Stale" {
			t.Fatal("data file should be replaced, not merged")
		}
	}
	if len(saved) != 2 {
		t.Fatalf("persisted %d articles, want 2", len(saved))
	}
}

func TestRunBackgroundRejectsOverlap(t *testing.T) {
	t.Parallel()
	p := NewPipeline(&fakeEmbedder{}, newTestIndex(t), nil, nil, "", 500)

	release := make(chan struct{})
	started := make(chan struct{})
	ok := p.RunBackground("file", func(ctx context.Context) (int, error) {
		close(started)
		<-release
		return 1, nil
	})
	if !ok {
		t.Fatal("first run rejected")
	}
	<-started

	if p.RunBackground("file", func(ctx context.Context) (int, error) { return 0, nil }) {
		t.Fatal("overlapping run accepted")
	}
	close(release)

	deadline := time.After(2 * time.Second)
	for {
		st := p.Tracker().Snapshot()
		if st.State == StateSucceeded {
			if st.Count != 1 {
				t.Fatalf("tracked count = %d, want 1", st.Count)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("run never finished, state = %s", st.State)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestTrackerRecordsFailure(t *testing.T) {
	t.Parallel()
	p := NewPipeline(&fakeEmbedder{}, newTestIndex(t), nil, nil, "", 500)

	if ok := p.RunBackground("rss", func(ctx context.Context) (int, error) {
		return 0, errors.New("feed unreachable")
	}); !ok {
		t.Fatal("run rejected")
	}

	deadline := time.After(2 * time.Second)
	for {
		st := p.Tracker().Snapshot()
		if st.State == StateFailed {
			if st.Error == "" {
				t.Fatal("failed run should record its error")
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("run never failed, state = %s", st.State)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
