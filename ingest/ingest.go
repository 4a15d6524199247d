package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/priyanshu2307/Newschat/index"
	"github.com/priyanshu2307/Newschat/models"
	"github.com/priyanshu2307/Newschat/news"
	"github.com/priyanshu2307/Newschat/provider"
	"github.com/priyanshu2307/Newschat/tools/web_fetch"
)

// Pipeline turns raw articles into indexed documents: concatenate title and
// body, batch-embed, and write the batch to the vector index.
type Pipeline struct {
	embedder         provider.Embedder
	index            index.Index
	feed             *news.FeedClient
	fetcher          web_fetch.WebFetcher
	dataPath         string
	minContentLength int
	tracker          *Tracker
	logger           *log.Logger
}

// NewPipeline creates an ingestion pipeline. fetcher may be nil, in which
// case feed entries keep their summaries unenriched.
func NewPipeline(embedder provider.Embedder, idx index.Index, feed *news.FeedClient, fetcher web_fetch.WebFetcher, dataPath string, minContentLength int) *Pipeline {
	if minContentLength <= 0 {
		minContentLength = 500
	}
	return &Pipeline{
		embedder:         embedder,
		index:            idx,
		feed:             feed,
		fetcher:          fetcher,
		dataPath:         dataPath,
		minContentLength: minContentLength,
		tracker:          NewTracker(),
		logger:           log.New(log.Writer(), "[INGEST] ", log.LstdFlags),
	}
}

// Tracker exposes the status of the most recent run.
func (p *Pipeline) Tracker() *Tracker { return p.tracker }

// FromFile ingests the articles persisted in the local data file. A missing
// file is not an error; it just yields zero articles.
func (p *Pipeline) FromFile(ctx context.Context) (int, error) {
	data, err := os.ReadFile(p.dataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading %s: %w", p.dataPath, err)
	}

	var articles []models.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return 0, fmt.Errorf("parsing %s: %w", p.dataPath, err)
	}
	return p.Process(ctx, articles)
}

// FromFeed ingests articles from an RSS feed. Short summaries are enriched
// with the full page text best-effort: a fetch failure keeps the summary and
// never aborts the batch. The fetched articles replace the data file's prior
// content before indexing.
func (p *Pipeline) FromFeed(ctx context.Context, feedURL string) (int, error) {
	articles, err := p.feed.Fetch(ctx, feedURL)
	if err != nil {
		return 0, err
	}

	for i := range articles {
		if len(articles[i].Content) >= p.minContentLength || articles[i].URL == "" || p.fetcher == nil {
			continue
		}
		result, err := p.fetcher.Exec(ctx, articles[i].URL)
		if err != nil || result.Text == "" {
			enrichmentFailures.Inc()
			p.logger.Printf("enrichment failed for %s, keeping summary: %v", articles[i].URL, err)
			continue
		}
		articles[i].Content = result.Text
	}

	if err := p.saveArticles(articles); err != nil {
		// The file is a cache of the last fetch; indexing still proceeds.
		p.logger.Printf("persisting articles to %s failed: %v", p.dataPath, err)
	}
	return p.Process(ctx, articles)
}

// Process embeds a batch of articles and writes them to the index. The whole
// batch aborts when embedding fails; there is no partial success.
func (p *Pipeline) Process(ctx context.Context, articles []models.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	documents := make([]string, 0, len(articles))
	metadatas := make([]models.Metadata, 0, len(articles))
	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		documents = append(documents, a.Title+"\n\n"+a.Content)
		metadatas = append(metadatas, models.Metadata{
			Title:     a.Title,
			URL:       a.URL,
			Published: a.Published,
			Source:    a.Source,
		})
		ids = append(ids, "doc_"+uuid.NewString())
	}

	vectors, err := p.embedder.CreateEmbedding(ctx, documents)
	if err != nil {
		return 0, fmt.Errorf("embedding batch: %w", err)
	}

	if err := p.index.Add(ctx, documents, vectors, metadatas, ids); err != nil {
		return 0, fmt.Errorf("indexing batch: %w", err)
	}
	documentsIngested.Add(float64(len(documents)))
	return len(documents), nil
}

// RunBackground starts an ingestion run detached from the caller. Outcomes
// land in the tracker instead of a response. Returns false when a run is
// already in flight.
func (p *Pipeline) RunBackground(source string, run func(ctx context.Context) (int, error)) bool {
	if !p.tracker.Begin(source) {
		p.logger.Printf("ingestion from %s skipped: another run in flight", source)
		return false
	}
	go func() {
		count, err := run(context.Background())
		p.tracker.Finish(count, err)
		if err != nil {
			ingestionRuns.WithLabelValues(source, "failed").Inc()
			p.logger.Printf("ingestion from %s failed: %v", source, err)
			return
		}
		ingestionRuns.WithLabelValues(source, "succeeded").Inc()
		p.logger.Printf("ingested %d articles from %s", count, source)
	}()
	return true
}

// saveArticles overwrites the data file with the latest batch. This is a
// replace, not a merge.
func (p *Pipeline) saveArticles(articles []models.Article) error {
	if err := os.MkdirAll(filepath.Dir(p.dataPath), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(articles)
	if err != nil {
		return err
	}
	p.logger.Printf("replacing %s with %d articles", p.dataPath, len(articles))
	return os.WriteFile(p.dataPath, data, 0o644)
}
