package retrieval

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/blevesearch/bleve"
	"github.com/priyanshu2307/Newschat/index"
	"github.com/priyanshu2307/Newschat/models"
)

const rrfK = 60 // reciprocal-rank-fusion constant

// Hybrid wraps a vector index with an in-memory BM25 index over the same
// documents and fuses both rankings with reciprocal-rank fusion. The BM25
// side is rebuilt from the persistent index at startup and kept current by
// routing writes through Add, so Hybrid also satisfies index.Index.
type Hybrid struct {
	idx   index.Index
	bleve bleve.Index

	mu   sync.RWMutex
	docs map[string]models.Document
}

type keywordDoc struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// NewHybrid builds the keyword leg from every document already persisted.
func NewHybrid(idx index.Index) (*Hybrid, error) {
	blv, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating keyword index: %w", err)
	}
	h := &Hybrid{idx: idx, bleve: blv, docs: make(map[string]models.Document)}

	existing, err := idx.All(context.Background())
	if err != nil {
		return nil, fmt.Errorf("rebuilding keyword index: %w", err)
	}
	for _, doc := range existing {
		if err := h.indexKeyword(doc); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Add writes through to the vector index and mirrors the batch into the
// keyword index.
func (h *Hybrid) Add(ctx context.Context, documents []string, vectors [][]float32, metadatas []models.Metadata, ids []string) error {
	if err := h.idx.Add(ctx, documents, vectors, metadatas, ids); err != nil {
		return err
	}
	for i := range documents {
		doc := models.Document{ID: ids[i], Text: documents[i], Metadata: metadatas[i]}
		if err := h.indexKeyword(doc); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hybrid) Search(ctx context.Context, queryVector []float32, topK int) ([]models.SearchResult, error) {
	return h.idx.Search(ctx, queryVector, topK)
}

func (h *Hybrid) Count(ctx context.Context) (int, error) { return h.idx.Count(ctx) }

func (h *Hybrid) All(ctx context.Context) ([]models.Document, error) { return h.idx.All(ctx) }

func (h *Hybrid) Close() error {
	if err := h.bleve.Close(); err != nil {
		return err
	}
	return h.idx.Close()
}

// Retrieve runs both legs and fuses their rankings.
func (h *Hybrid) Retrieve(ctx context.Context, query string, queryVector []float32, topK int) ([]models.SearchResult, error) {
	vecHits, err := h.idx.Search(ctx, queryVector, topK)
	if err != nil {
		return nil, err
	}
	bmHits, err := h.keywordSearch(query, topK)
	if err != nil {
		return nil, err
	}
	return fuseRRF(vecHits, bmHits, topK), nil
}

func (h *Hybrid) indexKeyword(doc models.Document) error {
	h.mu.Lock()
	h.docs[doc.ID] = doc
	h.mu.Unlock()
	if err := h.bleve.Index(doc.ID, keywordDoc{Title: doc.Metadata.Title, Text: doc.Text}); err != nil {
		return fmt.Errorf("indexing keyword document %s: %w", doc.ID, err)
	}
	return nil
}

func (h *Hybrid) keywordSearch(query string, k int) ([]models.SearchResult, error) {
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, k, 0, false)
	res, err := h.bleve.Search(req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []models.SearchResult
	for _, hit := range res.Hits {
		doc, ok := h.docs[hit.ID]
		if !ok {
			continue
		}
		out = append(out, models.SearchResult{Document: doc, Score: hit.Score})
	}
	return out, nil
}

// fuseRRF merges two rankings with reciprocal-rank fusion; ties resolve by
// document id for deterministic output.
func fuseRRF(a, b []models.SearchResult, k int) []models.SearchResult {
	type agg struct {
		doc   models.Document
		score float64
	}
	m := map[string]*agg{}
	add := func(list []models.SearchResult) {
		for rank, hit := range list {
			x, ok := m[hit.Document.ID]
			if !ok {
				x = &agg{doc: hit.Document}
				m[hit.Document.ID] = x
			}
			x.score += 1.0 / float64(rrfK+rank+1)
		}
	}
	add(a)
	add(b)

	fused := make([]models.SearchResult, 0, len(m))
	for _, v := range m {
		fused = append(fused, models.SearchResult{Document: v.doc, Score: v.score})
	}
	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].Document.ID < fused[j].Document.ID
	})
	if len(fused) > k {
		fused = fused[:k]
	}
	return fused
}
