package retrieval

import (
	"context"
	"fmt"

	"github.com/priyanshu2307/Newschat/index"
	"github.com/priyanshu2307/Newschat/models"
)

// Retriever finds the documents most relevant to a query. The query is
// supplied both as text (for keyword legs) and as its embedding vector.
type Retriever interface {
	Retrieve(ctx context.Context, query string, queryVector []float32, topK int) ([]models.SearchResult, error)
}

type Mode string

const (
	VectorMode Mode = "vector"
	HybridMode Mode = "hybrid"
)

// New builds a retriever over idx. Hybrid mode layers a BM25 keyword index
// on top of the vector search and fuses the two rankings.
func New(mode Mode, idx index.Index) (Retriever, error) {
	switch mode {
	case VectorMode:
		return &Vector{idx: idx}, nil
	case HybridMode:
		return NewHybrid(idx)
	default:
		return nil, fmt.Errorf("unsupported retrieval mode: %s", mode)
	}
}

// Vector retrieves by cosine similarity alone.
type Vector struct {
	idx index.Index
}

func (v *Vector) Retrieve(ctx context.Context, _ string, queryVector []float32, topK int) ([]models.SearchResult, error) {
	return v.idx.Search(ctx, queryVector, topK)
}
