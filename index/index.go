package index

import (
	"context"
	"fmt"

	"github.com/priyanshu2307/Newschat/index/badgerindex"
	"github.com/priyanshu2307/Newschat/models"
)

// Index is a persistent store of (document, vector, metadata) triples with
// top-k cosine search. Implementations own the documents once written.
type Index interface {
	Add(ctx context.Context, documents []string, vectors [][]float32, metadatas []models.Metadata, ids []string) error
	Search(ctx context.Context, queryVector []float32, topK int) ([]models.SearchResult, error)
	Count(ctx context.Context) (int, error)
	All(ctx context.Context) ([]models.Document, error)
	Close() error
}

type Type string

const (
	BadgerIndex Type = "badger"
)

// New opens the configured vector index implementation.
func New(indexType Type, path string) (Index, error) {
	switch indexType {
	case BadgerIndex:
		return badgerindex.Open(path, false)
	default:
		return nil, fmt.Errorf("unsupported index type: %s", indexType)
	}
}
