package badgerindex

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/priyanshu2307/Newschat/models"
)

const docPrefix = "doc:"

// Store is a BadgerDB-backed vector index. Each entry holds the document
// text, its embedding vector and the trimmed metadata under one key, so a
// write is atomic per document (at-least-once across a batch).
type Store struct {
	db     *badger.DB
	logger *log.Logger
}

type record struct {
	Document models.Document `json:"document"`
	Vector   []float32       `json:"vector"`
}

// badgerLogger adapts the stdlib logger to badger's logging interface.
type badgerLogger struct {
	logger *log.Logger
}

func (l badgerLogger) Errorf(msg string, items ...interface{})   { l.logger.Printf("ERROR "+msg, items...) }
func (l badgerLogger) Warningf(msg string, items ...interface{}) { l.logger.Printf("WARN "+msg, items...) }
func (l badgerLogger) Infof(msg string, items ...interface{})    {}
func (l badgerLogger) Debugf(msg string, items ...interface{})   {}

// Open opens (or creates) a badger-backed index at path. With inMemory set,
// nothing touches disk; used by tests.
func Open(path string, inMemory bool) (*Store, error) {
	logger := log.New(log.Writer(), "[INDEX] ", log.LstdFlags)

	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = badgerLogger{logger: logger}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add writes a batch of documents with their vectors and metadata. All four
// sequences must have equal length. Entries written before a failure stay
// written; callers treat the batch as at-least-once.
func (s *Store) Add(ctx context.Context, documents []string, vectors [][]float32, metadatas []models.Metadata, ids []string) error {
	if len(documents) != len(vectors) || len(documents) != len(metadatas) || len(documents) != len(ids) {
		return fmt.Errorf("mismatched batch lengths: %d documents, %d vectors, %d metadatas, %d ids",
			len(documents), len(vectors), len(metadatas), len(ids))
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range documents {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := record{
			Document: models.Document{ID: ids[i], Text: documents[i], Metadata: metadatas[i]},
			Vector:   vectors[i],
		}
		value, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshalling document %s: %w", ids[i], err)
		}
		if err := wb.Set([]byte(docPrefix+ids[i]), value); err != nil {
			return fmt.Errorf("writing document %s: %w", ids[i], err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flushing batch: %w", err)
	}
	return nil
}

// Search scans all stored vectors and returns at most topK documents ordered
// by descending cosine similarity. An empty index yields an empty result.
func (s *Store) Search(ctx context.Context, queryVector []float32, topK int) ([]models.SearchResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	var results []models.SearchResult
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(docPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				var rec record
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("unmarshalling %s: %w", it.Item().Key(), err)
				}
				results = append(results, models.SearchResult{
					Document: rec.Document,
					Score:    Cosine(queryVector, rec.Vector),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of indexed documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(docPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// All returns every stored document without vectors, used to rebuild
// secondary keyword indexes at startup.
func (s *Store) All(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(docPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				var rec record
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("unmarshalling %s: %w", it.Item().Key(), err)
				}
				docs = append(docs, rec.Document)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Cosine computes cosine similarity clamped to [0,1]. A zero vector scores 0.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if sim < 0 {
		return 0
	}
	return sim
}
