package driven

import (
	"context"

	"github.com/epistle-labs/epistle/internal/core/domain"
)

// MessageIndex stores embedded documents under one named collection
// and answers nearest-neighbour queries. It is append-only: there is
// no update or delete operation, so correcting a bad document means
// rebuilding the whole index.
type MessageIndex interface {
	// Add inserts one document with its embedding vector.
	Add(ctx context.Context, doc domain.Document, embedding []float32) error

	// Search returns the k stored documents nearest to the query
	// vector, nearest first. Returns fewer than k results when the
	// index holds fewer documents. Exact similarity ties keep scan
	// order; no total order is promised among them.
	Search(ctx context.Context, query []float32, k int) ([]domain.ScoredDocument, error)

	// Count returns the total number of stored documents.
	Count(ctx context.Context) (int, error)

	// Info returns collection metadata recorded at build time.
	Info(ctx context.Context) (IndexInfo, error)

	// Close releases resources.
	Close() error
}

// IndexInfo describes a collection.
type IndexInfo struct {
	// Collection is the collection name.
	Collection string

	// EmbeddingModel is the model name recorded when the collection
	// was created. It is informational only: mixing vectors from a
	// different model is not detected or rejected.
	EmbeddingModel string
}
