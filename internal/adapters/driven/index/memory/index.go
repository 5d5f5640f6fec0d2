// Package memory provides an in-memory message index, used by tests
// and as a scratch index when persistence is not wanted.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/epistle-labs/epistle/internal/core/domain"
	"github.com/epistle-labs/epistle/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.MessageIndex = (*Index)(nil)

type entry struct {
	doc    domain.Document
	vector []float32
}

// Index is an in-memory implementation of driven.MessageIndex.
type Index struct {
	mu         sync.RWMutex
	collection string
	model      string
	entries    []entry
}

// New creates an empty in-memory index.
func New(collection, embeddingModel string) *Index {
	return &Index{
		collection: collection,
		model:      embeddingModel,
	}
}

// Add inserts one document with its embedding vector.
func (ix *Index) Add(_ context.Context, doc domain.Document, embedding []float32) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	ix.entries = append(ix.entries, entry{doc: doc, vector: vec})
	return nil
}

// Search returns the k nearest documents by cosine similarity,
// nearest first. Fewer than k are returned when the index is smaller.
func (ix *Index) Search(_ context.Context, query []float32, k int) ([]domain.ScoredDocument, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	scored := make([]domain.ScoredDocument, 0, len(ix.entries))
	for _, e := range ix.entries {
		scored = append(scored, domain.ScoredDocument{
			Document:   e.doc,
			Similarity: cosineSimilarity(query, e.vector),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Count returns the number of stored documents.
func (ix *Index) Count(_ context.Context) (int, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries), nil
}

// Info returns the collection metadata.
func (ix *Index) Info(_ context.Context) (driven.IndexInfo, error) {
	return driven.IndexInfo{
		Collection:     ix.collection,
		EmbeddingModel: ix.model,
	}, nil
}

// Close releases resources.
func (ix *Index) Close() error {
	return nil
}

// cosineSimilarity returns the cosine of the angle between two
// vectors; 0 when either has zero magnitude or lengths differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
