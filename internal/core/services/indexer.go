package services

import (
	"context"
	"fmt"

	"github.com/epistle-labs/epistle/internal/core/domain"
	"github.com/epistle-labs/epistle/internal/core/ports/driven"
	"github.com/epistle-labs/epistle/internal/logger"
)

// Indexer builds the vector index from normalised documents: every
// document is embedded in one batch and stored with its vector and
// metadata. The index is append-only, so repeated builds accumulate.
type Indexer struct {
	embedder driven.EmbeddingService
	index    driven.MessageIndex
}

// NewIndexer creates an indexer over the given embedding service and
// index.
func NewIndexer(embedder driven.EmbeddingService, index driven.MessageIndex) *Indexer {
	return &Indexer{
		embedder: embedder,
		index:    index,
	}
}

// Build embeds and stores the given documents. Fails with
// domain.ErrEmptyInput when the slice is empty; any embedding or
// storage failure is wrapped in domain.ErrIndexBuild and nothing
// further is committed.
func (ix *Indexer) Build(ctx context.Context, docs []domain.Document) (int, error) {
	if len(docs) == 0 {
		return 0, domain.ErrEmptyInput
	}

	logger.Section("Index Build")
	logger.Info("Embedding %d documents with %s", len(docs), ix.embedder.ModelName())

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Text
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrIndexBuild, err)
	}

	for i := range docs {
		if err := ix.index.Add(ctx, docs[i], vectors[i]); err != nil {
			return i, fmt.Errorf("%w: store document %d: %w", domain.ErrIndexBuild, i, err)
		}
	}

	logger.Info("Indexed %d documents", len(docs))
	return len(docs), nil
}
