package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epistle-labs/epistle/internal/adapters/driven/index/memory"
	"github.com/epistle-labs/epistle/internal/core/domain"
)

func TestIndexer_BuildCountsMatchInput(t *testing.T) {
	ix := memory.New("emails", "mock-embed")
	indexer := NewIndexer(&mockEmbedder{}, ix)
	ctx := context.Background()

	docs := []domain.Document{
		Normalise(domain.RawMessage{Subject: "one", Body: "first"}),
		Normalise(domain.RawMessage{Subject: "two", Body: "second"}),
		Normalise(domain.RawMessage{Subject: "three", Body: "third"}),
	}

	n, err := indexer.Build(ctx, docs)

	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := ix.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestIndexer_BuildEmptyInputFails(t *testing.T) {
	indexer := NewIndexer(&mockEmbedder{}, memory.New("emails", "mock-embed"))

	_, err := indexer.Build(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestIndexer_BuildWrapsEmbeddingFailure(t *testing.T) {
	embedder := &mockEmbedder{embedErr: errors.New("connection refused")}
	ix := memory.New("emails", "mock-embed")
	indexer := NewIndexer(embedder, ix)
	ctx := context.Background()

	docs := []domain.Document{Normalise(domain.RawMessage{Body: "hello"})}

	_, err := indexer.Build(ctx, docs)

	assert.ErrorIs(t, err, domain.ErrIndexBuild)

	// Nothing committed on failure.
	count, countErr := ix.Count(ctx)
	require.NoError(t, countErr)
	assert.Equal(t, 0, count)
}
