package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epistle-labs/epistle/internal/core/domain"
)

// setupTestIndex creates a temporary SQLite index for testing.
func setupTestIndex(t *testing.T) *Index {
	t.Helper()

	ix, err := Create(t.TempDir(), "emails", "test-embed")
	require.NoError(t, err)
	require.NotNil(t, ix)
	t.Cleanup(func() { assert.NoError(t, ix.Close()) })

	return ix
}

func testDoc(id, subject string) domain.Document {
	return domain.Document{
		Text: "Sender: a@example.com\nSubject: " + subject + "\nDate: Fri, 28 Nov 2025 10:00:00 +0000\n\nbody",
		Metadata: domain.MessageMetadata{
			ID:      id,
			Sender:  "a@example.com",
			Subject: subject,
			Date:    "Fri, 28 Nov 2025 10:00:00 +0000",
		},
	}
}

func TestCreate_Success(t *testing.T) {
	dir := t.TempDir()

	ix, err := Create(dir, "emails", "test-embed")
	require.NoError(t, err)
	defer ix.Close()

	assert.Equal(t, filepath.Join(dir, "index.db"), ix.Path())
	assert.FileExists(t, ix.Path())
}

func TestCreate_ErrorHandling(t *testing.T) {
	_, err := Create("/invalid\x00path", "emails", "test-embed")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestOpen_MissingDatabase(t *testing.T) {
	_, err := Open(t.TempDir(), "emails")
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestOpen_MissingCollection(t *testing.T) {
	dir := t.TempDir()
	ix, err := Create(dir, "emails", "test-embed")
	require.NoError(t, err)
	require.NoError(t, ix.Close())

	_, err = Open(dir, "other")
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestOpen_ExistingCollection(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	ix, err := Create(dir, "emails", "test-embed")
	require.NoError(t, err)
	require.NoError(t, ix.Add(ctx, testDoc("id-1", "hello"), []float32{1, 0, 0}))
	require.NoError(t, ix.Close())

	reopened, err := Open(dir, "emails")
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreate_PreservesModelStamp(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	ix, err := Create(dir, "emails", "first-model")
	require.NoError(t, err)
	require.NoError(t, ix.Close())

	// Re-creating with a different model must not overwrite the stamp.
	ix, err = Create(dir, "emails", "second-model")
	require.NoError(t, err)
	defer ix.Close()

	info, err := ix.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "emails", info.Collection)
	assert.Equal(t, "first-model", info.EmbeddingModel)
}

func TestIndex_SearchOrdersByCosineSimilarity(t *testing.T) {
	ix := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.Add(ctx, testDoc("id-1", "far"), []float32{0, 1, 0}))
	require.NoError(t, ix.Add(ctx, testDoc("id-2", "near"), []float32{1, 0.1, 0}))
	require.NoError(t, ix.Add(ctx, testDoc("id-3", "exact"), []float32{1, 0, 0}))

	hits, err := ix.Search(ctx, []float32{1, 0, 0}, 3)

	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "exact", hits[0].Document.Metadata.Subject)
	assert.Equal(t, "near", hits[1].Document.Metadata.Subject)
	assert.Equal(t, "far", hits[2].Document.Metadata.Subject)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
	assert.Greater(t, hits[1].Similarity, hits[2].Similarity)
}

func TestIndex_SearchClampsK(t *testing.T) {
	ix := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.Add(ctx, testDoc("id-1", "only"), []float32{1, 0, 0}))

	hits, err := ix.Search(ctx, []float32{1, 0, 0}, 50)

	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestIndex_SearchEmptyIndex(t *testing.T) {
	ix := setupTestIndex(t)

	hits, err := ix.Search(context.Background(), []float32{1, 0, 0}, 5)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_RoundTripsDocumentVerbatim(t *testing.T) {
	ix := setupTestIndex(t)
	ctx := context.Background()

	doc := testDoc("id-1", "Quarterly report")
	require.NoError(t, ix.Add(ctx, doc, []float32{0.5, 0.5, 0}))

	hits, err := ix.Search(ctx, []float32{0.5, 0.5, 0}, 1)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, doc, hits[0].Document)
}

func TestIndex_CountPerCollection(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	emails, err := Create(dir, "emails", "test-embed")
	require.NoError(t, err)
	defer emails.Close()

	other, err := Create(dir, "archive", "test-embed")
	require.NoError(t, err)
	defer other.Close()

	require.NoError(t, emails.Add(ctx, testDoc("id-1", "a"), []float32{1, 0, 0}))
	require.NoError(t, emails.Add(ctx, testDoc("id-2", "b"), []float32{0, 1, 0}))
	require.NoError(t, other.Add(ctx, testDoc("id-3", "c"), []float32{0, 0, 1}))

	count, err := emails.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = other.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIndex_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	ix, err := Create(dir, "emails", "test-embed")
	require.NoError(t, err)
	require.NoError(t, ix.Close())

	ix, err = Create(dir, "emails", "test-embed")
	require.NoError(t, err)
	assert.NoError(t, ix.Close())
}

func TestFloat32BytesRoundTrip(t *testing.T) {
	vec := []float32{0.1, -2.5, 0, 1e6}

	assert.Equal(t, vec, bytesToFloat32Slice(float32SliceToBytes(vec)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
