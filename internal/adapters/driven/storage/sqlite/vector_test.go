package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
)

// ==================== Embedding Insertion Tests ====================

func TestInsertEmbedding_Success(t *testing.T) {
	store, cleanup := setupTestStore(t, 3)
	defer cleanup()
	ctx := context.Background()

	insertTestDocument(t, store, "doc-1")
	insertTestChunk(t, store, "chunk-1", "doc-1", "embedded content")

	err := store.InsertEmbedding(ctx, "chunk-1", []float32{0.1, -0.2, 0.3})
	require.NoError(t, err)

	db := openRaw(t, store)
	var blob []byte
	err = db.QueryRow(`
		SELECT v.embedding FROM vss_embeddings v
		JOIN chunks c ON c.rowid = v.rowid
		WHERE c.id = ?`, "chunk-1").Scan(&blob)
	require.NoError(t, err)
	assert.Len(t, blob, 12, "3 float32 values at 4 bytes each")

	vec, err := decodeVector(blob)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, -0.2, 0.3}, vec)
}

func TestInsertEmbedding_UnknownChunk(t *testing.T) {
	store, cleanup := setupTestStore(t, 3)
	defer cleanup()

	err := store.InsertEmbedding(context.Background(), "no-such-chunk", []float32{1, 2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInsertEmbedding_DimensionMismatch(t *testing.T) {
	store, cleanup := setupTestStore(t, 3)
	defer cleanup()
	ctx := context.Background()

	insertTestDocument(t, store, "doc-1")
	insertTestChunk(t, store, "chunk-1", "doc-1", "content")

	err := store.InsertEmbedding(ctx, "chunk-1", []float32{1, 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestInsertEmbedding_Duplicate(t *testing.T) {
	store, cleanup := setupTestStore(t, 2)
	defer cleanup()
	ctx := context.Background()

	insertTestDocument(t, store, "doc-1")
	insertTestChunk(t, store, "chunk-1", "doc-1", "content")

	require.NoError(t, store.InsertEmbedding(ctx, "chunk-1", []float32{1, 0}))

	err := store.InsertEmbedding(ctx, "chunk-1", []float32{0, 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestInsertEmbedding_VectorTableUnavailable(t *testing.T) {
	store, cleanup := setupTestStore(t, 2)
	defer cleanup()

	store.vectorTable = false
	store.degradation = "vector table unavailable"

	err := store.InsertEmbedding(context.Background(), "chunk-1", []float32{1, 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrVectorSearchUnavailable)
}

// ==================== Vector Codec Tests ====================

func TestVectorCodec_Roundtrip(t *testing.T) {
	original := []float32{0.0, 1.0, -1.0, 0.123456, -3.5e20, 6.25e-12}

	decoded, err := decodeVector(encodeVector(original))
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestVectorCodec_Empty(t *testing.T) {
	assert.Nil(t, encodeVector(nil))
	assert.Nil(t, encodeVector([]float32{}))

	decoded, err := decodeVector(nil)
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestVectorCodec_LittleEndian(t *testing.T) {
	// 1.0 is 0x3F800000; little endian puts the low byte first.
	blob := encodeVector([]float32{1.0})
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3F}, blob)
}

func TestDecodeVector_InvalidLength(t *testing.T) {
	_, err := decodeVector([]byte{0x01, 0x02, 0x03})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a multiple of 4")
}

// ==================== Cosine Similarity Tests ====================

func TestCosineSimilarity_Identical(t *testing.T) {
	sim, err := cosineSimilarity([]float32{0.3, 0.4}, []float32{0.3, 0.4})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	sim, err := cosineSimilarity([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sim, 1e-9)
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	sim, err := cosineSimilarity([]float32{1, 2}, []float32{-1, -2})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, sim, 1e-9)
}

func TestCosineSimilarity_ScaleInvariant(t *testing.T) {
	a := []float32{0.5, 1.5, -2.0}
	b := []float32{5, 15, -20}
	sim, err := cosineSimilarity(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-6)
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	sim, err := cosineSimilarity([]float32{0, 0}, []float32{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
}

func TestCosineSimilarity_LengthMismatch(t *testing.T) {
	_, err := cosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}
