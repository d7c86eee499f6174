package sqlite

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
)

// seedSimilarities stores one chunk per similarity value so that a
// search for (1, 0) scores each chunk at exactly that value: the vector
// (s, sqrt(1-s^2)) is a unit vector whose cosine against (1, 0) is s.
func seedSimilarities(t *testing.T, store *Store, sims []float64) {
	t.Helper()
	ctx := context.Background()

	insertTestDocument(t, store, "doc-1")
	for i, s := range sims {
		chunkID := fmt.Sprintf("chunk-%d", i)
		insertTestChunk(t, store, chunkID, "doc-1", fmt.Sprintf("content %d", i))
		vec := []float32{float32(s), float32(math.Sqrt(1 - s*s))}
		require.NoError(t, store.InsertEmbedding(ctx, chunkID, vec))
	}
}

var unitQuery = []float32{1, 0}

// ==================== Similarity Search Tests ====================

func TestSearchSimilar_RanksThenTruncatesThenFilters(t *testing.T) {
	store, cleanup := setupTestStore(t, 2)
	defer cleanup()

	seedSimilarities(t, store, []float64{0.9, 0.8, 0.7, 0.6, 0.1})

	// Limit 3 keeps the top three by rank; the 0.75 threshold then
	// removes the 0.7 entry from the truncated set.
	threshold := 0.75
	results, err := store.SearchSimilar(context.Background(), unitQuery, 3, &threshold)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "chunk-0", results[0].ChunkID)
	assert.Equal(t, "chunk-1", results[1].ChunkID)
	assert.InDelta(t, 0.9, results[0].Similarity, 1e-6)
	assert.InDelta(t, 0.8, results[1].Similarity, 1e-6)
}

func TestSearchSimilar_ResultFields(t *testing.T) {
	store, cleanup := setupTestStore(t, 2)
	defer cleanup()

	seedSimilarities(t, store, []float64{1.0})

	results, err := store.SearchSimilar(context.Background(), unitQuery, 5, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "chunk-0", r.ChunkID)
	assert.Equal(t, "content 0", r.Content)
	assert.Equal(t, "doc-1", r.DocumentID)
	assert.InDelta(t, 1.0, r.Similarity, 1e-6)
	assert.Equal(t, []float32{1, 0}, r.Embedding)
}

func TestSearchSimilar_DefaultThreshold(t *testing.T) {
	store, cleanup := setupTestStore(t, 2, WithDefaultThreshold(0.65))
	defer cleanup()

	seedSimilarities(t, store, []float64{0.9, 0.6})

	results, err := store.SearchSimilar(context.Background(), unitQuery, 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "chunk-0", results[0].ChunkID)
}

func TestSearchSimilar_ThresholdOverride(t *testing.T) {
	store, cleanup := setupTestStore(t, 2, WithDefaultThreshold(0.95))
	defer cleanup()

	seedSimilarities(t, store, []float64{0.9, 0.6})

	override := 0.5
	results, err := store.SearchSimilar(context.Background(), unitQuery, 10, &override)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchSimilar_OrderedDescending(t *testing.T) {
	store, cleanup := setupTestStore(t, 2)
	defer cleanup()

	// Insert out of order; results must still come back ranked.
	seedSimilarities(t, store, []float64{0.6, 0.95, 0.8})

	threshold := 0.0
	results, err := store.SearchSimilar(context.Background(), unitQuery, 10, &threshold)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Similarity, results[i].Similarity)
	}
}

func TestSearchSimilar_EmptyStore(t *testing.T) {
	store, cleanup := setupTestStore(t, 2)
	defer cleanup()

	results, err := store.SearchSimilar(context.Background(), unitQuery, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchSimilar_NonPositiveLimit(t *testing.T) {
	store, cleanup := setupTestStore(t, 2)
	defer cleanup()

	seedSimilarities(t, store, []float64{0.9})

	for _, limit := range []int{0, -1} {
		results, err := store.SearchSimilar(context.Background(), unitQuery, limit, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	}
}

func TestSearchSimilar_DimensionMismatch(t *testing.T) {
	store, cleanup := setupTestStore(t, 2)
	defer cleanup()

	_, err := store.SearchSimilar(context.Background(), []float32{1, 0, 0}, 10, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestSearchSimilar_VectorTableUnavailable(t *testing.T) {
	store, cleanup := setupTestStore(t, 2)
	defer cleanup()

	store.vectorTable = false
	store.degradation = "vector table unavailable"

	_, err := store.SearchSimilar(context.Background(), unitQuery, 10, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrVectorSearchUnavailable)
}

// ==================== Fallback Path Tests ====================

func TestSearchSimilar_BruteForceMatchesAccelerated(t *testing.T) {
	store, cleanup := setupTestStore(t, 2)
	defer cleanup()
	ctx := context.Background()

	seedSimilarities(t, store, []float64{0.9, 0.8, 0.7, 0.6, 0.1})

	threshold := 0.75
	accelerated, err := store.SearchSimilar(ctx, unitQuery, 3, &threshold)
	require.NoError(t, err)

	store.accelerated = false
	fallback, err := store.SearchSimilar(ctx, unitQuery, 3, &threshold)
	require.NoError(t, err)

	require.Len(t, fallback, len(accelerated))
	for i := range accelerated {
		assert.Equal(t, accelerated[i].ChunkID, fallback[i].ChunkID)
		assert.InDelta(t, accelerated[i].Similarity, fallback[i].Similarity, 1e-9)
	}
}

func TestSearchSimilar_BruteForceEmptyStore(t *testing.T) {
	store, cleanup := setupTestStore(t, 2)
	defer cleanup()

	store.accelerated = false
	results, err := store.SearchSimilar(context.Background(), unitQuery, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
