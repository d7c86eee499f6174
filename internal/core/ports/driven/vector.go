package driven

import (
	"context"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
)

// VectorStore persists embedding vectors keyed by chunk.
// Vectors are stored as fixed-width little-endian float32 sequences;
// the width is implied by the store's configured dimensionality.
type VectorStore interface {
	// InsertEmbedding stores the vector for a chunk. Returns
	// domain.ErrNotFound when the chunk does not exist and
	// domain.ErrDimensionMismatch when the vector length disagrees
	// with the configured width.
	InsertEmbedding(ctx context.Context, chunkID string, vector []float32) error
}

// SearchEngine performs ranked nearest-neighbour retrieval.
type SearchEngine interface {
	// SearchSimilar ranks all stored embeddings by cosine similarity
	// against the query, truncates to the top limit candidates, then
	// filters the truncated set by threshold (override when non-nil,
	// session default otherwise). An empty store or limit <= 0 yields
	// an empty result, not an error.
	SearchSimilar(ctx context.Context, query []float32, limit int, thresholdOverride *float64) ([]domain.SearchResult, error)
}
