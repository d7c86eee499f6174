package driving

import (
	"context"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
)

// SearchOptions configures a similarity query.
type SearchOptions struct {
	// Limit caps the number of ranked candidates considered.
	Limit int

	// ThresholdOverride replaces the session similarity threshold
	// for this query when non-nil.
	ThresholdOverride *float64
}

// SearchService provides ranked similarity retrieval to external actors.
type SearchService interface {
	// Search embeds the query text and returns chunks ranked by
	// cosine similarity.
	Search(ctx context.Context, query string, opts SearchOptions) ([]domain.SearchResult, error)

	// SearchVector runs a similarity query with a caller-supplied
	// embedding vector.
	SearchVector(ctx context.Context, vector []float32, opts SearchOptions) ([]domain.SearchResult, error)
}
