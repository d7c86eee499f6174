package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
	"github.com/docuchat-labs/docuchat/internal/core/ports/driven"
	"github.com/docuchat-labs/docuchat/internal/core/ports/driving"
	"github.com/docuchat-labs/docuchat/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// DefaultSearchLimit is applied when the caller does not set one.
const DefaultSearchLimit = 5

// SearchService provides similarity retrieval over stored embeddings.
type SearchService struct {
	searchEngine     driven.SearchEngine
	embeddingService driven.EmbeddingService

	deepSearchEnabled   bool
	deepSearchThreshold float64
}

// NewSearchService creates a new search service. The embeddingService is
// optional: without it only SearchVector is available.
func NewSearchService(
	searchEngine driven.SearchEngine,
	embeddingService driven.EmbeddingService,
) *SearchService {
	return &SearchService{
		searchEngine:        searchEngine,
		embeddingService:    embeddingService,
		deepSearchEnabled:   true,
		deepSearchThreshold: domain.DefaultDeepSearchInitialThreshold,
	}
}

// ConfigureDeepSearch sets the relaxed-threshold retry behaviour.
func (s *SearchService) ConfigureDeepSearch(enabled bool, threshold float64) {
	s.deepSearchEnabled = enabled
	if threshold != 0 {
		s.deepSearchThreshold = threshold
	}
}

// Search embeds the query text and returns chunks ranked by cosine
// similarity. When the strict query comes back empty and deep search is
// enabled, it retries once with the relaxed threshold.
func (s *SearchService) Search(ctx context.Context, query string, opts driving.SearchOptions) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	if s.embeddingService == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrEmbeddingUnavailable)
	}

	vector, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	return s.SearchVector(ctx, vector, opts)
}

// SearchVector runs a similarity query with a caller-supplied vector.
func (s *SearchService) SearchVector(ctx context.Context, vector []float32, opts driving.SearchOptions) ([]domain.SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	logger.Debug("Limit: %d", limit)

	results, err := s.searchEngine.SearchSimilar(ctx, vector, limit, opts.ThresholdOverride)
	if err != nil {
		return nil, err
	}

	// Deep search: one relaxed retry when the strict pass finds nothing.
	// An explicit override disables it; the caller asked for exactly
	// that threshold.
	if len(results) == 0 && s.deepSearchEnabled && opts.ThresholdOverride == nil {
		logger.Info("No results above default threshold, retrying at %.2f", s.deepSearchThreshold)
		relaxed := s.deepSearchThreshold
		results, err = s.searchEngine.SearchSimilar(ctx, vector, limit, &relaxed)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("Returning %d results", len(results))
	return results, nil
}
