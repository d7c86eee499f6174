package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
	"github.com/docuchat-labs/docuchat/internal/core/ports/driven"
)

// Ensure VectorStore implements the interfaces.
var (
	_ driven.VectorStore  = (*VectorStore)(nil)
	_ driven.SearchEngine = (*VectorStore)(nil)
)

// VectorStore is an in-memory implementation of the vector ports. It
// shares the chunk space of a DocumentStore so search results carry
// chunk content.
type VectorStore struct {
	mu        sync.RWMutex
	docs      *DocumentStore
	vectors   map[string][]float32
	dims      int
	threshold float64
}

// NewVectorStore creates an in-memory vector store over docs.
func NewVectorStore(docs *DocumentStore, dims int) *VectorStore {
	return &VectorStore{
		docs:      docs,
		vectors:   make(map[string][]float32),
		dims:      dims,
		threshold: domain.DefaultSimilarityThreshold,
	}
}

// SetDefaultThreshold overrides the threshold used when a query carries
// no override.
func (s *VectorStore) SetDefaultThreshold(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threshold = v
}

// InsertEmbedding stores the vector for a chunk.
func (s *VectorStore) InsertEmbedding(_ context.Context, chunkID string, vector []float32) error {
	if len(vector) != s.dims {
		return fmt.Errorf("%w: got %d, store configured for %d",
			domain.ErrDimensionMismatch, len(vector), s.dims)
	}

	if _, ok := s.docs.Chunk(chunkID); !ok {
		return fmt.Errorf("chunk %s: %w", chunkID, domain.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vectors[chunkID]; ok {
		return fmt.Errorf("embedding for chunk %s: %w", chunkID, domain.ErrConflict)
	}
	s.vectors[chunkID] = vector
	return nil
}

// SearchSimilar ranks all stored vectors against the query, truncates to
// limit, then filters by threshold.
func (s *VectorStore) SearchSimilar(_ context.Context, query []float32, limit int, thresholdOverride *float64) ([]domain.SearchResult, error) {
	if len(query) != s.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, store configured for %d",
			domain.ErrDimensionMismatch, len(query), s.dims)
	}
	if limit <= 0 {
		return []domain.SearchResult{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	threshold := s.threshold
	if thresholdOverride != nil {
		threshold = *thresholdOverride
	}

	var candidates []domain.SearchResult
	for chunkID, vec := range s.vectors {
		chunk, ok := s.docs.Chunk(chunkID)
		if !ok {
			continue
		}
		candidates = append(candidates, domain.SearchResult{
			ChunkID:    chunkID,
			Content:    chunk.Content,
			DocumentID: chunk.DocumentID,
			Similarity: cosine(vec, query),
			Embedding:  vec,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := []domain.SearchResult{}
	for _, r := range candidates {
		if r.Similarity >= threshold {
			results = append(results, r)
		}
	}
	return results, nil
}

// EmbeddingCount returns the number of stored vectors.
func (s *VectorStore) EmbeddingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		normA += va * va
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
