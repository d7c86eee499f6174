package domain

// SearchResult represents a single similarity hit.
type SearchResult struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Content is the chunk text.
	Content string

	// DocumentID is the owning document.
	DocumentID string

	// Similarity is the cosine similarity score against the query vector.
	Similarity float64

	// Embedding is the stored vector, returned for caller-side
	// reranking and debugging.
	Embedding []float32
}
