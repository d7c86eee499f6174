package driving

import (
	"context"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
)

// IngestResult reports the outcome of a document ingestion.
type IngestResult struct {
	// Document is the stored (or pre-existing) document.
	Document domain.Document

	// Chunks is the number of chunks stored.
	Chunks int

	// Embedded is the number of chunks that received an embedding.
	Embedded int

	// Deduplicated is true when the content hash matched an existing
	// document and nothing new was stored.
	Deduplicated bool
}

// DocumentService manages the document lifecycle.
type DocumentService interface {
	// Ingest stores a document, chunks its content, and embeds the
	// chunks when an embedding service is configured. Identical content
	// (by hash) short-circuits to the existing document.
	Ingest(ctx context.Context, name, mediaType string, content []byte) (*IngestResult, error)

	// List returns all documents, most recent first.
	List(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document with its chunks and embeddings.
	// Unknown IDs are a no-op success.
	Delete(ctx context.Context, id string) error
}
