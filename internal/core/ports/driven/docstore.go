package driven

import (
	"context"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
// Backed by SQLite.
type DocumentStore interface {
	// InsertDocument stores a new document. Returns domain.ErrConflict
	// when the ID already exists.
	InsertDocument(ctx context.Context, doc *domain.Document) error

	// InsertChunks stores a batch of chunks in one transaction.
	// The batch is all-or-nothing: any failure rolls back every member.
	// Returns the number of chunks inserted.
	InsertChunks(ctx context.Context, chunks []domain.Chunk) (int, error)

	// GetDocuments returns all documents, most recently created first.
	GetDocuments(ctx context.Context) ([]domain.Document, error)

	// FindDocumentByHash returns the first document with the given
	// content hash, or nil when none exists.
	FindDocumentByHash(ctx context.Context, hash string) (*domain.Document, error)

	// DeleteDocument removes a document, its chunks, and their
	// embeddings in one transaction. Deleting an unknown ID is a no-op.
	DeleteDocument(ctx context.Context, id string) error
}
