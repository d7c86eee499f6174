package domain

import "time"

// Document represents an uploaded document owned by the store.
// It is created on ingestion and removed (with its chunks and their
// embeddings) on explicit deletion.
type Document struct {
	// ID is the globally unique identifier for the document.
	ID string

	// Name is the human-readable display name (usually the filename).
	Name string

	// Type is the media type of the original upload.
	Type string

	// Size is the original upload size in bytes.
	Size int64

	// FileHash is the optional content hash used for exact-duplicate
	// lookup before re-ingesting identical content. It is not required
	// to be unique.
	FileHash string

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Chunk represents a contiguous span of a document's text.
// Chunks are the unit of embedding and retrieval. A chunk's lifetime is
// bound to its document: deleting the document deletes its chunks and
// their embeddings.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// CreatedAt is when the chunk was stored.
	CreatedAt time.Time
}
