package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a referenced document or chunk does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a primary-key violation: the entity already
	// exists. Surfaced, never swallowed.
	ErrConflict = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid configuration input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPermissionDenied indicates the storage location is not writable.
	// Checked before opening the store so the failure surfaces immediately
	// rather than mid-transaction.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDimensionMismatch indicates a vector's length disagrees with the
	// store's configured embedding dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrVectorSearchUnavailable indicates the vector table could not be
	// provisioned. Document and chunk storage remain fully functional;
	// only embedding insertion and similarity search are disabled.
	ErrVectorSearchUnavailable = errors.New("vector search unavailable")

	// ErrStorageTimeout indicates a storage operation exceeded its
	// per-operation deadline.
	ErrStorageTimeout = errors.New("storage timeout")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Ingestion stores chunks without vectors.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrSessionNotFound indicates an unknown or expired session ID.
	ErrSessionNotFound = errors.New("session not found")
)
