// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: Document and chunk persistence
//   - ConfigStore: Persisted session-config overrides
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - VectorStore: Embedding persistence. Unavailable when the store's
//     vector table could not be provisioned.
//   - SearchEngine: Similarity search over stored embeddings.
//   - EmbeddingService: Generates vector embeddings. Without it, chunks
//     are stored without vectors and similarity search is disabled.
//   - NormaliserRegistry: Extracts plain text per media type before
//     chunking. Without it, content is ingested verbatim.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
