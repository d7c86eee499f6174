// Package sqlite provides the SQLite-backed implementation of the
// DocuChat store: document/chunk persistence, embedding storage, and
// similarity search.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The baseline schema (documents, chunks) is managed through versioned
// migrations stored in the migrations/ directory. The vector table
// (vss_embeddings) is provisioned separately because its width depends on
// the embedding dimensionality chosen at open time. Vector provisioning
// is fail-open: any failure is logged and recorded as a degradation, and
// document/chunk storage remains fully functional.
//
// # Vector acceleration
//
// Cosine ranking normally runs inside SQLite through a registered
// vec_cosine_similarity scalar function. When registration fails the
// engine falls back to ranking the stored blobs in Go - correct, just
// slower.
//
// # Concurrency
//
// The database runs in WAL mode so readers are never blocked by a
// writer. Every logical operation acquires its own short-lived
// connection and releases it on all exit paths; no connection spans
// multiple operations.
package sqlite
