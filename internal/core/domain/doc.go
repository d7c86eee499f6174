// Package domain defines the core business entities for DocuChat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded document and its metadata
//   - Chunk: A contiguous span of document text, the unit of embedding
//   - SearchResult: A ranked similarity hit
//   - SessionConfig: The resolved per-session configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
