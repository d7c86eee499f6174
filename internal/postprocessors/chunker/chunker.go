// Package chunker provides fixed-size text chunking with overlap.
package chunker

import (
	"github.com/google/uuid"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Splitter splits document text into fixed-size overlapping chunks.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// FromConfig derives splitter options from a resolved session
// configuration. Unset fields keep the package defaults.
func FromConfig(cfg domain.SessionConfig) []Option {
	var opts []Option
	if cfg.ChunkSize > 0 {
		opts = append(opts, WithChunkSize(cfg.ChunkSize))
	}
	if cfg.ChunkOverlap >= 0 {
		opts = append(opts, WithOverlap(cfg.ChunkOverlap))
	}
	return opts
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// ChunkSize returns the effective chunk size in characters.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the effective overlap in characters.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split breaks content into chunks belonging to documentID. Each chunk
// gets a fresh UUID. Empty content produces no chunks.
func (s *Splitter) Split(documentID, content string) []domain.Chunk {
	if content == "" {
		return nil
	}

	contentLen := len(content)

	estimated := (contentLen / (s.chunkSize - s.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	start := 0
	for start < contentLen {
		end := start + s.chunkSize
		if end > contentLen {
			end = contentLen
		}

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Content:    content[start:end],
		})

		// The last chunk reached the end; another stride would only
		// re-emit a tail already covered by this one.
		if end == contentLen {
			break
		}

		start += s.chunkSize - s.overlap
	}

	return chunks
}
