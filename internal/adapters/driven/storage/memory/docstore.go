// Package memory provides in-memory implementations of the storage
// ports, used as test doubles and for ephemeral sessions.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
	"github.com/docuchat-labs/docuchat/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string]domain.Chunk
	order     []string // document insertion order, for stable listing
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string]domain.Chunk),
	}
}

// InsertDocument stores a new document.
func (s *DocumentStore) InsertDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[doc.ID]; ok {
		return domain.ErrConflict
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	s.documents[doc.ID] = *doc
	s.order = append(s.order, doc.ID)
	return nil
}

// InsertChunks stores a batch of chunks. The batch is all-or-nothing.
func (s *DocumentStore) InsertChunks(_ context.Context, chunks []domain.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chunks {
		if _, ok := s.documents[c.DocumentID]; !ok {
			return 0, domain.ErrNotFound
		}
		if _, ok := s.chunks[c.ID]; ok {
			return 0, domain.ErrConflict
		}
	}
	for _, c := range chunks {
		s.chunks[c.ID] = c
	}
	return len(chunks), nil
}

// GetDocuments returns all documents, most recent first.
func (s *DocumentStore) GetDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.documents))
	// Walk insertion order backwards so equal timestamps keep
	// newest-inserted-first, matching the persistent store.
	for i := len(s.order) - 1; i >= 0; i-- {
		if doc, ok := s.documents[s.order[i]]; ok {
			docs = append(docs, doc)
		}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// FindDocumentByHash returns the first document with the given hash, or
// nil when no document matches.
func (s *DocumentStore) FindDocumentByHash(_ context.Context, hash string) (*domain.Document, error) {
	if hash == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		doc, ok := s.documents[id]
		if ok && doc.FileHash == hash {
			return &doc, nil
		}
	}
	return nil, nil
}

// DeleteDocument removes a document and its chunks. Unknown IDs are a
// no-op.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, id)
	for chunkID, c := range s.chunks {
		if c.DocumentID == id {
			delete(s.chunks, chunkID)
		}
	}
	return nil
}

// Chunk returns a stored chunk by ID, for assertions in tests.
func (s *DocumentStore) Chunk(id string) (domain.Chunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chunks[id]
	return c, ok
}

// ChunksFor returns the chunks of a document, for assertions in tests.
func (s *DocumentStore) ChunksFor(docID string) []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var chunks []domain.Chunk
	for _, c := range s.chunks {
		if c.DocumentID == docID {
			chunks = append(chunks, c)
		}
	}
	return chunks
}

// ChunkCount returns the number of stored chunks.
func (s *DocumentStore) ChunkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}
