package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
	"github.com/docuchat-labs/docuchat/internal/core/ports/driven"
	"github.com/docuchat-labs/docuchat/internal/core/ports/driving"
	"github.com/docuchat-labs/docuchat/internal/logger"
	"github.com/docuchat-labs/docuchat/internal/postprocessors/chunker"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages the ingest/list/delete lifecycle.
type DocumentService struct {
	docStore         driven.DocumentStore
	vectorStore      driven.VectorStore
	embeddingService driven.EmbeddingService
	splitter         *chunker.Splitter
	normalisers      driven.NormaliserRegistry
	maxFileSize      int64
}

// NewDocumentService creates a new document service.
// vectorStore and embeddingService are optional (can be nil): without
// them documents are chunked and stored but never embedded.
func NewDocumentService(
	docStore driven.DocumentStore,
	vectorStore driven.VectorStore,
	embeddingService driven.EmbeddingService,
	splitter *chunker.Splitter,
) *DocumentService {
	if splitter == nil {
		splitter = chunker.New()
	}
	return &DocumentService{
		docStore:         docStore,
		vectorStore:      vectorStore,
		embeddingService: embeddingService,
		splitter:         splitter,
		maxFileSize:      domain.DefaultMaxFileSize,
	}
}

// SetNormalisers installs a text-extraction registry. Without one,
// content is chunked verbatim.
func (s *DocumentService) SetNormalisers(registry driven.NormaliserRegistry) {
	s.normalisers = registry
}

// SetMaxFileSize overrides the upload size limit.
func (s *DocumentService) SetMaxFileSize(limit int64) {
	if limit > 0 {
		s.maxFileSize = limit
	}
}

// Ingest stores a document, chunks its content, and embeds the chunks
// when an embedding service is configured. Content that hashes to an
// already-stored document short-circuits without writing anything.
func (s *DocumentService) Ingest(ctx context.Context, name, mediaType string, content []byte) (*driving.IngestResult, error) {
	logger.Section("Document Ingestion")
	logger.Debug("Name: %q, type: %s, size: %d bytes", name, mediaType, len(content))

	if name == "" {
		return nil, fmt.Errorf("%w: document name is required", domain.ErrInvalidInput)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: document content is empty", domain.ErrInvalidInput)
	}
	if int64(len(content)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: document exceeds %d byte limit", domain.ErrInvalidInput, s.maxFileSize)
	}

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	existing, err := s.docStore.FindDocumentByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("checking for duplicate: %w", err)
	}
	if existing != nil {
		logger.Info("Content already ingested as document %s", existing.ID)
		return &driving.IngestResult{Document: *existing, Deduplicated: true}, nil
	}

	// The hash covers the raw bytes; extraction happens after dedupe so
	// re-uploading an identical file never re-normalises it.
	text := string(content)
	if s.normalisers != nil {
		text, err = s.normalisers.Normalise(ctx, mediaType, content)
		if err != nil {
			return nil, fmt.Errorf("extracting text: %w", err)
		}
	}

	doc := domain.Document{
		ID:       uuid.New().String(),
		Name:     name,
		Type:     mediaType,
		Size:     int64(len(content)),
		FileHash: hash,
	}
	if err := s.docStore.InsertDocument(ctx, &doc); err != nil {
		return nil, fmt.Errorf("storing document: %w", err)
	}

	chunks := s.splitter.Split(doc.ID, text)
	stored, err := s.docStore.InsertChunks(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("storing chunks: %w", err)
	}
	logger.Debug("Stored %d chunks", stored)

	embedded := 0
	if s.embeddingService != nil && s.vectorStore != nil && len(chunks) > 0 {
		embedded, err = s.embedChunks(ctx, chunks)
		if err != nil {
			// The document and chunks are already durable; embedding
			// failure leaves them searchable by future re-embedding
			// rather than failing the whole ingestion.
			logger.Warn("embedding failed for document %s: %v", doc.ID, err)
		}
	}

	return &driving.IngestResult{
		Document: doc,
		Chunks:   stored,
		Embedded: embedded,
	}, nil
}

// embedChunks generates and stores embeddings for all chunks in one
// batch. Returns the number of embeddings stored.
func (s *DocumentService) embedChunks(ctx context.Context, chunks []domain.Chunk) (int, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := s.embeddingService.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("expected %d embeddings, got %d", len(chunks), len(vectors))
	}

	stored := 0
	for i, vec := range vectors {
		if err := s.vectorStore.InsertEmbedding(ctx, chunks[i].ID, vec); err != nil {
			if errors.Is(err, domain.ErrVectorSearchUnavailable) {
				return stored, err
			}
			return stored, fmt.Errorf("storing embedding for chunk %s: %w", chunks[i].ID, err)
		}
		stored++
	}
	return stored, nil
}

// List returns all documents, most recent first.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.GetDocuments(ctx)
}

// Delete removes a document with its chunks and embeddings.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	return s.docStore.DeleteDocument(ctx, id)
}
