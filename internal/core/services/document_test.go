package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat-labs/docuchat/internal/adapters/driven/storage/memory"
	"github.com/docuchat-labs/docuchat/internal/core/domain"
	"github.com/docuchat-labs/docuchat/internal/normalisers"
	"github.com/docuchat-labs/docuchat/internal/normalisers/docx"
	"github.com/docuchat-labs/docuchat/internal/normalisers/markdown"
	"github.com/docuchat-labs/docuchat/internal/normalisers/plaintext"
	"github.com/docuchat-labs/docuchat/internal/postprocessors/chunker"
)

// stubEmbedder produces deterministic unit vectors for tests.
type stubEmbedder struct {
	dims int
	err  error
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, e.dims)
		vec[0] = 1 // every text embeds to the same unit vector
		vecs[i] = vec
	}
	return vecs, nil
}

func (e *stubEmbedder) Dimensions() int   { return e.dims }
func (e *stubEmbedder) ModelName() string { return "stub" }

func newTestDocumentService(t *testing.T) (*DocumentService, *memory.DocumentStore, *memory.VectorStore) {
	t.Helper()
	docs := memory.NewDocumentStore()
	vectors := memory.NewVectorStore(docs, 2)
	svc := NewDocumentService(docs, vectors, &stubEmbedder{dims: 2},
		chunker.New(chunker.WithChunkSize(50), chunker.WithOverlap(10)))
	return svc, docs, vectors
}

func TestDocumentService_Ingest(t *testing.T) {
	svc, docs, vectors := newTestDocumentService(t)
	ctx := context.Background()

	result, err := svc.Ingest(ctx, "notes.txt", "text/plain", []byte("some interesting document content"))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.False(t, result.Deduplicated)
	assert.Equal(t, "notes.txt", result.Document.Name)
	assert.NotEmpty(t, result.Document.ID)
	assert.NotEmpty(t, result.Document.FileHash)
	assert.Equal(t, 1, result.Chunks)
	assert.Equal(t, 1, result.Embedded)
	assert.Equal(t, 1, vectors.EmbeddingCount())

	listed, err := docs.GetDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestDocumentService_Ingest_MultipleChunks(t *testing.T) {
	svc, docs, _ := newTestDocumentService(t)
	ctx := context.Background()

	content := make([]byte, 200)
	for i := range content {
		content[i] = byte('a' + i%26)
	}

	result, err := svc.Ingest(ctx, "big.txt", "text/plain", content)
	require.NoError(t, err)
	assert.Greater(t, result.Chunks, 1)
	assert.Equal(t, result.Chunks, result.Embedded)
	assert.Equal(t, result.Chunks, docs.ChunkCount())
}

func TestDocumentService_Ingest_Deduplicates(t *testing.T) {
	svc, _, _ := newTestDocumentService(t)
	ctx := context.Background()

	content := []byte("identical content")
	first, err := svc.Ingest(ctx, "a.txt", "text/plain", content)
	require.NoError(t, err)

	second, err := svc.Ingest(ctx, "b.txt", "text/plain", content)
	require.NoError(t, err)

	assert.True(t, second.Deduplicated)
	assert.Equal(t, first.Document.ID, second.Document.ID)
	assert.Zero(t, second.Chunks)

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestDocumentService_Ingest_Validation(t *testing.T) {
	svc, _, _ := newTestDocumentService(t)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "", "text/plain", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Ingest(ctx, "a.txt", "text/plain", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	svc.SetMaxFileSize(4)
	_, err = svc.Ingest(ctx, "a.txt", "text/plain", []byte("too large"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentService_Ingest_WithoutEmbedder(t *testing.T) {
	docs := memory.NewDocumentStore()
	svc := NewDocumentService(docs, nil, nil, nil)
	ctx := context.Background()

	result, err := svc.Ingest(ctx, "plain.txt", "text/plain", []byte("content without vectors"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Chunks)
	assert.Zero(t, result.Embedded)
}

func TestDocumentService_Ingest_EmbeddingFailureIsNotFatal(t *testing.T) {
	docs := memory.NewDocumentStore()
	vectors := memory.NewVectorStore(docs, 2)
	svc := NewDocumentService(docs, vectors, &stubEmbedder{dims: 2, err: errors.New("provider down")}, nil)
	ctx := context.Background()

	result, err := svc.Ingest(ctx, "notes.txt", "text/plain", []byte("content"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Chunks)
	assert.Zero(t, result.Embedded)
}

func TestDocumentService_Ingest_ExtractsTextBeforeChunking(t *testing.T) {
	svc, docs, _ := newTestDocumentService(t)
	ctx := context.Background()

	reg := normalisers.NewRegistry()
	reg.Register(plaintext.New())
	reg.Register(markdown.New())
	svc.SetNormalisers(reg)

	result, err := svc.Ingest(ctx, "readme.md", "text/markdown", []byte("# Title\n\nBody text"))
	require.NoError(t, err)
	require.Equal(t, 1, result.Chunks)

	listed, err := docs.GetDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	chunks := docs.ChunksFor(result.Document.ID)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Title\n\nBody text", chunks[0].Content)
}

func TestDocumentService_Ingest_ExtractionFailureFails(t *testing.T) {
	svc, _, _ := newTestDocumentService(t)

	reg := normalisers.NewRegistry()
	reg.Register(docx.New())
	svc.SetNormalisers(reg)

	_, err := svc.Ingest(context.Background(), "broken.docx",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		[]byte("not really a docx"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentService_Delete(t *testing.T) {
	svc, docs, _ := newTestDocumentService(t)
	ctx := context.Background()

	result, err := svc.Ingest(ctx, "notes.txt", "text/plain", []byte("delete me"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, result.Document.ID))
	assert.Equal(t, 0, docs.ChunkCount())

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestDocumentService_Delete_RequiresID(t *testing.T) {
	svc, _, _ := newTestDocumentService(t)
	err := svc.Delete(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
