package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat-labs/docuchat/internal/adapters/driven/config/file"
	"github.com/docuchat-labs/docuchat/internal/adapters/driven/storage/memory"
	"github.com/docuchat-labs/docuchat/internal/core/domain"
	"github.com/docuchat-labs/docuchat/internal/core/services"
	"github.com/docuchat-labs/docuchat/internal/postprocessors/chunker"
)

// fixedEmbedder returns the same unit vector for every text, so every
// stored chunk matches every query exactly.
type fixedEmbedder struct{}

func (fixedEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (fixedEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{1, 0}
	}
	return vecs, nil
}

func (fixedEmbedder) Dimensions() int   { return 2 }
func (fixedEmbedder) ModelName() string { return "fixed" }

// setupTestServices wires memory-backed services and disables the real
// initialisation while the returned cleanup is pending.
func setupTestServices(t *testing.T) (*memory.DocumentStore, func()) {
	t.Helper()

	docs := memory.NewDocumentStore()
	vectors := memory.NewVectorStore(docs, 2)

	prevPreRun := rootCmd.PersistentPreRunE
	prevDoc := documentService
	prevSearch := searchService

	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error { return nil }
	documentService = services.NewDocumentService(docs, vectors, fixedEmbedder{},
		chunker.New(chunker.WithChunkSize(100), chunker.WithOverlap(20)))
	searchService = services.NewSearchService(vectors, fixedEmbedder{})

	return docs, func() {
		rootCmd.PersistentPreRunE = prevPreRun
		documentService = prevDoc
		searchService = prevSearch
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// ==================== Version ====================

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := executeCommand(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, out, "docuchat version test-version-1.0.0")
}

// ==================== Search ====================

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := executeCommand(t, "search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
}

func TestSearchCmd_NoResults(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := executeCommand(t, "search", "anything")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_FindsIngestedContent(t *testing.T) {
	docs, cleanup := setupTestServices(t)
	defer cleanup()

	result, err := documentService.Ingest(context.Background(),
		"notes.txt", "text/plain", []byte("the capital of France is Paris"))
	require.NoError(t, err)
	require.Equal(t, 1, result.Embedded)

	out, err := executeCommand(t, "search", "capital of France")
	require.NoError(t, err)
	assert.Contains(t, out, result.Document.ID)
	assert.Contains(t, out, "the capital of France is Paris")

	listed, err := docs.GetDocuments(context.Background())
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

// ==================== Documents ====================

func TestDocumentListCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := executeCommand(t, "documents", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No documents stored.")
}

func TestDocumentDeleteCmd(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	result, err := documentService.Ingest(context.Background(),
		"notes.txt", "text/plain", []byte("to be deleted"))
	require.NoError(t, err)

	out, err := executeCommand(t, "documents", "delete", result.Document.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted "+result.Document.ID)

	listed, err := documentService.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listed)
}

// ==================== Ingest ====================

func TestIngestCmd_RequiresArgs(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := executeCommand(t, "ingest")
	assert.Error(t, err)
}

// ==================== Settings ====================

func TestSettingsUploadCmd(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	cs, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	prevConfig := configStore
	configStore = cs
	defer func() { configStore = prevConfig }()

	out, err := executeCommand(t, "settings", "upload", "/tmp/drop")
	require.NoError(t, err)
	assert.Contains(t, out, "Upload directory set to /tmp/drop")
	assert.Equal(t, "/tmp/drop", cs.Overrides().UploadDirectory)
}

// ==================== Helpers ====================

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet("short", 10))
	assert.Equal(t, "0123456789...", snippet("0123456789abcdef", 10))
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk-a...wxyz", maskAPIKey("sk-abcdefghijklmnopqrstuvwxyz"))
}

func TestVectorStatus(t *testing.T) {
	assert.Equal(t, "unavailable", vectorStatus(false, false))
	assert.Equal(t, "available (ranking in Go)", vectorStatus(true, false))
	assert.Equal(t, "available (accelerated)", vectorStatus(true, true))
}

func TestBuildSplitter(t *testing.T) {
	s := buildSplitter(domain.SessionOverrides{}, 768)
	assert.Equal(t, 768, s.ChunkSize())
	assert.Equal(t, 153, s.Overlap())

	size := 500
	s = buildSplitter(domain.SessionOverrides{ChunkSize: &size}, 768)
	assert.Equal(t, 500, s.ChunkSize())
	assert.Equal(t, 100, s.Overlap())
}
