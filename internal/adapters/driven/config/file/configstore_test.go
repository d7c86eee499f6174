package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestConfigStore_EmptyOverrides(t *testing.T) {
	store := newTestStore(t)

	o := store.Overrides()
	assert.Empty(t, o.OpenAIAPIKey)
	assert.Nil(t, o.ChunkSize)
	assert.Nil(t, o.DeepSearchEnabled)
}

func TestConfigStore_SetAPIKey_Persists(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.SetAPIKey("sk-secret"))

	// A fresh store must see the persisted value.
	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", reloaded.Overrides().OpenAIAPIKey)
}

func TestConfigStore_SetEmbedding(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.SetEmbedding("http://localhost:11434/v1", "nomic-embed-text", "key"))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	o := reloaded.Overrides()
	assert.Equal(t, "http://localhost:11434/v1", o.RAGBaseURL)
	assert.Equal(t, "nomic-embed-text", o.RAGModel)
	assert.Equal(t, "key", o.RAGAPIKey)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission bits may not be meaningful")
	}

	store := newTestStore(t)
	require.NoError(t, store.SetAPIKey("sk-secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_LoadStructuredFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[openai]
api_key = "sk-from-file"

[embedding]
model = "text-embedding-3-small"
dimensions = 384

[chunking]
size = 500
overlap = 100

[search]
deep_search_enabled = false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	o := store.Overrides()
	assert.Equal(t, "sk-from-file", o.OpenAIAPIKey)
	assert.Equal(t, "text-embedding-3-small", o.RAGModel)
	require.NotNil(t, o.EmbeddingDimensions)
	assert.Equal(t, 384, *o.EmbeddingDimensions)
	require.NotNil(t, o.ChunkSize)
	assert.Equal(t, 500, *o.ChunkSize)
	require.NotNil(t, o.ChunkOverlap)
	assert.Equal(t, 100, *o.ChunkOverlap)
	require.NotNil(t, o.DeepSearchEnabled)
	assert.False(t, *o.DeepSearchEnabled)
}

func TestConfigStore_LoadInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not [valid"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_SetUploadDirectory(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetUploadDirectory("/tmp/uploads"))
	assert.Equal(t, "/tmp/uploads", store.Overrides().UploadDirectory)
}
