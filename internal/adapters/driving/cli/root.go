// Package cli implements the command-line interface. Commands wire the
// core services to the storage and embedding adapters and expose the
// ingest/search/manage lifecycle.
package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docuchat-labs/docuchat/internal/adapters/driven/config/file"
	"github.com/docuchat-labs/docuchat/internal/adapters/driven/embedding/openai"
	"github.com/docuchat-labs/docuchat/internal/adapters/driven/storage/sqlite"
	"github.com/docuchat-labs/docuchat/internal/core/domain"
	"github.com/docuchat-labs/docuchat/internal/core/ports/driven"
	"github.com/docuchat-labs/docuchat/internal/core/ports/driving"
	"github.com/docuchat-labs/docuchat/internal/core/services"
	"github.com/docuchat-labs/docuchat/internal/logger"
	"github.com/docuchat-labs/docuchat/internal/normalisers"
	"github.com/docuchat-labs/docuchat/internal/normalisers/docx"
	"github.com/docuchat-labs/docuchat/internal/normalisers/eml"
	"github.com/docuchat-labs/docuchat/internal/normalisers/html"
	"github.com/docuchat-labs/docuchat/internal/normalisers/markdown"
	"github.com/docuchat-labs/docuchat/internal/normalisers/plaintext"
	"github.com/docuchat-labs/docuchat/internal/postprocessors/chunker"
)

// version is set by Execute.
var version = "dev"

// Persistent flags.
var (
	verboseFlag    bool
	dbPathFlag     string
	dimensionsFlag int
)

// Services wired by initServices. Tests may replace them directly.
var (
	store           *sqlite.Store
	configStore     *file.ConfigStore
	documentService driving.DocumentService
	searchService   driving.SearchService
)

var rootCmd = &cobra.Command{
	Use:   "docuchat",
	Short: "Document store with semantic search",
	Long: `DocuChat stores documents in an embedded SQLite database, splits
them into overlapping chunks, and embeds the chunks for cosine-similarity
retrieval. Without an embedding provider it still ingests and manages
documents; similarity search needs one.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "database file (default ~/.docuchat/data/docuchat.db)")
	rootCmd.PersistentFlags().IntVar(&dimensionsFlag, "dimensions", 0, "embedding dimensions (default from config, then 384)")
}

// Execute runs the CLI with the given version string.
func Execute(v string) error {
	version = v
	return rootCmd.Execute()
}

// initServices opens the store and wires the services. Commands that
// need no store (version, help) skip it.
func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verboseFlag)

	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}

	var err error
	configStore, err = file.NewConfigStore("")
	if err != nil {
		return err
	}
	overrides := configStore.Overrides()

	dims := dimensionsFlag
	if dims <= 0 && overrides.EmbeddingDimensions != nil {
		dims = *overrides.EmbeddingDimensions
	}

	dbPath := dbPathFlag
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dbPath = filepath.Join(home, ".docuchat", "data", "docuchat.db")
	}

	var storeOpts []sqlite.Option
	if overrides.SimilarityThreshold != nil {
		storeOpts = append(storeOpts, sqlite.WithDefaultThreshold(*overrides.SimilarityThreshold))
	}
	store, err = sqlite.Open(dbPath, dims, storeOpts...)
	if err != nil {
		return err
	}
	if info := store.Info(); info.Degradation != "" {
		logger.Info("store degraded: %s", info.Degradation)
	}

	embedder := buildEmbedder(overrides)

	splitter := buildSplitter(overrides, store.Dimensions())
	docSvc := services.NewDocumentService(store, store, embedder, splitter)
	docSvc.SetNormalisers(buildNormalisers())
	if overrides.MaxFileSize != nil {
		docSvc.SetMaxFileSize(*overrides.MaxFileSize)
	}
	documentService = docSvc

	searchSvc := services.NewSearchService(store, embedder)
	if overrides.DeepSearchEnabled != nil || overrides.DeepSearchInitialThreshold != nil {
		enabled := true
		if overrides.DeepSearchEnabled != nil {
			enabled = *overrides.DeepSearchEnabled
		}
		threshold := 0.0
		if overrides.DeepSearchInitialThreshold != nil {
			threshold = *overrides.DeepSearchInitialThreshold
		}
		searchSvc.ConfigureDeepSearch(enabled, threshold)
	}
	searchService = searchSvc

	return nil
}

// buildEmbedder creates the embedding client when a key is configured.
// Returns a nil interface otherwise; the services treat a nil embedder
// as "store without vectors".
func buildEmbedder(o domain.SessionOverrides) driven.EmbeddingService {
	apiKey := o.RAGAPIKey
	if apiKey == "" {
		apiKey = o.OpenAIAPIKey
	}
	if apiKey == "" {
		logger.Info("no API key configured, ingesting without embeddings")
		return nil
	}

	embedder, err := openai.NewEmbeddingService(openai.Config{
		APIKey:     apiKey,
		BaseURL:    o.RAGBaseURL,
		Model:      o.RAGModel,
		Dimensions: store.Dimensions(),
	})
	if err != nil {
		logger.Warn("embedding client unavailable: %v", err)
		return nil
	}
	return embedder
}

// buildNormalisers registers the text extractors for the supported
// document formats. Plain text is the fallback for unknown types.
func buildNormalisers() *normalisers.Registry {
	reg := normalisers.NewRegistry()
	reg.Register(plaintext.New())
	reg.Register(markdown.New())
	reg.Register(html.New())
	reg.Register(docx.New())
	reg.Register(eml.New())
	return reg
}

// buildSplitter derives chunking from explicit overrides, falling back
// to the dimension breakpoints.
func buildSplitter(o domain.SessionOverrides, dims int) *chunker.Splitter {
	cfg := domain.SessionConfig{}
	if o.ChunkSize != nil {
		cfg.ChunkSize = *o.ChunkSize
	}
	cfg = cfg.WithDimensions(dims)
	if o.ChunkOverlap != nil {
		cfg.ChunkOverlap = *o.ChunkOverlap
	}
	return chunker.New(chunker.FromConfig(cfg)...)
}
