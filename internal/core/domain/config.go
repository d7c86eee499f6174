package domain

import "fmt"

// Static configuration defaults. These are independent of embedding
// dimensionality and applied during the first resolution pass.
const (
	// DefaultOpenAIBaseURL is the chat provider endpoint.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// DefaultOpenAIModel is the chat model.
	DefaultOpenAIModel = "gpt-3.5-turbo"

	// DefaultRAGBaseURL is the embedding provider endpoint.
	DefaultRAGBaseURL = "https://api.openai.com/v1"

	// DefaultRAGModel is the embedding model.
	DefaultRAGModel = "text-embedding-3-small"

	// DefaultSimilarityThreshold is the minimum similarity for search hits.
	DefaultSimilarityThreshold = 0.5

	// DefaultContextMaxLength is the maximum context window in characters.
	DefaultContextMaxLength = 4096

	// DefaultDeepSearchInitialThreshold is the relaxed threshold used when
	// deep search retries an empty result set.
	DefaultDeepSearchInitialThreshold = 0.3

	// DefaultMaxFileSize is the upload size limit (10 MiB).
	DefaultMaxFileSize = 10 * 1024 * 1024

	// DefaultUploadDirectory is where uploads are staged.
	DefaultUploadDirectory = "./uploads"
)

// SessionOverrides carries caller-supplied configuration. A nil pointer
// (or empty string) means "not provided, use the default".
type SessionOverrides struct {
	// EmbeddingDimensions is the embedding vector width, when known
	// at session creation.
	EmbeddingDimensions *int

	// OpenAIAPIKey is the chat provider key. Required.
	OpenAIAPIKey string

	// OpenAIBaseURL overrides the chat provider endpoint.
	OpenAIBaseURL string

	// OpenAIModel overrides the chat model.
	OpenAIModel string

	// RAGAPIKey overrides the embedding provider key. Defaults to
	// OpenAIAPIKey when absent.
	RAGAPIKey string

	// RAGBaseURL overrides the embedding provider endpoint.
	RAGBaseURL string

	// RAGModel overrides the embedding model.
	RAGModel string

	// ChunkSize overrides the dimension-derived chunk size.
	ChunkSize *int

	// ChunkOverlap overrides the derived chunk overlap.
	ChunkOverlap *int

	// SimilarityThreshold overrides the search threshold.
	SimilarityThreshold *float64

	// ContextMaxLength overrides the context window.
	ContextMaxLength *int

	// DeepSearchEnabled toggles the relaxed-threshold retry.
	DeepSearchEnabled *bool

	// DeepSearchInitialThreshold overrides the relaxed threshold.
	DeepSearchInitialThreshold *float64

	// MaxFileSize overrides the upload size limit.
	MaxFileSize *int64

	// UploadDirectory overrides the upload staging directory.
	UploadDirectory string
}

// SessionConfig is the complete, internally consistent configuration for
// a session. It is resolved exactly once at session creation and treated
// as immutable afterwards; re-deriving it later must not silently change
// a running session's chunking behaviour.
type SessionConfig struct {
	// EmbeddingDimensions is the embedding vector width.
	// Zero when unknown at resolution time.
	EmbeddingDimensions int

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	RAGAPIKey  string
	RAGBaseURL string
	RAGModel   string

	// ChunkSize is the chunking window in characters.
	// Zero until dimensionality is known.
	ChunkSize int

	// ChunkOverlap is the overlap between consecutive chunks.
	// Zero until ChunkSize is known.
	ChunkOverlap int

	SimilarityThreshold        float64
	ContextMaxLength           int
	DeepSearchEnabled          bool
	DeepSearchInitialThreshold float64
	MaxFileSize                int64
	UploadDirectory            string
}

// ChunkSizeForDimensions derives the chunk size from embedding
// dimensionality using fixed breakpoints.
func ChunkSizeForDimensions(dims int) int {
	switch {
	case dims >= 1024:
		return 1000
	case dims >= 768:
		return 768
	case dims >= 512:
		return 512
	default:
		return 384
	}
}

// ResolveSessionConfig produces a complete configuration from
// caller-supplied overrides.
//
// Resolution is two-pass: dimension-independent defaults are filled
// first, then the dimension-dependent fields (RAG key fallback, chunk
// size breakpoints, 20% overlap). When dimensionality is unknown the
// chunking fields stay unset, to be completed via WithDimensions once
// the store reports its effective width.
func ResolveSessionConfig(o SessionOverrides) (SessionConfig, error) {
	if err := validateOverrides(o); err != nil {
		return SessionConfig{}, err
	}

	// Pass 1: dimension-independent defaults.
	cfg := SessionConfig{
		OpenAIAPIKey:               o.OpenAIAPIKey,
		OpenAIBaseURL:              stringOr(o.OpenAIBaseURL, DefaultOpenAIBaseURL),
		OpenAIModel:                stringOr(o.OpenAIModel, DefaultOpenAIModel),
		RAGBaseURL:                 stringOr(o.RAGBaseURL, DefaultRAGBaseURL),
		RAGModel:                   stringOr(o.RAGModel, DefaultRAGModel),
		SimilarityThreshold:        floatOr(o.SimilarityThreshold, DefaultSimilarityThreshold),
		ContextMaxLength:           intOr(o.ContextMaxLength, DefaultContextMaxLength),
		DeepSearchEnabled:          boolOr(o.DeepSearchEnabled, true),
		DeepSearchInitialThreshold: floatOr(o.DeepSearchInitialThreshold, DefaultDeepSearchInitialThreshold),
		MaxFileSize:                int64Or(o.MaxFileSize, DefaultMaxFileSize),
		UploadDirectory:            stringOr(o.UploadDirectory, DefaultUploadDirectory),
	}

	// Pass 2: dimension-dependent fields.
	cfg.RAGAPIKey = stringOr(o.RAGAPIKey, o.OpenAIAPIKey)

	if o.EmbeddingDimensions != nil {
		cfg.EmbeddingDimensions = *o.EmbeddingDimensions
	}

	switch {
	case o.ChunkSize != nil:
		cfg.ChunkSize = *o.ChunkSize
	case cfg.EmbeddingDimensions > 0:
		cfg.ChunkSize = ChunkSizeForDimensions(cfg.EmbeddingDimensions)
	}

	switch {
	case o.ChunkOverlap != nil:
		cfg.ChunkOverlap = *o.ChunkOverlap
	case cfg.ChunkSize > 0:
		cfg.ChunkOverlap = cfg.ChunkSize * 20 / 100
	}

	return cfg, nil
}

// WithDimensions completes the chunking fields once the effective
// dimensionality is known (after store initialisation). Fields that were
// already resolved are never recomputed.
func (c SessionConfig) WithDimensions(dims int) SessionConfig {
	if dims <= 0 || c.EmbeddingDimensions > 0 {
		return c
	}
	c.EmbeddingDimensions = dims
	if c.ChunkSize == 0 {
		c.ChunkSize = ChunkSizeForDimensions(dims)
	}
	if c.ChunkOverlap == 0 && c.ChunkSize > 0 {
		c.ChunkOverlap = c.ChunkSize * 20 / 100
	}
	return c
}

// validateOverrides rejects inputs that could never produce a consistent
// configuration.
func validateOverrides(o SessionOverrides) error {
	if o.OpenAIAPIKey == "" {
		return fmtInvalid("openai_api_key is required")
	}
	if o.EmbeddingDimensions != nil && *o.EmbeddingDimensions <= 0 {
		return fmtInvalid("embedding_dimensions must be positive")
	}
	if o.ChunkSize != nil && *o.ChunkSize <= 0 {
		return fmtInvalid("chunk_size must be positive")
	}
	if o.ChunkOverlap != nil {
		if *o.ChunkOverlap < 0 {
			return fmtInvalid("chunk_overlap must not be negative")
		}
		if o.ChunkSize != nil && *o.ChunkOverlap >= *o.ChunkSize {
			return fmtInvalid("chunk_overlap must be smaller than chunk_size")
		}
	}
	if o.SimilarityThreshold != nil && (*o.SimilarityThreshold < -1 || *o.SimilarityThreshold > 1) {
		return fmtInvalid("similarity_threshold must be within [-1, 1]")
	}
	if o.DeepSearchInitialThreshold != nil && (*o.DeepSearchInitialThreshold < -1 || *o.DeepSearchInitialThreshold > 1) {
		return fmtInvalid("deep_search_initial_threshold must be within [-1, 1]")
	}
	if o.ContextMaxLength != nil && *o.ContextMaxLength <= 0 {
		return fmtInvalid("context_max_length must be positive")
	}
	if o.MaxFileSize != nil && *o.MaxFileSize <= 0 {
		return fmtInvalid("max_file_size must be positive")
	}
	return nil
}

func fmtInvalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

func stringOr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func intOr(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}

func int64Or(v *int64, def int64) int64 {
	if v != nil {
		return *v
	}
	return def
}

func floatOr(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

func boolOr(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}
