package file

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
	"github.com/docuchat-labs/docuchat/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// fileConfig is the on-disk TOML schema. Pointer fields distinguish
// "absent" from "explicitly zero", matching domain.SessionOverrides.
type fileConfig struct {
	OpenAI struct {
		APIKey  string `toml:"api_key,omitempty"`
		BaseURL string `toml:"base_url,omitempty"`
		Model   string `toml:"model,omitempty"`
	} `toml:"openai"`

	Embedding struct {
		APIKey     string `toml:"api_key,omitempty"`
		BaseURL    string `toml:"base_url,omitempty"`
		Model      string `toml:"model,omitempty"`
		Dimensions *int   `toml:"dimensions,omitempty"`
	} `toml:"embedding"`

	Chunking struct {
		Size    *int `toml:"size,omitempty"`
		Overlap *int `toml:"overlap,omitempty"`
	} `toml:"chunking"`

	Search struct {
		SimilarityThreshold        *float64 `toml:"similarity_threshold,omitempty"`
		ContextMaxLength           *int     `toml:"context_max_length,omitempty"`
		DeepSearchEnabled          *bool    `toml:"deep_search_enabled,omitempty"`
		DeepSearchInitialThreshold *float64 `toml:"deep_search_initial_threshold,omitempty"`
	} `toml:"search"`

	Uploads struct {
		MaxFileSize *int64 `toml:"max_file_size,omitempty"`
		Directory   string `toml:"directory,omitempty"`
	} `toml:"uploads"`
}

// ConfigStore is a TOML-backed implementation of driven.ConfigStore.
// Configuration is stored within the docuchat config directory.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	cfg      fileConfig
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.docuchat/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".docuchat")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}

	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return s, nil
}

// Overrides maps the persisted file onto session overrides. Absent
// fields stay nil/empty so resolution falls through to the defaults.
func (s *ConfigStore) Overrides() domain.SessionOverrides {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.SessionOverrides{
		OpenAIAPIKey:               s.cfg.OpenAI.APIKey,
		OpenAIBaseURL:              s.cfg.OpenAI.BaseURL,
		OpenAIModel:                s.cfg.OpenAI.Model,
		RAGAPIKey:                  s.cfg.Embedding.APIKey,
		RAGBaseURL:                 s.cfg.Embedding.BaseURL,
		RAGModel:                   s.cfg.Embedding.Model,
		EmbeddingDimensions:        s.cfg.Embedding.Dimensions,
		ChunkSize:                  s.cfg.Chunking.Size,
		ChunkOverlap:               s.cfg.Chunking.Overlap,
		SimilarityThreshold:        s.cfg.Search.SimilarityThreshold,
		ContextMaxLength:           s.cfg.Search.ContextMaxLength,
		DeepSearchEnabled:          s.cfg.Search.DeepSearchEnabled,
		DeepSearchInitialThreshold: s.cfg.Search.DeepSearchInitialThreshold,
		MaxFileSize:                s.cfg.Uploads.MaxFileSize,
		UploadDirectory:            s.cfg.Uploads.Directory,
	}
}

// SetAPIKey stores the chat provider API key and persists immediately.
func (s *ConfigStore) SetAPIKey(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.OpenAI.APIKey = key
	return s.save()
}

// SetEmbedding stores the embedding provider settings and persists
// immediately. Empty values clear the corresponding field.
func (s *ConfigStore) SetEmbedding(baseURL, model, apiKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.Embedding.BaseURL = baseURL
	s.cfg.Embedding.Model = model
	s.cfg.Embedding.APIKey = apiKey
	return s.save()
}

// SetUploadDirectory stores the upload staging directory.
func (s *ConfigStore) SetUploadDirectory(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.Uploads.Directory = dir
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(s.cfg)
	if err != nil {
		return err
	}

	// The file carries API keys; keep it private to the user
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads configuration from the TOML file.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file yet - that's fine, start empty
			s.cfg = fileConfig{}
			return nil
		}
		return err
	}

	var loaded fileConfig
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}
	s.cfg = loaded
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
