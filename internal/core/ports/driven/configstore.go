package driven

import "github.com/docuchat-labs/docuchat/internal/core/domain"

// ConfigStore persists session-config overrides between runs.
type ConfigStore interface {
	// Overrides returns the persisted overrides.
	Overrides() domain.SessionOverrides

	// SetAPIKey stores the chat provider API key.
	SetAPIKey(key string) error

	// SetEmbedding stores the embedding provider settings.
	SetEmbedding(baseURL, model, apiKey string) error

	// Save persists the current configuration to disk.
	Save() error
}
