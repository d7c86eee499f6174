package driving

import (
	"time"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
)

// SessionInfo is the metadata exposed for an active session.
type SessionInfo struct {
	ID           string
	CreatedAt    time.Time
	LastAccessed time.Time
}

// SessionService manages session lifecycles and their immutable
// configurations.
type SessionService interface {
	// Create resolves a configuration from the overrides and opens a
	// new session. The configuration is resolved exactly once.
	Create(overrides domain.SessionOverrides) (string, domain.SessionConfig, error)

	// Config returns the configuration for a session and refreshes its
	// last-accessed time. Returns domain.ErrSessionNotFound for unknown
	// or expired sessions.
	Config(id string) (domain.SessionConfig, error)

	// Delete removes a session. Unknown IDs are a no-op.
	Delete(id string)

	// List returns metadata for all active sessions.
	List() []SessionInfo
}
