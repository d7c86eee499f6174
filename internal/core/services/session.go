package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
	"github.com/docuchat-labs/docuchat/internal/core/ports/driving"
	"github.com/docuchat-labs/docuchat/internal/logger"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// DefaultSessionTTL is how long an untouched session survives.
const DefaultSessionTTL = 24 * time.Hour

// session is the in-memory state for one active session.
type session struct {
	config       domain.SessionConfig
	createdAt    time.Time
	lastAccessed time.Time
}

// SessionService manages session lifecycles. Each session's
// configuration is resolved exactly once at creation and never
// recomputed; a running session's chunking behaviour cannot drift.
type SessionService struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionService creates a session manager with the default TTL.
func NewSessionService() *SessionService {
	return &SessionService{
		sessions: make(map[string]*session),
		ttl:      DefaultSessionTTL,
		now:      time.Now,
	}
}

// SetTTL overrides the idle expiry.
func (s *SessionService) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttl = ttl
}

// Create resolves a configuration from the overrides and opens a new
// session.
func (s *SessionService) Create(overrides domain.SessionOverrides) (string, domain.SessionConfig, error) {
	cfg, err := domain.ResolveSessionConfig(overrides)
	if err != nil {
		return "", domain.SessionConfig{}, fmt.Errorf("resolving session config: %w", err)
	}

	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sessions[id] = &session{
		config:       cfg,
		createdAt:    now,
		lastAccessed: now,
	}
	logger.Debug("Created session %s", id)
	return id, cfg, nil
}

// Config returns the configuration for a session and refreshes its
// last-accessed time.
func (s *SessionService) Config(id string) (domain.SessionConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.SessionConfig{}, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	if s.expired(sess) {
		delete(s.sessions, id)
		return domain.SessionConfig{}, fmt.Errorf("session %s expired: %w", id, domain.ErrSessionNotFound)
	}

	sess.lastAccessed = s.now()
	return sess.config, nil
}

// CompleteDimensions fills a session's chunking fields once the store's
// effective dimensionality is known. Already-resolved fields are kept.
func (s *SessionService) CompleteDimensions(id string, dims int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess) {
		return fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	sess.config = sess.config.WithDimensions(dims)
	return nil
}

// Delete removes a session. Unknown IDs are a no-op.
func (s *SessionService) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// List returns metadata for all active sessions, oldest first. Expired
// sessions are swept as a side effect.
func (s *SessionService) List() []driving.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]driving.SessionInfo, 0, len(s.sessions))
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			continue
		}
		infos = append(infos, driving.SessionInfo{
			ID:           id,
			CreatedAt:    sess.createdAt,
			LastAccessed: sess.lastAccessed,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

// expired reports whether the session has been idle past the TTL.
// Caller must hold the lock.
func (s *SessionService) expired(sess *session) bool {
	return s.now().Sub(sess.lastAccessed) > s.ttl
}
