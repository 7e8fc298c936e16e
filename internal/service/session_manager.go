package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/config"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/validation"
)

// SessionManager owns the live sessions. Each user's preferences live in a
// namespace derived from the lowercased email, so logging in again restores
// the same state.
type SessionManager struct {
	store  PreferenceStore
	limits config.LimitsConfig
	cipher *EmailCipher
	log    zerolog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(store PreferenceStore, limits config.LimitsConfig, cipher *EmailCipher, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		store:    store,
		limits:   limits,
		cipher:   cipher,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a session for email.
func (m *SessionManager) Create(email string) *Session {
	id := uuid.New().String()
	prefs := NewPreferenceService(m.store, UserNamespace(email), m.limits.SearchHistoryLimit, m.cipher)
	s := NewSession(id, email, prefs, m.limits, m.log)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.log.Info().Str("session_id", id).Msg("session created")
	return s
}

// Get returns the session with the given id and records the access.
func (m *SessionManager) Get(id string) (*Session, error) {
	if err := validation.ValidateUUID(id); err != nil {
		return nil, fmt.Errorf("%w: malformed session id", apperrors.ErrSessionNotFound)
	}

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	s.Touch(m.now())
	return s, nil
}

// Remove closes and forgets the session. It reports whether it existed.
func (m *SessionManager) Remove(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
		m.log.Info().Str("session_id", id).Msg("session closed")
	}
	return ok
}

// ExpireIdle closes and forgets the sessions not accessed for ttl or longer
// and returns their ids. A ttl of zero expires nothing.
func (m *SessionManager) ExpireIdle(ttl time.Duration) []string {
	if ttl <= 0 {
		return nil
	}
	now := m.now()

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if now.Sub(s.LastSeen()) >= ttl {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	ids := make([]string, 0, len(expired))
	for _, s := range expired {
		s.Close()
		ids = append(ids, s.ID())
		m.log.Info().
			Str("session_id", s.ID()).
			Dur("age", now.Sub(s.CreatedAt())).
			Msg("idle session expired")
	}
	return ids
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// UserNamespace returns the preference namespace of a user.
func UserNamespace(email string) string {
	return "user:" + strings.ToLower(strings.TrimSpace(email))
}
