// File: internal/usecase/session_manager.go
package usecase

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kilka221/assistant/internal/domain"
	"github.com/kilka221/assistant/internal/domain/ports/adapter"
	"github.com/kilka221/assistant/internal/domain/ports/repository"
)

// Compile-time check
var _ SessionManager = (*sessionManager)(nil)

// SessionManager constructs the session-scoped engine at login and
// tracks the active session per identity. A second login for the same
// identity supersedes the previous session without persisting it first;
// every mutation already persisted write-through.
type SessionManager interface {
	Login(ctx context.Context, identityID, lang string) (*Session, error)
	Active(identityID string) (*Session, error)
	Logout(identityID string)
}

type sessionManager struct {
	store       repository.SessionStore
	ai          adapter.CompletionAdapter
	translators map[string]Translator
	defaultLang string
	freeLimit   int
	log         *zerolog.Logger

	mu     sync.Mutex
	active map[string]*Session
}

func NewSessionManager(
	store repository.SessionStore,
	ai adapter.CompletionAdapter,
	translators map[string]Translator,
	defaultLang string,
	freeLimit int,
	logger *zerolog.Logger,
) *sessionManager {
	return &sessionManager{
		store:       store,
		ai:          ai,
		translators: translators,
		defaultLang: defaultLang,
		freeLimit:   freeLimit,
		log:         logger,
		active:      make(map[string]*Session),
	}
}

func (m *sessionManager) Login(ctx context.Context, identityID, lang string) (*Session, error) {
	identity, err := m.store.FindIdentity(ctx, identityID)
	if err != nil {
		return nil, err
	}

	if lang == "" {
		lang = m.defaultLang
	}
	tr, ok := m.translators[lang]
	if !ok {
		return nil, domain.ErrUnsupportedLang
	}

	s := &Session{
		identity:  *identity,
		tr:        tr,
		store:     m.store,
		ai:        m.ai,
		freeLimit: m.freeLimit,
		log:       m.log,
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.active[identity.ID] = s
	m.mu.Unlock()
	return s, nil
}

func (m *sessionManager) Active(identityID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.active[identityID]
	if !ok {
		return nil, domain.ErrNoActiveSession
	}
	return s, nil
}

func (m *sessionManager) Logout(identityID string) {
	m.mu.Lock()
	delete(m.active, identityID)
	m.mu.Unlock()
}
