package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	chatapp "advanced-prompt/internal/features/chat/application"
	chatdomain "advanced-prompt/internal/features/chat/domain"
	"advanced-prompt/internal/features/chat/infrastructure"
	configapp "advanced-prompt/internal/features/config/application"
	cookapp "advanced-prompt/internal/features/cook/application"
	promptapp "advanced-prompt/internal/features/prompt/application"
	"advanced-prompt/internal/features/session/domain"
)

// SessionService defines the interface for the session application service.
type SessionService interface {
	CreateSession(text string) *Session
	GetSession(id string) (*Session, error)
	DeleteSession(id string) error
	Count() int
	Shutdown()
}

// sessionService keeps sessions in memory.
type sessionService struct {
	ctx     context.Context
	cancel  context.CancelFunc
	config  configapp.ConfigService
	client  infrastructure.CompletionClient
	catalog chatdomain.Catalog
	log     logrus.FieldLogger

	sessionsMutex sync.RWMutex
	sessions      map[string]*Session
}

// NewSessionService creates a new instance of sessionService. client may be
// nil, which disables chat drafting.
func NewSessionService(cfg configapp.ConfigService, client infrastructure.CompletionClient, catalog chatdomain.Catalog, log logrus.FieldLogger) SessionService {
	ctx, cancel := context.WithCancel(context.Background())
	return &sessionService{
		ctx:      ctx,
		cancel:   cancel,
		config:   cfg,
		client:   client,
		catalog:  catalog,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// CreateSession starts a session over text.
func (s *sessionService) CreateSession(text string) *Session {
	id := uuid.NewString()
	log := s.log.WithField("session", id)

	roller := chatapp.NewRoller(s.catalog, time.Now().UnixNano())
	drafter := chatapp.NewDrafter(s.client, roller, log)

	session := &Session{
		ID:        id,
		log:       log,
		config:    s.config,
		ctx:       s.ctx,
		editor:    promptapp.NewEditor(promptapp.NewMemoryBuffer(text), &promptapp.SnapshotRenderer{}, log),
		form:      &generationForm{},
		roller:    roller,
		drafter:   drafter,
		sweep:     cookapp.NewSweep(roller, log),
		autopilot: chatapp.NewAutoPilot(drafter, log),
		mode:      domain.ModeIdle,
	}

	s.sessionsMutex.Lock()
	s.sessions[id] = session
	s.sessionsMutex.Unlock()

	log.Info("Session created")
	return session
}

// GetSession looks a session up by id.
func (s *sessionService) GetSession(id string) (*Session, error) {
	s.sessionsMutex.RLock()
	defer s.sessionsMutex.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// DeleteSession stops and forgets a session.
func (s *sessionService) DeleteSession(id string) error {
	s.sessionsMutex.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.sessionsMutex.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Close()
	s.log.WithField("session", id).Info("Session deleted")
	return nil
}

// Count returns the number of live sessions.
func (s *sessionService) Count() int {
	s.sessionsMutex.RLock()
	defer s.sessionsMutex.RUnlock()
	return len(s.sessions)
}

// Shutdown stops every session.
func (s *sessionService) Shutdown() {
	s.sessionsMutex.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.sessionsMutex.Unlock()

	for _, session := range sessions {
		session.Close()
	}
	s.cancel()
}
