package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tansive/nanobanana/internal/common/uuid"
	"github.com/tansive/nanobanana/internal/gateway/params"
	"github.com/tansive/nanobanana/internal/gateway/resilience"
)

// Manager is the registry of live sessions. Registry operations are atomic
// with respect to each other; turns within a session lock only that session.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  ChannelFactory
	policy   resilience.Policy
	newID    func() (string, error)
}

var _ SessionManager = (*Manager)(nil)

// NewManager returns an empty registry whose sessions open channels through
// factory and retry each turn under policy.
func NewManager(factory ChannelFactory, policy resilience.Policy) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		factory:  factory,
		policy:   policy,
		newID:    uuid.NewSessionID,
	}
}

// CreateSession opens a channel configured for text and image output, plus
// search grounding when the model supports it. Channel construction errors
// are returned as-is and are not retried.
func (m *Manager) CreateSession(ctx context.Context, model string) (string, error) {
	if model == "" {
		model = params.DefaultModel
	}
	mdl, err := params.ValidateModel(model)
	if err != nil {
		return "", err
	}

	ch, err := m.factory.NewChannel(ctx, mdl.ID, channelDefaults(mdl))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("model", mdl.ID).Msg("unable to open chat channel")
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var id string
	for {
		id, err = m.newID()
		if err != nil {
			ch.Close()
			return "", err
		}
		if _, exists := m.sessions[id]; !exists {
			break
		}
	}
	m.sessions[id] = &Session{
		id:      id,
		model:   mdl,
		policy:  m.policy,
		channel: ch,
		logger:  log.With().Str("session_id", id).Str("model", mdl.ID).Logger(),
	}
	log.Ctx(ctx).Info().Str("session_id", id).Str("model", mdl.ID).Msg("session created")
	return id, nil
}

// GetSession returns the live session for id or ErrSessionNotFound.
func (m *Manager) GetSession(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrSessionNotFound
}

// ListSessions returns the ids of all live sessions.
func (m *Manager) ListSessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// DeleteSession removes the session and closes its channel. A second call
// for the same id returns ErrSessionNotFound.
func (m *Manager) DeleteSession(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	if err := s.close(); err != nil {
		s.logger.Warn().Err(err).Msg("error closing chat channel")
	}
	s.logger.Info().Int("total_turns", s.TurnCount()).Msg("session deleted")
	return nil
}

// CloseAll deletes every live session. Used on shutdown.
func (m *Manager) CloseAll() {
	for _, id := range m.ListSessions() {
		_ = m.DeleteSession(id)
	}
}
