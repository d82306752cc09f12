package playground

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/AhamSammich/dexbee-docs/internal/logging"
	"github.com/AhamSammich/dexbee-docs/internal/sandbox"
	"github.com/AhamSammich/dexbee-docs/internal/shared/id"
)

// ErrTooManySessions rejects session creation past the configured cap.
var ErrTooManySessions = errors.New("session limit reached")

// Config holds manager configuration.
type Config struct {
	// ArenaPrefix namespaces every session's arena name.
	ArenaPrefix string
	// MaxSessions caps concurrently held sessions; 0 means unlimited.
	MaxSessions int
	// Sandbox configures each session's runtime.
	Sandbox sandbox.Config
}

// Manager tracks live playground sessions by id. Sessions are not persisted:
// a restart drops them all, matching the disposable storage underneath.
type Manager struct {
	cfg Config
	log *logging.Logger

	mu       sync.Mutex
	sessions map[id.SessionID]*Session
}

// NewManager creates a session manager.
func NewManager(cfg Config, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.NewNop()
	}
	return &Manager{
		cfg:      cfg,
		log:      log,
		sessions: make(map[id.SessionID]*Session),
	}
}

// Create registers a new uninitialized session. Each session gets its own
// runtime so one session's execution never serializes behind another's.
func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		return nil, ErrTooManySessions
	}

	sid := id.NewSessionID()
	arena := fmt.Sprintf("%s-%s", m.cfg.ArenaPrefix, sid)
	session := NewSession(sid, arena, sandbox.New(m.cfg.Sandbox, m.log), m.log)
	m.sessions[sid] = session

	m.log.Debug("playground session created", zap.String("session", string(sid)))
	return session, nil
}

// Get returns a session by id.
func (m *Manager) Get(sid id.SessionID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sid]
	return s, ok
}

// Release drops a session and closes its handle.
func (m *Manager) Release(sid id.SessionID) bool {
	m.mu.Lock()
	s, ok := m.sessions[sid]
	delete(m.sessions, sid)
	m.mu.Unlock()

	if !ok {
		return false
	}
	if err := s.Close(); err != nil {
		m.log.Warn("session close failed", zap.String("session", string(sid)), zap.Error(err))
	}
	return true
}

// Count reports live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close releases every session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[id.SessionID]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		_ = s.Close()
	}
}
