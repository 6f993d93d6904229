package quiz

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrNoSession = errors.New("session not found")
	ErrNotYours  = errors.New("session belongs to another user")
)

// Manager is the in-process session registry. At most one live session exists
// per user; creating a new one tears the previous one down so its timers can
// never outlive it.
type Manager struct {
	clock Clock

	mu     sync.Mutex
	byID   map[string]*Session
	byUser map[string]string // user id -> session id
}

func NewManager(clock Clock) *Manager {
	return &Manager{
		clock:  clock,
		byID:   map[string]*Session{},
		byUser: map[string]string{},
	}
}

// Create registers a fresh session for userID, closing any session the user
// already has.
func (m *Manager) Create(userID string, cfg Config, data Data, onComplete CompletionFunc) *Session {
	s := NewSession(uuid.NewString(), userID, cfg, data, onComplete)

	m.mu.Lock()
	var old *Session
	if prevID, ok := m.byUser[userID]; ok {
		old = m.byID[prevID]
		delete(m.byID, prevID)
	}
	m.byID[s.ID] = s
	m.byUser[userID] = s.ID
	m.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return s
}

// Get returns the session owned by userID, enforcing ownership.
func (m *Manager) Get(id, userID string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.byID[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNoSession
	}
	if s.UserID != userID {
		return nil, ErrNotYours
	}
	return s, nil
}

// Start transitions a session to InProgress on the manager's clock.
func (m *Manager) Start(id, userID string) (*Session, error) {
	s, err := m.Get(id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Start(m.clock); err != nil {
		return nil, err
	}
	return s, nil
}

// Close removes a session and cancels its timers. Unknown ids are ignored.
func (m *Manager) Close(id, userID string) {
	m.mu.Lock()
	s, ok := m.byID[id]
	if ok && s.UserID == userID {
		delete(m.byID, id)
		if m.byUser[userID] == id {
			delete(m.byUser, userID)
		}
	} else {
		s = nil
	}
	m.mu.Unlock()
	if s != nil {
		s.Close()
	}
}
