package auth

import (
	"context"
	"sync"
	"time"
)

// SessionStore keeps the sessions that have not been revoked
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: make(map[string]*Session), now: time.Now}
}

func (s *memorySessionStore) Save(ctx context.Context, session *Session) error {
	cp := *session
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = &cp
	s.sweep()
	return nil
}

func (s *memorySessionStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok || !s.now().Before(session.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *memorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// sweep drops expired sessions; mu must be held
func (s *memorySessionStore) sweep() {
	now := s.now()
	for id, session := range s.sessions {
		if !now.Before(session.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
}
