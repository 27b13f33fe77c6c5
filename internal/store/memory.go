package store

import (
	"context"
	"sync"

	"github.com/hashmun/hashmun/backend/internal/model/chat"
	"github.com/hashmun/hashmun/backend/internal/model/settings"
)

// memoryStore keeps both documents in process memory. Used by tests and
// ephemeral runs; nothing survives a restart.
type memoryStore struct {
	mu       sync.RWMutex
	sessions []chat.Session
	settings settings.Settings
}

func newMemoryStore() *memoryStore {
	return &memoryStore{}
}

// LoadSessions implements Store.
func (s *memoryStore) LoadSessions(_ context.Context) ([]chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]chat.Session(nil), s.sessions...), nil
}

// LoadSettings implements Store.
func (s *memoryStore) LoadSettings(_ context.Context) (settings.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

// SaveSessions implements Store.
func (s *memoryStore) SaveSessions(_ context.Context, sessions []chat.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append([]chat.Session(nil), sessions...)
	return nil
}

// SaveSettings implements Store.
func (s *memoryStore) SaveSettings(_ context.Context, cfg settings.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = cfg
	return nil
}

// Close implements Store.
func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = nil
	return nil
}
