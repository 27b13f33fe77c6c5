package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashmun/hashmun/backend/internal/model/chat"
	"github.com/hashmun/hashmun/backend/internal/model/settings"
)

const (
	sessionsFile = "sessions.json"
	settingsFile = "settings.json"
)

// fileStore keeps the two documents as JSON files under a directory.
// Writes go through a temp file and rename so a crash mid-write never
// corrupts the previous document.
type fileStore struct {
	mu  sync.Mutex
	dir string
}

func newFileStore(dir string) (*fileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &fileStore{dir: dir}, nil
}

// LoadSessions implements Store.
func (s *fileStore) LoadSessions(_ context.Context) ([]chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sessions []chat.Session
	if err := s.readJSON(sessionsFile, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// LoadSettings implements Store.
func (s *fileStore) LoadSettings(_ context.Context) (settings.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cfg settings.Settings
	if err := s.readJSON(settingsFile, &cfg); err != nil {
		return settings.Settings{}, err
	}
	return cfg, nil
}

// SaveSessions implements Store.
func (s *fileStore) SaveSessions(_ context.Context, sessions []chat.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(sessionsFile, sessions)
}

// SaveSettings implements Store.
func (s *fileStore) SaveSettings(_ context.Context, cfg settings.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(settingsFile, cfg)
}

// Close implements Store.
func (s *fileStore) Close() error { return nil }

func (s *fileStore) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

func (s *fileStore) writeJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}
