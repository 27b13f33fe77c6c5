package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/hashmun/hashmun/backend/internal/model/chat"
	"github.com/hashmun/hashmun/backend/internal/model/settings"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
    key        TEXT PRIMARY KEY CHECK (key IN ('sessions', 'settings')),
    body       TEXT NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// sqliteStore keeps each document as a JSON blob row in a two-row table.
type sqliteStore struct {
	db *sql.DB
}

func newSQLiteStore(path string) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running schema migration: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

// LoadSessions implements Store.
func (s *sqliteStore) LoadSessions(ctx context.Context) ([]chat.Session, error) {
	var sessions []chat.Session
	if err := s.load(ctx, "sessions", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// LoadSettings implements Store.
func (s *sqliteStore) LoadSettings(ctx context.Context) (settings.Settings, error) {
	var cfg settings.Settings
	if err := s.load(ctx, "settings", &cfg); err != nil {
		return settings.Settings{}, err
	}
	return cfg, nil
}

// SaveSessions implements Store.
func (s *sqliteStore) SaveSessions(ctx context.Context, sessions []chat.Session) error {
	return s.save(ctx, "sessions", sessions)
}

// SaveSettings implements Store.
func (s *sqliteStore) SaveSettings(ctx context.Context, cfg settings.Settings) error {
	return s.save(ctx, "settings", cfg)
}

// Close implements Store.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func (s *sqliteStore) load(ctx context.Context, key string, v any) error {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE key = ?`, key,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

func (s *sqliteStore) save(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (key, body) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = datetime('now')`,
		key, string(body),
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}
