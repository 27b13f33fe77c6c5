package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hashmun/hashmun/backend/internal/model/chat"
	"github.com/hashmun/hashmun/backend/internal/model/settings"
)

const (
	redisSessionsKey = "hashmun:sessions"
	redisSettingsKey = "hashmun:settings"
)

// redisStore keeps both documents as JSON string values under fixed keys.
type redisStore struct {
	client *redis.Client
}

func newRedisStore(client *redis.Client) *redisStore {
	return &redisStore{client: client}
}

// LoadSessions implements Store.
func (s *redisStore) LoadSessions(ctx context.Context) ([]chat.Session, error) {
	val, err := s.client.Get(ctx, redisSessionsKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading sessions: %w", err)
	}

	var sessions []chat.Session
	if err := json.Unmarshal([]byte(val), &sessions); err != nil {
		return nil, fmt.Errorf("decoding sessions: %w", err)
	}
	return sessions, nil
}

// LoadSettings implements Store.
func (s *redisStore) LoadSettings(ctx context.Context) (settings.Settings, error) {
	val, err := s.client.Get(ctx, redisSettingsKey).Result()
	if err == redis.Nil {
		return settings.Settings{}, nil
	}
	if err != nil {
		return settings.Settings{}, fmt.Errorf("reading settings: %w", err)
	}

	var cfg settings.Settings
	if err := json.Unmarshal([]byte(val), &cfg); err != nil {
		return settings.Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	return cfg, nil
}

// SaveSessions implements Store.
func (s *redisStore) SaveSessions(ctx context.Context, sessions []chat.Session) error {
	val, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("encoding sessions: %w", err)
	}
	return s.client.Set(ctx, redisSessionsKey, val, 0).Err()
}

// SaveSettings implements Store.
func (s *redisStore) SaveSettings(ctx context.Context, cfg settings.Settings) error {
	val, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return s.client.Set(ctx, redisSettingsKey, val, 0).Err()
}

// Close implements Store.
func (s *redisStore) Close() error {
	return s.client.Close()
}
