package store

import (
	"github.com/redis/go-redis/v9"
)

// Driver selects a persistence backend.
type Driver string

const (
	DriverFile   Driver = "file"
	DriverMemory Driver = "memory"
	DriverRedis  Driver = "redis"
	DriverSQLite Driver = "sqlite"
)

// Option is a functional option for configuring a store driver.
type Option func(*config)

type config struct {
	dir         string
	sqlitePath  string
	redisClient *redis.Client
}

// WithDir sets the directory for the file driver's JSON documents.
func WithDir(dir string) Option {
	return func(c *config) { c.dir = dir }
}

// WithSQLitePath sets the database file for the sqlite driver.
func WithSQLitePath(path string) Option {
	return func(c *config) { c.sqlitePath = path }
}

// WithRedisClient sets the client for the redis driver.
func WithRedisClient(client *redis.Client) Option {
	return func(c *config) { c.redisClient = client }
}

// New creates a Store for the given driver.
func New(driver Driver, opts ...Option) (Store, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch driver {
	case DriverFile:
		if cfg.dir == "" {
			return nil, ErrInvalidConfig
		}
		return newFileStore(cfg.dir)

	case DriverMemory:
		return newMemoryStore(), nil

	case DriverRedis:
		if cfg.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return newRedisStore(cfg.redisClient), nil

	case DriverSQLite:
		if cfg.sqlitePath == "" {
			return nil, ErrInvalidConfig
		}
		return newSQLiteStore(cfg.sqlitePath)

	default:
		return nil, ErrInvalidDriver
	}
}
