// Package store persists the workspace as two independently keyed JSON
// documents: the session list and the settings record. Writes are
// last-write-wins; absent fields are defaulted by the callers on read.
package store

import (
	"context"
	"errors"

	"github.com/hashmun/hashmun/backend/internal/model/chat"
	"github.com/hashmun/hashmun/backend/internal/model/settings"
)

var (
	ErrInvalidDriver = errors.New("unknown storage driver")
	ErrInvalidConfig = errors.New("invalid storage configuration")
)

// Store is the persistence port for the workspace service.
type Store interface {
	// LoadSessions returns the stored session list, empty when none exists.
	LoadSessions(ctx context.Context) ([]chat.Session, error)

	// LoadSettings returns the stored settings, zero value when none exists.
	LoadSettings(ctx context.Context) (settings.Settings, error)

	// SaveSessions replaces the stored session list.
	SaveSessions(ctx context.Context, sessions []chat.Session) error

	// SaveSettings replaces the stored settings record.
	SaveSettings(ctx context.Context, s settings.Settings) error

	// Close releases any resources held by the driver.
	Close() error
}
