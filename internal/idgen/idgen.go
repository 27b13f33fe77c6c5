// Package idgen centralizes unique identifier allocation. The hosted model
// is never asked to invent collision-free IDs; every generated row gets one
// here instead.
package idgen

import "github.com/google/uuid"

// Allocator hands out unique identifiers.
type Allocator interface {
	NewDelegateID() string
	NewSessionID() string
}

// UUID is the production allocator backed by random UUIDs.
type UUID struct{}

// NewDelegateID returns a fresh delegate row identifier.
func (UUID) NewDelegateID() string {
	return "del-" + uuid.NewString()
}

// NewSessionID returns a fresh chat session identifier.
func (UUID) NewSessionID() string {
	return uuid.NewString()
}
