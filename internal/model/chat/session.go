package chat

import "github.com/hashmun/hashmun/backend/internal/model/roster"

// DefaultTitle is used until the first user message names the session.
const DefaultTitle = "New Conversation"

// Session is one conversation thread. It owns at most one roster snapshot
// and an append-only message history.
type Session struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Messages     []Message        `json:"messages"`
	Snapshot     *roster.Snapshot `json:"munData,omitempty"`
	LastModified int64            `json:"lastModified"`
}

// Sanitize applies read-time defaults to a session loaded from storage.
func (s *Session) Sanitize() {
	if s.Title == "" {
		s.Title = DefaultTitle
	}
	if s.Messages == nil {
		s.Messages = []Message{}
	}
	s.Snapshot.Sanitize()
}
