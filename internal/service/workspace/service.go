package workspace

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hashmun/hashmun/backend/internal/idgen"
	"github.com/hashmun/hashmun/backend/internal/model/chat"
	"github.com/hashmun/hashmun/backend/internal/model/roster"
	"github.com/hashmun/hashmun/backend/internal/model/settings"
	"github.com/hashmun/hashmun/backend/internal/store"
)

var ErrSessionNotFound = errors.New("session not found")

// Active view surfaces.
const (
	ViewChat  = "chat"
	ViewTable = "table"
)

const titleLimit = 30

// Service owns the ordered session list, the current-session pointer and
// the workspace settings. It is the sole writer of durable storage: every
// mutation writes through to the store before returning, so a crash loses
// at most the in-flight operation.
type Service struct {
	mu       sync.RWMutex
	store    store.Store
	ids      idgen.Allocator
	sessions []chat.Session // newest first
	current  string
	view     string
	settings settings.Settings
	now      func() int64
}

// NewService loads the persisted workspace once and keeps it in memory.
func NewService(ctx context.Context, st store.Store, ids idgen.Allocator) (*Service, error) {
	sessions, err := st.LoadSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}
	for i := range sessions {
		sessions[i].Sanitize()
	}

	cfg, err := st.LoadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	cfg.Sanitize()

	svc := &Service{
		store:    st,
		ids:      ids,
		sessions: sessions,
		view:     ViewChat,
		settings: cfg,
		now:      func() int64 { return time.Now().UnixMilli() },
	}
	if len(sessions) > 0 {
		svc.current = sessions[0].ID
	}
	return svc, nil
}

// CreateSession inserts a new empty session at the front of the list and
// makes it current.
func (s *Service) CreateSession(ctx context.Context) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := chat.Session{
		ID:           s.ids.NewSessionID(),
		Title:        chat.DefaultTitle,
		Messages:     []chat.Message{},
		LastModified: s.now(),
	}
	s.sessions = append([]chat.Session{session}, s.sessions...)
	s.current = session.ID
	s.view = ViewChat

	if err := s.persistSessions(ctx); err != nil {
		return chat.Session{}, err
	}
	return session, nil
}

// SelectSession moves the current pointer. Unknown IDs are a silent no-op;
// callers validate against the list first.
func (s *Service) SelectSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return
	}
	s.current = id
	s.view = ViewChat
}

// DeleteSession removes a session permanently. Deleting the current
// session uncovers the most recent remaining one, or leaves the workspace
// empty and the view reset to chat.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrSessionNotFound
	}
	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)

	if s.current == id {
		if len(s.sessions) > 0 {
			s.current = s.sessions[0].ID
		} else {
			s.current = ""
			s.view = ViewChat
		}
	}

	return s.persistSessions(ctx)
}

// AppendUserMessage appends a user turn. The first user message also names
// the session after a truncated prefix of the text.
func (s *Service) AppendUserMessage(ctx context.Context, id, text string) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return chat.Message{}, ErrSessionNotFound
	}

	msg := chat.Message{Role: chat.RoleUser, Content: text, Timestamp: s.now()}
	session := &s.sessions[idx]
	if len(session.Messages) == 0 {
		session.Title = titleFrom(text)
	}
	session.Messages = append(session.Messages, msg)
	session.LastModified = msg.Timestamp

	if err := s.persistSessions(ctx); err != nil {
		return chat.Message{}, err
	}
	return msg, nil
}

// AppendAIMessage appends an assistant turn.
func (s *Service) AppendAIMessage(ctx context.Context, id, text string) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return chat.Message{}, ErrSessionNotFound
	}

	msg := chat.Message{Role: chat.RoleAI, Content: text, Timestamp: s.now()}
	session := &s.sessions[idx]
	session.Messages = append(session.Messages, msg)
	session.LastModified = msg.Timestamp

	if err := s.persistSessions(ctx); err != nil {
		return chat.Message{}, err
	}
	return msg, nil
}

// ReplaceSnapshot swaps the session's roster wholesale. Both AI responses
// and manual table saves land here; whole-snapshot replacement is the only
// consistency mechanism.
func (s *Service) ReplaceSnapshot(ctx context.Context, id string, snap *roster.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrSessionNotFound
	}

	snap.Sanitize()
	s.sessions[idx].Snapshot = snap.Clone()
	s.sessions[idx].LastModified = s.now()

	return s.persistSessions(ctx)
}

// Sessions returns a copy of the ordered session list, newest first.
func (s *Service) Sessions() []chat.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copySessions()
}

// Session retrieves one session by ID.
func (s *Service) Session(id string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return chat.Session{}, ErrSessionNotFound
	}
	return s.copySession(s.sessions[idx]), nil
}

// CurrentID returns the current session ID, empty when none.
func (s *Service) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// View returns the active view surface.
func (s *Service) View() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// SetView switches between the chat and table surfaces.
func (s *Service) SetView(view string) error {
	if view != ViewChat && view != ViewTable {
		return fmt.Errorf("unknown view %q", view)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = view
	return nil
}

// Settings returns the current workspace settings.
func (s *Service) Settings() settings.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings replaces the settings record and writes it through.
func (s *Service) UpdateSettings(ctx context.Context, cfg settings.Settings) error {
	if !cfg.Theme.Valid() {
		return fmt.Errorf("unknown theme %q", cfg.Theme)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = cfg

	if err := s.store.SaveSettings(ctx, cfg); err != nil {
		return fmt.Errorf("persisting settings: %w", err)
	}
	return nil
}

func (s *Service) indexOf(id string) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) copySessions() []chat.Session {
	out := make([]chat.Session, len(s.sessions))
	for i, session := range s.sessions {
		out[i] = s.copySession(session)
	}
	return out
}

func (s *Service) copySession(session chat.Session) chat.Session {
	session.Messages = append([]chat.Message(nil), session.Messages...)
	session.Snapshot = session.Snapshot.Clone()
	return session
}

func (s *Service) persistSessions(ctx context.Context) error {
	if err := s.store.SaveSessions(ctx, s.sessions); err != nil {
		log.Printf("[workspace] write-through failed: %v", err)
		return fmt.Errorf("persisting sessions: %w", err)
	}
	return nil
}

func titleFrom(text string) string {
	runes := []rune(text)
	if len(runes) <= titleLimit {
		return text
	}
	return string(runes[:titleLimit]) + "..."
}
