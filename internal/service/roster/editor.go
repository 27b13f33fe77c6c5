// Package roster implements the table editor: a per-session working copy
// of the committed snapshot with row and team operations, saved back
// wholesale or discarded.
package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hashmun/hashmun/backend/internal/idgen"
	"github.com/hashmun/hashmun/backend/internal/model/roster"
	"github.com/hashmun/hashmun/backend/internal/service/workspace"
)

var (
	ErrNotEditing       = errors.New("session is not in editing mode")
	ErrEmptyTeamName    = errors.New("team name must not be empty")
	ErrDuplicateTeam    = errors.New("a team with this name already exists")
	ErrUnknownTeam      = errors.New("team does not exist")
	ErrDelegateNotFound = errors.New("delegate not found")
)

// Editor manages working copies. A session is either Viewing (no draft) or
// Editing (draft present); only Save commits the draft back to the
// workspace and only Cancel discards it.
type Editor struct {
	mu     sync.Mutex
	ws     *workspace.Service
	ids    idgen.Allocator
	drafts map[string]*draft
}

type draft struct {
	conferenceName string
	delegates      []roster.Delegate
	pendingTeams   []string // teams created but not yet populated
	activeTeam     string
}

// View is a read projection of one session's table for the HTTP surface.
type View struct {
	Editing        bool              `json:"editing"`
	ConferenceName string            `json:"conferenceName"`
	Teams          []string          `json:"teams"`
	ActiveTeam     string            `json:"activeTeam"`
	Delegates      []roster.Delegate `json:"delegates"`
	SuggestedTeam  string            `json:"suggestedTeam"`
}

// FieldUpdate carries per-row edits. Nil fields are untouched; the row ID
// and team are immutable here (teams change via team operations).
type FieldUpdate struct {
	Name      *string `json:"name"`
	Allotment *string `json:"allotment"`
	Committee *string `json:"committee"`
	Class     *string `json:"class"`
	Status    *string `json:"status"`
}

// NewEditor wires the editor against the workspace service.
func NewEditor(ws *workspace.Service, ids idgen.Allocator) *Editor {
	return &Editor{ws: ws, ids: ids, drafts: make(map[string]*draft)}
}

// Begin enters editing mode with a fresh working copy of the committed
// snapshot. Re-entry replaces any existing draft.
func (e *Editor) Begin(sessionID string) error {
	session, err := e.ws.Session(sessionID)
	if err != nil {
		return err
	}

	snap := session.Snapshot.Clone()
	if snap == nil {
		snap = &roster.Snapshot{}
	}
	snap.Sanitize()

	d := &draft{
		conferenceName: snap.ConferenceName,
		delegates:      snap.Delegates,
	}
	if len(d.delegates) > 0 {
		d.activeTeam = d.delegates[0].Team
	} else {
		d.activeTeam = roster.DefaultTeam
	}

	e.mu.Lock()
	e.drafts[sessionID] = d
	e.mu.Unlock()
	return nil
}

// Save commits the working copy back to the workspace and leaves editing
// mode. Saving an unchanged draft twice commits identical snapshots.
func (e *Editor) Save(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	d, ok := e.drafts[sessionID]
	if !ok {
		e.mu.Unlock()
		return ErrNotEditing
	}
	snap := &roster.Snapshot{
		ConferenceName: d.conferenceName,
		Delegates:      append([]roster.Delegate(nil), d.delegates...),
	}
	delete(e.drafts, sessionID)
	e.mu.Unlock()

	return e.ws.ReplaceSnapshot(ctx, sessionID, snap)
}

// Cancel discards the working copy, including teams added but never
// populated, and reverts to the last committed snapshot.
func (e *Editor) Cancel(sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.drafts[sessionID]; !ok {
		return ErrNotEditing
	}
	delete(e.drafts, sessionID)
	return nil
}

// ViewTable projects the session's table. While editing it reflects the
// draft; otherwise the committed snapshot. The team argument selects the
// tab (empty means the active/first team); query filters rows.
func (e *Editor) ViewTable(sessionID, team, query string) (View, error) {
	e.mu.Lock()
	d, editing := e.drafts[sessionID]
	var name, active string
	var delegates []roster.Delegate
	var pending []string
	if editing {
		name = d.conferenceName
		delegates = append([]roster.Delegate(nil), d.delegates...)
		pending = append([]string(nil), d.pendingTeams...)
		active = d.activeTeam
	}
	e.mu.Unlock()

	if !editing {
		session, err := e.ws.Session(sessionID)
		if err != nil {
			return View{}, err
		}
		snap := session.Snapshot.Clone()
		if snap == nil {
			snap = &roster.Snapshot{}
		}
		snap.Sanitize()
		name = snap.ConferenceName
		delegates = snap.Delegates
	}

	teams := roster.Teams(delegates, pending)
	active = resolveActiveTeam(teams, firstNonEmpty(team, active))

	return View{
		Editing:        editing,
		ConferenceName: name,
		Teams:          teams,
		ActiveTeam:     active,
		Delegates:      filterDelegates(delegates, active, query),
		SuggestedTeam:  roster.NextTeamName(teams),
	}, nil
}

// SetConferenceName updates the draft's conference name.
func (e *Editor) SetConferenceName(sessionID, name string) error {
	return e.withDraft(sessionID, func(d *draft) error {
		d.conferenceName = name
		return nil
	})
}

// SetActiveTeam switches the active tab; the team must exist.
func (e *Editor) SetActiveTeam(sessionID, team string) error {
	return e.withDraft(sessionID, func(d *draft) error {
		if !contains(d.teams(), team) {
			return ErrUnknownTeam
		}
		d.activeTeam = team
		return nil
	})
}

// AddDelegate appends a blank row to the active team and returns it.
func (e *Editor) AddDelegate(sessionID string) (roster.Delegate, error) {
	var added roster.Delegate
	err := e.withDraft(sessionID, func(d *draft) error {
		team := d.activeTeam
		if team == "" {
			team = roster.DefaultTeam
		}
		added = roster.Delegate{
			ID:     e.ids.NewDelegateID(),
			Status: roster.StatusAllocated,
			Team:   team,
		}
		d.delegates = append(d.delegates, added)
		return nil
	})
	return added, err
}

// UpdateDelegate applies field edits to one row of the working copy.
func (e *Editor) UpdateDelegate(sessionID, delegateID string, update FieldUpdate) error {
	return e.withDraft(sessionID, func(d *draft) error {
		for i := range d.delegates {
			if d.delegates[i].ID != delegateID {
				continue
			}
			if update.Name != nil {
				d.delegates[i].Name = *update.Name
			}
			if update.Allotment != nil {
				d.delegates[i].Allotment = *update.Allotment
			}
			if update.Committee != nil {
				d.delegates[i].Committee = *update.Committee
			}
			if update.Class != nil {
				d.delegates[i].Class = *update.Class
			}
			if update.Status != nil {
				status, err := roster.ParseStatus(*update.Status)
				if err != nil {
					return fmt.Errorf("invalid status: %w", err)
				}
				d.delegates[i].Status = status
			}
			return nil
		}
		return ErrDelegateNotFound
	})
}

// RemoveDelegate deletes one row from the working copy.
func (e *Editor) RemoveDelegate(sessionID, delegateID string) error {
	return e.withDraft(sessionID, func(d *draft) error {
		for i := range d.delegates {
			if d.delegates[i].ID == delegateID {
				d.delegates = append(d.delegates[:i], d.delegates[i+1:]...)
				d.ensureActiveTeam()
				return nil
			}
		}
		return ErrDelegateNotFound
	})
}

// AddTeam records a new empty team and makes it active. Names must be
// non-empty after trimming and unique across the derived team list.
func (e *Editor) AddTeam(sessionID, name string) error {
	return e.withDraft(sessionID, func(d *draft) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return ErrEmptyTeamName
		}
		if contains(d.teams(), name) {
			return ErrDuplicateTeam
		}
		d.pendingTeams = append(d.pendingTeams, name)
		d.activeTeam = name
		return nil
	})
}

// RenameTeam renames the active team, cascading to every delegate row
// tagged with the old name and to the pending set. Renaming a team to its
// own current name is a no-op.
func (e *Editor) RenameTeam(sessionID, to string) error {
	return e.withDraft(sessionID, func(d *draft) error {
		to = strings.TrimSpace(to)
		if to == "" {
			return ErrEmptyTeamName
		}
		if to == d.activeTeam {
			return nil
		}
		if contains(d.teams(), to) {
			return ErrDuplicateTeam
		}

		from := d.activeTeam
		for i := range d.delegates {
			if d.delegates[i].Team == from {
				d.delegates[i].Team = to
			}
		}
		kept := d.pendingTeams[:0]
		for _, t := range d.pendingTeams {
			if t != from {
				kept = append(kept, t)
			}
		}
		d.pendingTeams = append(kept, to)
		d.activeTeam = to
		return nil
	})
}

// DeleteTeam removes the active team and every delegate in it. Callers
// must gather explicit confirmation first; the cascade is destructive.
func (e *Editor) DeleteTeam(sessionID string) error {
	return e.withDraft(sessionID, func(d *draft) error {
		target := d.activeTeam
		kept := d.delegates[:0]
		for _, del := range d.delegates {
			if del.Team != target {
				kept = append(kept, del)
			}
		}
		d.delegates = kept

		pending := d.pendingTeams[:0]
		for _, t := range d.pendingTeams {
			if t != target {
				pending = append(pending, t)
			}
		}
		d.pendingTeams = pending

		d.ensureActiveTeam()
		return nil
	})
}

// Editing reports whether the session currently has a working copy.
func (e *Editor) Editing(sessionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.drafts[sessionID]
	return ok
}

func (e *Editor) withDraft(sessionID string, fn func(*draft) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, ok := e.drafts[sessionID]
	if !ok {
		return ErrNotEditing
	}
	return fn(d)
}

func (d *draft) teams() []string {
	return roster.Teams(d.delegates, d.pendingTeams)
}

// ensureActiveTeam falls back to the first derived team (or the default
// placeholder) when the active tab's team no longer exists.
func (d *draft) ensureActiveTeam() {
	teams := d.teams()
	if contains(teams, d.activeTeam) {
		return
	}
	if len(teams) > 0 {
		d.activeTeam = teams[0]
		return
	}
	d.activeTeam = roster.DefaultTeam
}

func resolveActiveTeam(teams []string, requested string) string {
	if contains(teams, requested) {
		return requested
	}
	if len(teams) > 0 {
		return teams[0]
	}
	return roster.DefaultTeam
}

func filterDelegates(delegates []roster.Delegate, team, query string) []roster.Delegate {
	query = strings.ToLower(query)
	out := make([]roster.Delegate, 0, len(delegates))
	for _, d := range delegates {
		if d.Team != team {
			continue
		}
		if query != "" && !matchesQuery(d, query) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func matchesQuery(d roster.Delegate, query string) bool {
	for _, field := range []string{d.Name, d.Allotment, d.Committee, d.Class} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
