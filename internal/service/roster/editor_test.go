package roster_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/hashmun/hashmun/backend/internal/model/roster"
	rosterService "github.com/hashmun/hashmun/backend/internal/service/roster"
	"github.com/hashmun/hashmun/backend/internal/service/workspace"
	"github.com/hashmun/hashmun/backend/internal/store"
)

type seqIDs struct{ n int }

func (s *seqIDs) NewDelegateID() string { s.n++; return fmt.Sprintf("del-%d", s.n) }
func (s *seqIDs) NewSessionID() string  { s.n++; return fmt.Sprintf("sess-%d", s.n) }

func setup(t *testing.T) (*rosterService.Editor, *workspace.Service, string) {
	t.Helper()
	st, err := store.New(store.DriverMemory)
	if err != nil {
		t.Fatalf("store.New err: %v", err)
	}
	ids := &seqIDs{}
	ws, err := workspace.NewService(context.Background(), st, ids)
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	session, err := ws.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	snap := &roster.Snapshot{
		ConferenceName: "UNSC 2026",
		Delegates: []roster.Delegate{
			{ID: "d1", Name: "Ali", Allotment: "USA", Committee: "UNSC", Status: roster.StatusAllocated, Team: "Team A"},
			{ID: "d2", Name: "Sara", Allotment: "France", Committee: "UNSC", Status: roster.StatusPending, Team: "Team A"},
			{ID: "d3", Name: "Bilal", Allotment: "China", Committee: "DISEC", Class: "10-A", Status: roster.StatusWaitlist, Team: "Team B"},
		},
	}
	if err := ws.ReplaceSnapshot(context.Background(), session.ID, snap); err != nil {
		t.Fatalf("ReplaceSnapshot err: %v", err)
	}

	return rosterService.NewEditor(ws, ids), ws, session.ID
}

func beginEdit(t *testing.T, e *rosterService.Editor, id string) {
	t.Helper()
	if err := e.Begin(id); err != nil {
		t.Fatalf("Begin err: %v", err)
	}
}

func TestMutationsRequireEditing(t *testing.T) {
	e, _, id := setup(t)
	if _, err := e.AddDelegate(id); !errors.Is(err, rosterService.ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing, got %v", err)
	}
}

func TestSaveUnchangedIsIdempotent(t *testing.T) {
	e, ws, id := setup(t)
	before, _ := ws.Session(id)

	for i := 0; i < 2; i++ {
		beginEdit(t, e, id)
		if err := e.Save(context.Background(), id); err != nil {
			t.Fatalf("Save err: %v", err)
		}
	}

	after, _ := ws.Session(id)
	if !reflect.DeepEqual(before.Snapshot, after.Snapshot) {
		t.Fatalf("snapshot changed by no-op saves:\nbefore %+v\nafter  %+v", before.Snapshot, after.Snapshot)
	}
}

func TestCancelDiscardsWorkingCopy(t *testing.T) {
	e, ws, id := setup(t)
	beginEdit(t, e, id)

	if err := e.AddTeam(id, "Team C"); err != nil {
		t.Fatalf("AddTeam err: %v", err)
	}
	if _, err := e.AddDelegate(id); err != nil {
		t.Fatalf("AddDelegate err: %v", err)
	}
	if err := e.Cancel(id); err != nil {
		t.Fatalf("Cancel err: %v", err)
	}

	session, _ := ws.Session(id)
	if len(session.Snapshot.Delegates) != 3 {
		t.Fatalf("committed snapshot mutated: %d delegates", len(session.Snapshot.Delegates))
	}
	view, _ := e.ViewTable(id, "", "")
	if view.Editing {
		t.Fatal("still editing after cancel")
	}
	for _, team := range view.Teams {
		if team == "Team C" {
			t.Fatal("pending team survived cancel")
		}
	}
}

func TestAddTeamDuplicateRejected(t *testing.T) {
	e, _, id := setup(t)
	beginEdit(t, e, id)

	if err := e.AddTeam(id, "Team A"); !errors.Is(err, rosterService.ErrDuplicateTeam) {
		t.Fatalf("expected ErrDuplicateTeam, got %v", err)
	}
	view, _ := e.ViewTable(id, "", "")
	if !reflect.DeepEqual(view.Teams, []string{"Team A", "Team B"}) {
		t.Fatalf("team list changed on rejected add: %v", view.Teams)
	}

	if err := e.AddTeam(id, "   "); !errors.Is(err, rosterService.ErrEmptyTeamName) {
		t.Fatalf("expected ErrEmptyTeamName, got %v", err)
	}
}

func TestAddTeamBecomesActive(t *testing.T) {
	e, _, id := setup(t)
	beginEdit(t, e, id)

	if err := e.AddTeam(id, "Team C"); err != nil {
		t.Fatalf("AddTeam err: %v", err)
	}
	view, _ := e.ViewTable(id, "", "")
	if view.ActiveTeam != "Team C" {
		t.Fatalf("active = %q, want Team C", view.ActiveTeam)
	}
	if !reflect.DeepEqual(view.Teams, []string{"Team A", "Team B", "Team C"}) {
		t.Fatalf("teams = %v", view.Teams)
	}
}

func TestRenameTeamToItselfIsNoOp(t *testing.T) {
	e, _, id := setup(t)
	beginEdit(t, e, id)

	if err := e.RenameTeam(id, "Team A"); err != nil {
		t.Fatalf("rename to self must not error: %v", err)
	}
	view, _ := e.ViewTable(id, "", "")
	if !reflect.DeepEqual(view.Teams, []string{"Team A", "Team B"}) {
		t.Fatalf("teams = %v", view.Teams)
	}
}

func TestRenameTeamCascades(t *testing.T) {
	e, _, id := setup(t)
	beginEdit(t, e, id)

	if err := e.RenameTeam(id, "Delegation 1"); err != nil {
		t.Fatalf("RenameTeam err: %v", err)
	}

	view, _ := e.ViewTable(id, "Delegation 1", "")
	if view.ActiveTeam != "Delegation 1" {
		t.Fatalf("active = %q", view.ActiveTeam)
	}
	if len(view.Delegates) != 2 {
		t.Fatalf("expected both Team A delegates to follow, got %d", len(view.Delegates))
	}
	for _, team := range view.Teams {
		if team == "Team A" {
			t.Fatal("old team name still derived after rename")
		}
	}
}

func TestRenameTeamDuplicateRejected(t *testing.T) {
	e, _, id := setup(t)
	beginEdit(t, e, id)

	if err := e.RenameTeam(id, "Team B"); !errors.Is(err, rosterService.ErrDuplicateTeam) {
		t.Fatalf("expected ErrDuplicateTeam, got %v", err)
	}
}

func TestDeleteTeamRemovesExactlyItsDelegates(t *testing.T) {
	e, ws, id := setup(t)
	beginEdit(t, e, id)

	// Active team starts as Team A (first delegate's team).
	if err := e.DeleteTeam(id); err != nil {
		t.Fatalf("DeleteTeam err: %v", err)
	}

	view, _ := e.ViewTable(id, "", "")
	if !reflect.DeepEqual(view.Teams, []string{"Team B"}) {
		t.Fatalf("teams = %v", view.Teams)
	}
	if view.ActiveTeam != "Team B" {
		t.Fatalf("active = %q, want fallback to Team B", view.ActiveTeam)
	}
	if len(view.Delegates) != 1 || view.Delegates[0].ID != "d3" {
		t.Fatalf("unexpected survivors: %+v", view.Delegates)
	}

	if err := e.Save(context.Background(), id); err != nil {
		t.Fatalf("Save err: %v", err)
	}
	session, _ := ws.Session(id)
	if len(session.Snapshot.Delegates) != 1 || session.Snapshot.Delegates[0].ID != "d3" {
		t.Fatalf("committed snapshot wrong after cascade: %+v", session.Snapshot.Delegates)
	}
}

func TestDeleteLastTeamFallsBackToDefault(t *testing.T) {
	e, _, id := setup(t)
	beginEdit(t, e, id)

	if err := e.DeleteTeam(id); err != nil { // Team A
		t.Fatalf("DeleteTeam err: %v", err)
	}
	if err := e.DeleteTeam(id); err != nil { // Team B
		t.Fatalf("DeleteTeam err: %v", err)
	}

	view, _ := e.ViewTable(id, "", "")
	if view.ActiveTeam != roster.DefaultTeam {
		t.Fatalf("active = %q, want %q", view.ActiveTeam, roster.DefaultTeam)
	}
	if len(view.Delegates) != 0 {
		t.Fatalf("delegates remain: %+v", view.Delegates)
	}
}

func TestAddDelegateJoinsActiveTeam(t *testing.T) {
	e, _, id := setup(t)
	beginEdit(t, e, id)

	if err := e.SetActiveTeam(id, "Team B"); err != nil {
		t.Fatalf("SetActiveTeam err: %v", err)
	}
	added, err := e.AddDelegate(id)
	if err != nil {
		t.Fatalf("AddDelegate err: %v", err)
	}
	if added.Team != "Team B" {
		t.Fatalf("team = %q, want Team B", added.Team)
	}
	if added.Status != roster.StatusAllocated {
		t.Fatalf("status = %q, want Allocated", added.Status)
	}
	if added.ID == "" {
		t.Fatal("blank row must get an ID")
	}
}

func TestUpdateDelegateFields(t *testing.T) {
	e, _, id := setup(t)
	beginEdit(t, e, id)

	allotment := "France"
	status := "Head Delegate"
	err := e.UpdateDelegate(id, "d1", rosterService.FieldUpdate{Allotment: &allotment, Status: &status})
	if err != nil {
		t.Fatalf("UpdateDelegate err: %v", err)
	}

	view, _ := e.ViewTable(id, "Team A", "")
	for _, d := range view.Delegates {
		if d.ID == "d1" {
			if d.Allotment != "France" || d.Status != roster.StatusHeadDelegate {
				t.Fatalf("update not applied: %+v", d)
			}
			if d.Name != "Ali" {
				t.Fatalf("untouched field changed: %+v", d)
			}
			return
		}
	}
	t.Fatal("d1 missing from view")
}

func TestUpdateDelegateInvalidStatus(t *testing.T) {
	e, _, id := setup(t)
	beginEdit(t, e, id)

	bad := "Confirmed"
	if err := e.UpdateDelegate(id, "d1", rosterService.FieldUpdate{Status: &bad}); err == nil {
		t.Fatal("expected error for invalid status")
	}
}

func TestRemoveDelegate(t *testing.T) {
	e, _, id := setup(t)
	beginEdit(t, e, id)

	if err := e.RemoveDelegate(id, "d2"); err != nil {
		t.Fatalf("RemoveDelegate err: %v", err)
	}
	if err := e.RemoveDelegate(id, "missing"); !errors.Is(err, rosterService.ErrDelegateNotFound) {
		t.Fatalf("expected ErrDelegateNotFound, got %v", err)
	}

	view, _ := e.ViewTable(id, "Team A", "")
	if len(view.Delegates) != 1 || view.Delegates[0].ID != "d1" {
		t.Fatalf("unexpected rows: %+v", view.Delegates)
	}
}

func TestFilterMatchesAcrossFields(t *testing.T) {
	e, _, id := setup(t)

	// Filtering works in viewing mode against the committed snapshot.
	view, err := e.ViewTable(id, "Team A", "usa")
	if err != nil {
		t.Fatalf("ViewTable err: %v", err)
	}
	if len(view.Delegates) != 1 || view.Delegates[0].Name != "Ali" {
		t.Fatalf("allotment filter failed: %+v", view.Delegates)
	}

	view, _ = e.ViewTable(id, "Team B", "10-a")
	if len(view.Delegates) != 1 || view.Delegates[0].Name != "Bilal" {
		t.Fatalf("class filter failed: %+v", view.Delegates)
	}

	// Filter never crosses team boundaries.
	view, _ = e.ViewTable(id, "Team A", "china")
	if len(view.Delegates) != 0 {
		t.Fatalf("filter crossed teams: %+v", view.Delegates)
	}
}

func TestViewSuggestsNextTeam(t *testing.T) {
	e, _, id := setup(t)
	view, err := e.ViewTable(id, "", "")
	if err != nil {
		t.Fatalf("ViewTable err: %v", err)
	}
	if view.SuggestedTeam != "Team C" {
		t.Fatalf("suggested = %q, want Team C", view.SuggestedTeam)
	}
}
