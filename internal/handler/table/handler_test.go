package table

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hashmun/hashmun/backend/internal/model/roster"
	rosterService "github.com/hashmun/hashmun/backend/internal/service/roster"
	workspaceService "github.com/hashmun/hashmun/backend/internal/service/workspace"
	"github.com/hashmun/hashmun/backend/internal/store"
)

type seqIDs struct{ n int }

func (s *seqIDs) NewDelegateID() string { s.n++; return fmt.Sprintf("del-%d", s.n) }
func (s *seqIDs) NewSessionID() string  { s.n++; return fmt.Sprintf("sess-%d", s.n) }

func setupRouter(t *testing.T) (*chi.Mux, string) {
	t.Helper()
	st, err := store.New(store.DriverMemory)
	if err != nil {
		t.Fatalf("store.New err: %v", err)
	}
	ids := &seqIDs{}
	ws, err := workspaceService.NewService(context.Background(), st, ids)
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	session, _ := ws.CreateSession(context.Background())

	snap := &roster.Snapshot{
		ConferenceName: "HASH Model UN 2026",
		Delegates: []roster.Delegate{
			{ID: "d1", Name: "Ali", Allotment: "USA", Committee: "UNSC", Status: roster.StatusAllocated, Team: "Team A"},
			{ID: "d2", Name: "Sara", Allotment: "France", Committee: "DISEC", Status: roster.StatusPending, Team: "Team B"},
		},
	}
	if err := ws.ReplaceSnapshot(context.Background(), session.ID, snap); err != nil {
		t.Fatalf("ReplaceSnapshot err: %v", err)
	}

	handler := New(ws, rosterService.NewEditor(ws, ids))
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, session.ID
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeView(t *testing.T, resp *httptest.ResponseRecorder) rosterService.View {
	t.Helper()
	var view rosterService.View
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("decoding view: %v", err)
	}
	return view
}

func TestViewTable(t *testing.T) {
	r, id := setupRouter(t)

	resp := doJSON(t, r, http.MethodGet, "/sessions/"+id+"/table?team=Team+B&query=france", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	view := decodeView(t, resp)
	if view.Editing {
		t.Fatal("viewing mode expected")
	}
	if len(view.Delegates) != 1 || view.Delegates[0].Name != "Sara" {
		t.Fatalf("unexpected rows: %+v", view.Delegates)
	}
}

func TestEditSaveFlow(t *testing.T) {
	r, id := setupRouter(t)

	resp := doJSON(t, r, http.MethodPost, "/sessions/"+id+"/table/edit", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("edit: expected 200, got %d", resp.Code)
	}
	if view := decodeView(t, resp); !view.Editing {
		t.Fatal("expected editing mode")
	}

	resp = doJSON(t, r, http.MethodPost, "/sessions/"+id+"/table/delegates", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("add delegate: expected 201, got %d", resp.Code)
	}

	resp = doJSON(t, r, http.MethodPost, "/sessions/"+id+"/table/save", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("save: expected 200, got %d", resp.Code)
	}
	view := decodeView(t, resp)
	if view.Editing {
		t.Fatal("expected viewing mode after save")
	}
	// The blank row joined Team A, the initial active tab.
	if len(view.Delegates) != 2 {
		t.Fatalf("saved rows missing: %+v", view.Delegates)
	}
}

func TestAddDuplicateTeam(t *testing.T) {
	r, id := setupRouter(t)
	doJSON(t, r, http.MethodPost, "/sessions/"+id+"/table/edit", nil)

	resp := doJSON(t, r, http.MethodPost, "/sessions/"+id+"/table/teams",
		map[string]string{"name": "Team A"})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestDeleteTeamRequiresConfirmation(t *testing.T) {
	r, id := setupRouter(t)
	doJSON(t, r, http.MethodPost, "/sessions/"+id+"/table/edit", nil)

	resp := doJSON(t, r, http.MethodDelete, "/sessions/"+id+"/table/teams", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without confirm, got %d", resp.Code)
	}

	resp = doJSON(t, r, http.MethodDelete, "/sessions/"+id+"/table/teams?confirm=true", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with confirm, got %d", resp.Code)
	}
	view := decodeView(t, resp)
	if view.ActiveTeam != "Team B" {
		t.Fatalf("active = %q, want fallback Team B", view.ActiveTeam)
	}
}

func TestExportHeadersAndBody(t *testing.T) {
	r, id := setupRouter(t)

	resp := doJSON(t, r, http.MethodGet, "/sessions/"+id+"/export?format=doc", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/vnd.ms-word" {
		t.Fatalf("content type = %q", ct)
	}
	disposition := resp.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "HASHMUN_HASH_Model_UN_2026_Master.doc") {
		t.Fatalf("disposition = %q", disposition)
	}
	if !strings.Contains(resp.Body.String(), "<h2>Team A</h2>") {
		t.Fatal("doc body missing team heading")
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	r, id := setupRouter(t)

	resp := doJSON(t, r, http.MethodGet, "/sessions/"+id+"/export?format=xlsx", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestExportReflectsCommittedStateOnly(t *testing.T) {
	r, id := setupRouter(t)

	doJSON(t, r, http.MethodPost, "/sessions/"+id+"/table/edit", nil)
	doJSON(t, r, http.MethodPost, "/sessions/"+id+"/table/teams", map[string]string{"name": "Team Z"})

	resp := doJSON(t, r, http.MethodGet, "/sessions/"+id+"/export?format=md", nil)
	if strings.Contains(resp.Body.String(), "Team Z") {
		t.Fatal("export leaked the working copy")
	}
}

func TestPrintSurface(t *testing.T) {
	r, id := setupRouter(t)

	resp := doJSON(t, r, http.MethodGet, "/sessions/"+id+"/print", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, want := range []string{"HASH Model UN 2026", "Team A", "Team B"} {
		if !strings.Contains(body, want) {
			t.Fatalf("print output missing %q", want)
		}
	}
}

func TestTableOpsUnknownSession(t *testing.T) {
	r, _ := setupRouter(t)

	resp := doJSON(t, r, http.MethodPost, "/sessions/missing/table/edit", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
