package table

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hashmun/hashmun/backend/internal/service/export"
	rosterService "github.com/hashmun/hashmun/backend/internal/service/roster"
	workspaceService "github.com/hashmun/hashmun/backend/internal/service/workspace"
	"github.com/hashmun/hashmun/backend/pkg/utils"
)

// Handler serves the table editor operations plus the export and print
// projections of the committed snapshot.
type Handler struct {
	ws     *workspaceService.Service
	editor *rosterService.Editor
}

// New creates the table handler.
func New(ws *workspaceService.Service, editor *rosterService.Editor) *Handler {
	return &Handler{ws: ws, editor: editor}
}

// RegisterRoutes mounts the table routes under a session.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions/{sessionID}/table", func(t chi.Router) {
		t.Get("/", h.handleView)
		t.Post("/edit", h.handleBeginEdit)
		t.Post("/save", h.handleSave)
		t.Post("/cancel", h.handleCancel)
		t.Put("/conference-name", h.handleSetConferenceName)
		t.Post("/delegates", h.handleAddDelegate)
		t.Patch("/delegates/{delegateID}", h.handleUpdateDelegate)
		t.Delete("/delegates/{delegateID}", h.handleRemoveDelegate)
		t.Post("/teams", h.handleAddTeam)
		t.Post("/teams/rename", h.handleRenameTeam)
		t.Delete("/teams", h.handleDeleteTeam)
		t.Post("/teams/activate", h.handleActivateTeam)
	})
	r.Get("/sessions/{sessionID}/export", h.handleExport)
	r.Get("/sessions/{sessionID}/print", h.handlePrint)
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	view, err := h.editor.ViewTable(id, r.URL.Query().Get("team"), r.URL.Query().Get("query"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := h.editor.Begin(id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondView(w, id)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := h.editor.Save(r.Context(), id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondView(w, id)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := h.editor.Cancel(id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondView(w, id)
}

func (h *Handler) handleSetConferenceName(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.editor.SetConferenceName(id, payload.Name); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondView(w, id)
}

func (h *Handler) handleAddDelegate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	delegate, err := h.editor.AddDelegate(id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, delegate)
}

func (h *Handler) handleUpdateDelegate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	delegateID := chi.URLParam(r, "delegateID")

	var payload rosterService.FieldUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.editor.UpdateDelegate(id, delegateID, payload); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondView(w, id)
}

func (h *Handler) handleRemoveDelegate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	delegateID := chi.URLParam(r, "delegateID")

	if err := h.editor.RemoveDelegate(id, delegateID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondView(w, id)
}

func (h *Handler) handleAddTeam(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.editor.AddTeam(id, payload.Name); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondView(w, id)
}

func (h *Handler) handleRenameTeam(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.editor.RenameTeam(id, payload.Name); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondView(w, id)
}

// handleDeleteTeam cascades to every delegate of the active team, so the
// caller must state confirm=true explicitly.
func (h *Handler) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	if r.URL.Query().Get("confirm") != "true" {
		utils.RespondError(w, http.StatusBadRequest,
			"deleting a team removes all its delegates; pass confirm=true to proceed")
		return
	}

	if err := h.editor.DeleteTeam(id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondView(w, id)
}

func (h *Handler) handleActivateTeam(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.editor.SetActiveTeam(id, payload.Name); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondView(w, id)
}

// handleExport downloads the committed snapshot in the requested format.
// Working copies are never exported.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	session, err := h.ws.Session(id)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "doc"
	}
	exporter, err := export.NewExporter(format)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := session.Snapshot
	conferenceName := ""
	if snap != nil {
		conferenceName = snap.ConferenceName
	}

	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(conferenceName, exporter.Extension())))
	if err := exporter.Export(snap, w); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "export failed")
	}
}

// handlePrint renders the committed snapshot as a standalone HTML page for
// browser print-to-PDF.
func (h *Handler) handlePrint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	session, err := h.ws.Session(id)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := export.RenderPrint(session.Snapshot, w); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "print render failed")
	}
}

func (h *Handler) respondView(w http.ResponseWriter, sessionID string) {
	view, err := h.editor.ViewTable(sessionID, "", "")
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workspaceService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, rosterService.ErrDelegateNotFound):
		utils.RespondError(w, http.StatusNotFound, "delegate not found")
	case errors.Is(err, rosterService.ErrDuplicateTeam):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, rosterService.ErrEmptyTeamName),
		errors.Is(err, rosterService.ErrUnknownTeam),
		errors.Is(err, rosterService.ErrNotEditing):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
