package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hashmun/hashmun/backend/internal/model/settings"
	"github.com/hashmun/hashmun/backend/internal/service/ai"
	workspaceService "github.com/hashmun/hashmun/backend/internal/service/workspace"
	"github.com/hashmun/hashmun/backend/pkg/utils"
)

// Handler serves the session list, the chat flow and the settings record.
type Handler struct {
	ws        *workspaceService.Service
	gateway   *ai.Gateway
	aiTimeout time.Duration
}

// New creates the workspace handler. gateway may be nil; sends then fail
// with a configuration error before any I/O.
func New(ws *workspaceService.Service, gateway *ai.Gateway, aiTimeout time.Duration) *Handler {
	return &Handler{ws: ws, gateway: gateway, aiTimeout: aiTimeout}
}

// RegisterRoutes mounts the workspace routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/workspace", h.handleGetWorkspace)
	r.Post("/sessions", h.handleCreateSession)
	r.Post("/sessions/{sessionID}/select", h.handleSelectSession)
	r.Delete("/sessions/{sessionID}", h.handleDeleteSession)
	r.Post("/sessions/{sessionID}/messages", h.handleSendMessage)
	r.Get("/settings", h.handleGetSettings)
	r.Put("/settings", h.handleUpdateSettings)
}

func (h *Handler) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessions":  h.ws.Sessions(),
		"currentId": h.ws.CurrentID(),
		"view":      h.ws.View(),
	})
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.ws.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleSelectSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	// The service treats unknown IDs as a no-op; the HTTP surface
	// pre-validates so callers get a real 404.
	if _, err := h.ws.Session(id); err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	h.ws.SelectSession(id)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"currentId": id})
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := h.ws.DeleteSession(r.Context(), id); err != nil {
		if errors.Is(err, workspaceService.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSendMessage runs the chat flow: the user message is appended and
// persisted before the model call, so it survives any failure and a retry
// is just sending again.
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Content) == "" {
		utils.RespondError(w, http.StatusBadRequest, "content is required")
		return
	}

	session, err := h.ws.Session(id)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	if _, err := h.ws.AppendUserMessage(r.Context(), id, payload.Content); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.gateway == nil {
		utils.RespondError(w, http.StatusServiceUnavailable,
			"AI is not configured. Please check your environment configuration.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.aiTimeout)
	defer cancel()

	result, err := h.gateway.Process(ctx, payload.Content, session.Snapshot)
	if err != nil {
		log.Printf("[workspace] AI request failed for session=%s: %v", id, err)
		if errors.Is(err, ai.ErrMalformedResponse) {
			utils.RespondError(w, http.StatusBadGateway, "Failed to process the AI response.")
			return
		}
		utils.RespondError(w, http.StatusBadGateway,
			"Failed to process request. Please check your internet connection.")
		return
	}

	aiContent := result.Message
	if result.Type == ai.TypeData {
		if aiContent == "" {
			aiContent = "I've updated the committee matrix for you."
		}
		if err := h.ws.ReplaceSnapshot(r.Context(), id, result.Data); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		_ = h.ws.SetView(workspaceService.ViewTable)
	} else if aiContent == "" {
		aiContent = "I acknowledged that."
	}

	aiMsg, err := h.ws.AppendAIMessage(r.Context(), id, aiContent)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message": aiMsg,
		"type":    result.Type,
		"view":    h.ws.View(),
	})
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.ws.Settings())
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var payload settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.ws.UpdateSettings(r.Context(), payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.ws.Settings())
}
