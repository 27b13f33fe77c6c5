package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hashmun/hashmun/backend/internal/handler/table"
	workspaceHandler "github.com/hashmun/hashmun/backend/internal/handler/workspace"
	middlewarePkg "github.com/hashmun/hashmun/backend/internal/middleware"
	aiService "github.com/hashmun/hashmun/backend/internal/service/ai"
	rosterService "github.com/hashmun/hashmun/backend/internal/service/roster"
	workspaceService "github.com/hashmun/hashmun/backend/internal/service/workspace"
)

// NewRouter wires HTTP routes to core services. gateway may be nil when
// the AI credentials are absent; chat sends then fail fast with a
// configuration error.
func NewRouter(ws *workspaceService.Service, editor *rosterService.Editor, gateway *aiService.Gateway, aiTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	wsHandler := workspaceHandler.New(ws, gateway, aiTimeout)
	tableHandler := table.New(ws, editor)

	r.Route("/api", func(api chi.Router) {
		wsHandler.RegisterRoutes(api)
		tableHandler.RegisterRoutes(api)
	})

	return r
}
