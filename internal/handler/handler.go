package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ideabank/server/internal/handler/dto"
	"github.com/ideabank/server/internal/service"
	"github.com/ideabank/server/internal/static"
	"github.com/ideabank/server/internal/store"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	store       store.EntityStore
	taskService *service.TaskService
	gate        service.ApprovalGate
}

// New creates a new Handler instance. A nil gate defaults to allow-all.
func New(st store.EntityStore, gate service.ApprovalGate, opts ...service.Option) *Handler {
	if gate == nil {
		gate = service.AllowAllGate{}
	}
	return &Handler{
		store:       st,
		taskService: service.NewTaskService(st, opts...),
		gate:        gate,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Instructions for AI agents
	mux.HandleFunc("GET /skill.md", h.handleSkillMd)

	// API v1 routes
	mux.HandleFunc("GET /api/v1/ideas/{id}", h.handleGetIdea)
	mux.HandleFunc("GET /api/v1/tasks", h.handleListTasks)
	mux.HandleFunc("POST /api/v1/tasks", h.handleCreateTask)
	mux.HandleFunc("GET /api/v1/tasks/{id}", h.handleGetTask)
	mux.HandleFunc("PATCH /api/v1/tasks/{id}", h.handleUpdateTask)
}

// handleHealthz returns 200 OK if the store is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.LoadAllTasks(r.Context()); err != nil {
		slog.Error("store health check failed", "error", err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleSkillMd serves the embedded skill.md file for AI agents.
func (h *Handler) handleSkillMd(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(static.SkillMd))
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}
