package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ideabank/server/internal/domain"
	"github.com/ideabank/server/internal/handler/dto"
	"github.com/ideabank/server/internal/service"
	"github.com/ideabank/server/internal/store"
)

// handleUpdateTask applies a change request to one task.
// Status, priority, title, description, dependencies, and a progress note
// may be updated in one request; omitted fields are left untouched. An
// explicitly empty dependencies array clears all dependencies.
func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID := r.PathValue("id")
	if taskID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "task id is required")
		return
	}

	var req dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	update, err := service.ValidateTaskUpdate(service.RawTaskUpdate{
		TaskID:       taskID,
		Status:       req.Status,
		Priority:     req.Priority,
		Title:        req.Title,
		Description:  req.Description,
		Dependencies: req.Dependencies,
		ProgressNote: req.ProgressNote,
		ProgressType: req.ProgressType,
	})
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	// "Start work" transitions bypass the approval gate; everything else
	// is subject to it.
	if !update.StartsWork() {
		if err := h.gate.Approve(ctx, taskID, update); err != nil {
			respondError(w, http.StatusForbidden, "UPDATE_REJECTED", err.Error())
			return
		}
	}

	result, err := h.taskService.ApplyTaskUpdate(ctx, taskID, update)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToUpdateTaskResponse(result))
}

// handleCreateTask creates a new pending task under an existing epic.
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(ctx, service.CreateTaskParams{
		EpicID:       req.EpicID,
		Title:        req.Title,
		Description:  req.Description,
		Type:         domain.TaskType(req.Type),
		Priority:     domain.Priority(req.Priority),
		Dependencies: req.Dependencies,
	})
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToTaskDetail(task))
}

// handleGetTask retrieves task details including the progress history.
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID := r.PathValue("id")
	if taskID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "task id is required")
		return
	}

	task, err := h.store.LoadTask(ctx, taskID)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskDetail(task))
}

// handleListTasks returns tasks with optional filters:
// ?epic=<id>&status=pending,blocked&priority=high&type=bug
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := store.TaskFilter{EpicID: query.Get("epic")}

	for _, s := range splitAndTrim(query.Get("status"), ",") {
		status := domain.Status(s)
		if !status.IsValid() {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid status filter: "+s)
			return
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	for _, p := range splitAndTrim(query.Get("priority"), ",") {
		priority := domain.Priority(p)
		if !priority.IsValid() {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid priority filter: "+p)
			return
		}
		filter.Priorities = append(filter.Priorities, priority)
	}
	for _, t := range splitAndTrim(query.Get("type"), ",") {
		taskType := domain.TaskType(t)
		if !taskType.IsValid() {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid type filter: "+t)
			return
		}
		filter.Types = append(filter.Types, taskType)
	}

	tasks, err := h.store.ListTasks(ctx, filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list tasks")
		return
	}

	items := make([]dto.TaskDetail, len(tasks))
	for i, task := range tasks {
		items[i] = dto.ToTaskDetail(task)
	}

	respondJSON(w, http.StatusOK, dto.TasksListResponse{
		Tasks: items,
		Total: len(items),
	})
}

// splitAndTrim splits a string by delimiter and trims whitespace.
func splitAndTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
