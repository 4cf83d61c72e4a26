package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ideabank/server/internal/domain"
	"github.com/ideabank/server/internal/handler/dto"
	"github.com/ideabank/server/internal/stats"
)

// handleGetIdea retrieves an idea with its epics and task statistics.
func (h *Handler) handleGetIdea(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ideaID := r.PathValue("id")
	if ideaID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "idea id is required")
		return
	}

	idea, err := h.store.LoadIdea(ctx, ideaID)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	allTasks, err := h.store.LoadAllTasks(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load tasks")
		return
	}
	ideaTasks := stats.TasksForIdea(idea, allTasks)

	epics := make([]dto.EpicInfo, 0, len(idea.EpicIDs))
	for _, epicID := range idea.EpicIDs {
		epic, err := h.store.LoadEpic(ctx, epicID)
		if err != nil {
			// A dangling epic reference degrades the listing instead of
			// failing the whole request.
			if !errors.Is(err, domain.ErrEpicNotFound) {
				slog.Warn("failed to load epic", "epic_id", epicID, "error", err)
			}
			continue
		}

		var epicTasks []*domain.Task
		for _, t := range ideaTasks {
			if t.EpicID == epic.ID {
				epicTasks = append(epicTasks, t)
			}
		}
		completion := stats.CompletionRatio(epicTasks)

		epics = append(epics, dto.EpicInfo{
			ID:       epic.ID,
			Title:    epic.Title,
			Status:   string(epic.Status),
			Priority: string(epic.Priority),
			Tasks:    completion.Total,
			Done:     completion.Done,
		})
	}

	respondJSON(w, http.StatusOK, dto.IdeaDetailResponse{
		ID:          idea.ID,
		Title:       idea.Title,
		Description: idea.Description,
		Status:      string(idea.Status),
		Priority:    string(idea.Priority),
		Epics:       epics,
		Stats:       dto.ToIdeaStats(ideaTasks),
		CreatedAt:   idea.CreatedAt,
		UpdatedAt:   idea.UpdatedAt,
	})
}
