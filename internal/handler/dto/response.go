package dto

import (
	"time"

	"github.com/ideabank/server/internal/domain"
	"github.com/ideabank/server/internal/service"
	"github.com/ideabank/server/internal/stats"
)

// ProgressNoteInfo represents one entry of a task's progress history.
type ProgressNoteInfo struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// TaskDetail represents the full task object.
type TaskDetail struct {
	ID           string             `json:"id"`
	EpicID       string             `json:"epic_id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Type         string             `json:"type"`
	Status       string             `json:"status"`
	Priority     string             `json:"priority"`
	Dependencies []string           `json:"dependencies"`
	Notes        []ProgressNoteInfo `json:"notes"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// UpdateTaskResponse represents the outcome of a task update: the task as
// persisted, its owning epic/idea titles, and the change log.
type UpdateTaskResponse struct {
	Task    TaskDetail `json:"task"`
	Epic    string     `json:"epic"`
	Idea    string     `json:"idea"`
	Changes []string   `json:"changes"`
}

// TasksListResponse represents the response for GET /tasks.
type TasksListResponse struct {
	Tasks []TaskDetail `json:"tasks"`
	Total int          `json:"total"`
}

// EpicInfo represents an epic inside an idea detail response.
type EpicInfo struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Tasks    int    `json:"tasks"`
	Done     int    `json:"done"`
}

// IdeaStats represents aggregated statistics over an idea's tasks.
type IdeaStats struct {
	ByStatus   map[string]int `json:"by_status"`
	ByPriority map[string]int `json:"by_priority"`
	ByType     map[string]int `json:"by_type"`
	Done       int            `json:"done"`
	Total      int            `json:"total"`
	Percent    int            `json:"percent"`
}

// IdeaDetailResponse represents an idea with its epics and task statistics.
type IdeaDetailResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Epics       []EpicInfo `json:"epics"`
	Stats       IdeaStats  `json:"stats"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToTaskDetail converts domain.Task to TaskDetail.
func ToTaskDetail(task *domain.Task) TaskDetail {
	notes := make([]ProgressNoteInfo, len(task.Notes))
	for i, n := range task.Notes {
		notes[i] = ProgressNoteInfo{
			ID:        n.ID,
			Content:   n.Content,
			Type:      string(n.Type),
			Timestamp: n.Timestamp,
		}
	}
	deps := task.Dependencies
	if deps == nil {
		deps = []string{}
	}
	return TaskDetail{
		ID:           task.ID,
		EpicID:       task.EpicID,
		Title:        task.Title,
		Description:  task.Description,
		Type:         string(task.Type),
		Status:       string(task.Status),
		Priority:     string(task.Priority),
		Dependencies: deps,
		Notes:        notes,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
}

// ToUpdateTaskResponse converts a service.UpdateResult.
func ToUpdateTaskResponse(result *service.UpdateResult) UpdateTaskResponse {
	changes := result.Changes
	if changes == nil {
		changes = service.ChangeLog{}
	}
	return UpdateTaskResponse{
		Task:    ToTaskDetail(result.Task),
		Epic:    result.EpicTitle,
		Idea:    result.IdeaTitle,
		Changes: changes,
	}
}

// ToIdeaStats converts aggregation results for one idea's tasks.
func ToIdeaStats(tasks []*domain.Task) IdeaStats {
	completion := stats.CompletionRatio(tasks)
	return IdeaStats{
		ByStatus:   stringKeys(stats.StatusBreakdown(tasks)),
		ByPriority: stringKeys(stats.PriorityBreakdown(tasks)),
		ByType:     stringKeys(stats.TypeBreakdown(tasks)),
		Done:       completion.Done,
		Total:      completion.Total,
		Percent:    completion.Percent,
	}
}

func stringKeys[K ~string](m map[K]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}
