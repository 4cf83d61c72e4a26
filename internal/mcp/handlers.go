package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ideabank/server/internal/domain"
	"github.com/ideabank/server/internal/service"
	"github.com/ideabank/server/internal/stats"
	"github.com/ideabank/server/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// taskItem is the JSON shape of a task in tool results. Tool output is
// always JSON, never formatted prose: user-supplied titles inside prose
// would be a prompt-injection vector for the calling agent.
type taskItem struct {
	ID           string     `json:"id"`
	EpicID       string     `json:"epic_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	Dependencies []string   `json:"dependencies"`
	Notes        []noteItem `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type noteItem struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

func toTaskItem(task *domain.Task, withNotes bool) taskItem {
	item := taskItem{
		ID:           task.ID,
		EpicID:       task.EpicID,
		Title:        task.Title,
		Description:  task.Description,
		Type:         string(task.Type),
		Status:       string(task.Status),
		Priority:     string(task.Priority),
		Dependencies: task.Dependencies,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
	if item.Dependencies == nil {
		item.Dependencies = []string{}
	}
	if withNotes {
		item.Notes = make([]noteItem, len(task.Notes))
		for i, n := range task.Notes {
			item.Notes[i] = noteItem{
				ID:        n.ID,
				Content:   n.Content,
				Type:      string(n.Type),
				Timestamp: n.Timestamp,
			}
		}
	}
	return item
}

func (s *Server) handleTaskGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("task_id")
	if err != nil {
		return ValidationError("task_id is required"), nil
	}

	task, err := s.store.LoadTask(ctx, id)
	if err != nil {
		return DomainError(err), nil
	}
	return jsonResult(toTaskItem(task, true))
}

func (s *Server) handleTaskList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := store.TaskFilter{EpicID: req.GetString("epic_id", "")}

	if v := req.GetString("status", ""); v != "" {
		status := domain.Status(v)
		if !status.IsValid() {
			return ValidationError(fmt.Sprintf("invalid status %q", v)), nil
		}
		filter.Statuses = []domain.Status{status}
	}
	if v := req.GetString("priority", ""); v != "" {
		priority := domain.Priority(v)
		if !priority.IsValid() {
			return ValidationError(fmt.Sprintf("invalid priority %q", v)), nil
		}
		filter.Priorities = []domain.Priority{priority}
	}
	if v := req.GetString("type", ""); v != "" {
		taskType := domain.TaskType(v)
		if !taskType.IsValid() {
			return ValidationError(fmt.Sprintf("invalid type %q", v)), nil
		}
		filter.Types = []domain.TaskType{taskType}
	}

	tasks, err := s.store.ListTasks(ctx, filter)
	if err != nil {
		return DomainError(err), nil
	}

	items := make([]taskItem, len(tasks))
	for i, task := range tasks {
		items[i] = toTaskItem(task, false)
	}
	return jsonResult(items)
}

func (s *Server) handleTaskCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	epicID, err := req.RequireString("epic_id")
	if err != nil {
		return ValidationError("epic_id is required"), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return ValidationError("title is required"), nil
	}

	deps, ok := stringSliceArg(req.GetArguments(), "dependencies")
	if !ok {
		return ValidationError("dependencies must be an array of strings"), nil
	}
	var depList []string
	if deps != nil {
		depList = *deps
	}

	task, err := s.taskService.CreateTask(ctx, service.CreateTaskParams{
		EpicID:       epicID,
		Title:        title,
		Description:  req.GetString("description", ""),
		Type:         domain.TaskType(req.GetString("type", "")),
		Priority:     domain.Priority(req.GetString("priority", "")),
		Dependencies: depList,
	})
	if err != nil {
		return DomainError(err), nil
	}
	return jsonResult(toTaskItem(task, false))
}

func (s *Server) handleTaskUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := req.RequireString("task_id")
	if err != nil {
		return ValidationError("task_id is required"), nil
	}

	raw := service.RawTaskUpdate{TaskID: taskID}
	args := req.GetArguments()
	for key, dst := range map[string]**string{
		"status":        &raw.Status,
		"priority":      &raw.Priority,
		"title":         &raw.Title,
		"description":   &raw.Description,
		"progress_note": &raw.ProgressNote,
		"progress_type": &raw.ProgressType,
	} {
		val, ok := stringArg(args, key)
		if !ok {
			return ValidationError(fmt.Sprintf("%s must be a string", key)), nil
		}
		*dst = val
	}

	deps, ok := stringSliceArg(args, "dependencies")
	if !ok {
		return ValidationError("dependencies must be an array of strings"), nil
	}
	raw.Dependencies = deps

	update, err := service.ValidateTaskUpdate(raw)
	if err != nil {
		return DomainError(err), nil
	}

	if !update.StartsWork() {
		if err := s.gate.Approve(ctx, taskID, update); err != nil {
			return RejectedError(err), nil
		}
	}

	result, err := s.taskService.ApplyTaskUpdate(ctx, taskID, update)
	if err != nil {
		return DomainError(err), nil
	}

	changes := result.Changes
	if changes == nil {
		changes = service.ChangeLog{}
	}
	return jsonResult(struct {
		Task    taskItem `json:"task"`
		Epic    string   `json:"epic"`
		Idea    string   `json:"idea"`
		Changes []string `json:"changes"`
	}{
		Task:    toTaskItem(result.Task, true),
		Epic:    result.EpicTitle,
		Idea:    result.IdeaTitle,
		Changes: changes,
	})
}

func (s *Server) handleIdeaGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("idea_id")
	if err != nil {
		return ValidationError("idea_id is required"), nil
	}

	idea, err := s.store.LoadIdea(ctx, id)
	if err != nil {
		return DomainError(err), nil
	}

	allTasks, err := s.store.LoadAllTasks(ctx)
	if err != nil {
		return DomainError(err), nil
	}
	ideaTasks := stats.TasksForIdea(idea, allTasks)
	completion := stats.CompletionRatio(ideaTasks)

	type epicItem struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Status   string `json:"status"`
		Priority string `json:"priority"`
	}
	epics := make([]epicItem, 0, len(idea.EpicIDs))
	for _, epicID := range idea.EpicIDs {
		epic, err := s.store.LoadEpic(ctx, epicID)
		if err != nil {
			if errors.Is(err, domain.ErrEpicNotFound) {
				continue
			}
			return DomainError(err), nil
		}
		epics = append(epics, epicItem{
			ID:       epic.ID,
			Title:    epic.Title,
			Status:   string(epic.Status),
			Priority: string(epic.Priority),
		})
	}

	return jsonResult(struct {
		ID          string         `json:"id"`
		Title       string         `json:"title"`
		Description string         `json:"description,omitempty"`
		Status      string         `json:"status"`
		Priority    string         `json:"priority"`
		Epics       []epicItem     `json:"epics"`
		ByStatus    map[string]int `json:"by_status"`
		ByPriority  map[string]int `json:"by_priority"`
		ByType      map[string]int `json:"by_type"`
		Done        int            `json:"done"`
		Total       int            `json:"total"`
		Percent     int            `json:"percent"`
	}{
		ID:          idea.ID,
		Title:       idea.Title,
		Description: idea.Description,
		Status:      string(idea.Status),
		Priority:    string(idea.Priority),
		Epics:       epics,
		ByStatus:    stringKeys(stats.StatusBreakdown(ideaTasks)),
		ByPriority:  stringKeys(stats.PriorityBreakdown(ideaTasks)),
		ByType:      stringKeys(stats.TypeBreakdown(ideaTasks)),
		Done:        completion.Done,
		Total:       completion.Total,
		Percent:     completion.Percent,
	})
}

// stringArg returns a pointer to the argument value when present, nil when
// absent, and ok=false when present but not a string. Presence matters: the
// engine distinguishes "field omitted" from "field present", so a malformed
// value must surface as a failure rather than collapse into absence.
func stringArg(args map[string]any, key string) (*string, bool) {
	raw, ok := args[key]
	if !ok {
		return nil, true
	}
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}
	return &s, true
}

// stringSliceArg returns the argument as a string slice pointer when
// present, nil when absent, and ok=false when present but malformed.
func stringSliceArg(args map[string]any, key string) (*[]string, bool) {
	raw, ok := args[key]
	if !ok {
		return nil, true
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	result := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		result = append(result, s)
	}
	return &result, true
}

func stringKeys[K ~string](m map[K]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
