package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ideabank/server/internal/domain"
)

// taskIDPrefix is the textual prefix for allocated task ids. Existing ids
// are otherwise treated as opaque strings.
const taskIDPrefix = "TSK"

// CreateTaskParams holds the input for CreateTask. Type and Priority
// default to feature/medium when empty.
type CreateTaskParams struct {
	EpicID       string
	Title        string
	Description  string
	Type         domain.TaskType
	Priority     domain.Priority
	Dependencies []string
}

// CreateTask allocates the next task id and persists a new pending task
// under an existing epic.
func (s *TaskService) CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error) {
	if params.Title == "" {
		return nil, domain.ErrEmptyTitle
	}

	if params.Type == "" {
		params.Type = domain.TaskTypeFeature
	}
	if !params.Type.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTaskType, params.Type)
	}

	if params.Priority == "" {
		params.Priority = domain.PriorityMedium
	}
	if !params.Priority.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPriority, params.Priority)
	}

	if _, err := s.store.LoadEpic(ctx, params.EpicID); err != nil {
		return nil, err
	}

	deps := dedupe(params.Dependencies)
	for _, dep := range deps {
		if _, err := s.store.LoadTask(ctx, dep); err != nil {
			if errors.Is(err, domain.ErrTaskNotFound) {
				return nil, fmt.Errorf("%w: %s", domain.ErrDependencyNotFound, dep)
			}
			return nil, fmt.Errorf("load dependency %s: %w", dep, err)
		}
	}

	// Allocation and the insert must not interleave with another create:
	// both would read the same max suffix and the save upsert would let the
	// second overwrite the first.
	s.createMu.Lock()
	defer s.createMu.Unlock()

	id, err := s.nextTaskID(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	task := &domain.Task{
		ID:           id,
		EpicID:       params.EpicID,
		Title:        params.Title,
		Description:  params.Description,
		Type:         params.Type,
		Status:       domain.StatusPending,
		Priority:     params.Priority,
		Dependencies: deps,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("%w: save task %s: %v", domain.ErrPersistence, task.ID, err)
	}

	slog.Info("task created",
		"task_id", task.ID,
		"epic_id", task.EpicID,
	)

	return task, nil
}

// nextTaskID scans existing tasks for the highest numeric suffix and
// allocates the one after it.
func (s *TaskService) nextTaskID(ctx context.Context) (string, error) {
	tasks, err := s.store.LoadAllTasks(ctx)
	if err != nil {
		return "", fmt.Errorf("load tasks for id allocation: %w", err)
	}

	max := 0
	for _, t := range tasks {
		suffix, ok := strings.CutPrefix(t.ID, taskIDPrefix+"-")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}

	return fmt.Sprintf("%s-%d", taskIDPrefix, max+1), nil
}
