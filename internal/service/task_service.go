package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ideabank/server/internal/domain"
	"github.com/ideabank/server/internal/store"
)

const maxDependencyDepth = 100

// unknownContext is the placeholder used when a task's owning epic or idea
// cannot be resolved. A dangling reference degrades the report, it never
// blocks the mutation.
const unknownContext = "Unknown"

// ChangeLog is the ordered, human-readable list of field deltas produced by
// one update operation.
type ChangeLog []string

func (c *ChangeLog) addf(format string, args ...any) {
	*c = append(*c, fmt.Sprintf(format, args...))
}

// UpdateResult carries the outcome of ApplyTaskUpdate: the task as now
// persisted (or unchanged for an empty diff), the titles of its owning epic
// and idea for contextual reporting, and the change log.
type UpdateResult struct {
	Task      *domain.Task
	EpicTitle string
	IdeaTitle string
	Changes   ChangeLog
}

// TaskService coordinates task lifecycle operations against the entity store.
type TaskService struct {
	store store.EntityStore
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	// createMu serializes id allocation across CreateTask calls.
	createMu sync.Mutex
}

// Option configures a TaskService.
type Option func(*TaskService)

// WithClock injects the time source used for updatedAt and note timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) { s.now = now }
}

// NewTaskService creates a new TaskService.
func NewTaskService(st store.EntityStore, opts ...Option) *TaskService {
	s := &TaskService{
		store: st,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lockTask serializes updates per task id. Two concurrent updates to the
// same task run one after the other instead of silently overwriting each
// other's fields.
func (s *TaskService) lockTask(taskID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[taskID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[taskID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// ApplyTaskUpdate applies a validated change request to one task.
//
// Fields equal to the current value are silently ignored. A progress note,
// when present, is always appended. The record is persisted, and updatedAt
// refreshed, only when the resulting change log is non-empty; an empty diff
// is a successful zero-change result, not an error.
func (s *TaskService) ApplyTaskUpdate(ctx context.Context, taskID string, update TaskUpdate) (*UpdateResult, error) {
	unlock := s.lockTask(taskID)
	defer unlock()

	task, err := s.store.LoadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	epicTitle, ideaTitle := s.resolveContext(ctx, task.EpicID)

	now := s.now()
	var changes ChangeLog

	if update.Status != nil && *update.Status != task.Status {
		changes.addf("Status: %s → %s", task.Status, *update.Status)
		task.Status = *update.Status
	}

	if update.Priority != nil && *update.Priority != task.Priority {
		changes.addf("Priority: %s → %s", task.Priority, *update.Priority)
		task.Priority = *update.Priority
	}

	if update.Title != nil && *update.Title != task.Title {
		changes.addf("Title: %q → %q", task.Title, *update.Title)
		task.Title = *update.Title
	}

	if update.Description != nil && *update.Description != task.Description {
		changes.addf("Description updated")
		task.Description = *update.Description
	}

	if update.Dependencies != nil {
		added, removed := diffDependencies(task.Dependencies, *update.Dependencies)
		if len(added) > 0 || len(removed) > 0 {
			if err := s.checkDependencies(ctx, task.ID, *update.Dependencies); err != nil {
				return nil, err
			}
			task.Dependencies = *update.Dependencies
			if len(added) > 0 {
				changes.addf("Dependencies: added %s", strings.Join(added, ", "))
			}
			if len(removed) > 0 {
				changes.addf("Dependencies: removed %s", strings.Join(removed, ", "))
			}
		}
	}

	if update.ProgressNote != nil {
		noteType := domain.NoteTypeUpdate
		if update.NoteType != nil {
			noteType = *update.NoteType
		}
		task.Notes = append(task.Notes, domain.ProgressNote{
			ID:        newNoteID(now),
			TaskID:    task.ID,
			Content:   *update.ProgressNote,
			Type:      noteType,
			Timestamp: now,
		})
		changes.addf("Added progress note: %q", *update.ProgressNote)
	}

	result := &UpdateResult{
		Task:      task,
		EpicTitle: epicTitle,
		IdeaTitle: ideaTitle,
		Changes:   changes,
	}

	if len(changes) == 0 {
		return result, nil
	}

	task.UpdatedAt = now
	if err := s.store.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("%w: save task %s: %v", domain.ErrPersistence, task.ID, err)
	}

	slog.Info("task updated",
		"task_id", task.ID,
		"changes", len(changes),
	)

	return result, nil
}

// resolveContext loads the owning epic and, transitively, the owning idea.
// Their absence does not block the mutation; titles fall back to a
// placeholder.
func (s *TaskService) resolveContext(ctx context.Context, epicID string) (epicTitle, ideaTitle string) {
	epicTitle, ideaTitle = unknownContext, unknownContext

	epic, err := s.store.LoadEpic(ctx, epicID)
	if err != nil {
		if !errors.Is(err, domain.ErrEpicNotFound) {
			slog.Warn("failed to load epic for context", "epic_id", epicID, "error", err)
		}
		return epicTitle, ideaTitle
	}
	epicTitle = epic.Title

	idea, err := s.store.LoadIdea(ctx, epic.IdeaID)
	if err != nil {
		if !errors.Is(err, domain.ErrIdeaNotFound) {
			slog.Warn("failed to load idea for context", "idea_id", epic.IdeaID, "error", err)
		}
		return epicTitle, ideaTitle
	}
	ideaTitle = idea.Title

	return epicTitle, ideaTitle
}

// checkDependencies verifies every id in the requested set resolves to an
// existing task and that the new set introduces no cycle. It runs before
// any mutation is applied, so a failure leaves the stored record untouched.
func (s *TaskService) checkDependencies(ctx context.Context, taskID string, requested []string) error {
	for _, dep := range requested {
		if _, err := s.store.LoadTask(ctx, dep); err != nil {
			if errors.Is(err, domain.ErrTaskNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrDependencyNotFound, dep)
			}
			return fmt.Errorf("load dependency %s: %w", dep, err)
		}
	}

	// Walk the dependency graph from each requested id; reaching the task
	// being updated means the requested set closes a cycle.
	visited := make(map[string]bool)
	for _, dep := range requested {
		if err := s.walkDependencies(ctx, taskID, dep, visited, 0); err != nil {
			return err
		}
	}
	return nil
}

func (s *TaskService) walkDependencies(ctx context.Context, rootID, currentID string, visited map[string]bool, depth int) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("dependency check cancelled: %w", ctx.Err())
	default:
	}

	if depth > maxDependencyDepth {
		return fmt.Errorf("%w: dependency chain exceeds maximum depth of %d", domain.ErrCyclicDependency, maxDependencyDepth)
	}

	if currentID == rootID {
		return fmt.Errorf("%w: task %s is reachable from its own dependencies", domain.ErrCyclicDependency, rootID)
	}
	if visited[currentID] {
		return nil
	}
	visited[currentID] = true

	task, err := s.store.LoadTask(ctx, currentID)
	if err != nil {
		// Dangling transitive references are treated as leaves; only the
		// directly requested set is required to resolve.
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil
		}
		return fmt.Errorf("load task %s: %w", currentID, err)
	}

	for _, dep := range task.Dependencies {
		if err := s.walkDependencies(ctx, rootID, dep, visited, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// diffDependencies computes the set difference between the current and
// requested dependency lists.
func diffDependencies(current, requested []string) (added, removed []string) {
	currentSet := make(map[string]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	requestedSet := make(map[string]struct{}, len(requested))
	for _, id := range requested {
		requestedSet[id] = struct{}{}
	}

	for _, id := range requested {
		if _, ok := currentSet[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range current {
		if _, ok := requestedSet[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}

// newNoteID derives a note id from the operation time. The uuid suffix
// keeps ids unique when two notes land within the same millisecond.
func newNoteID(now time.Time) string {
	return "note-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + uuid.NewString()[:8]
}
