package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/ideabank/server/internal/domain"
)

// Memory is an in-process EntityStore. It backs the ephemeral MCP mode and
// the unit test suites. All records are deep-copied on the way in and out,
// so callers can never mutate store state except through SaveTask.
type Memory struct {
	mu    sync.RWMutex
	ideas map[string]*domain.Idea
	epics map[string]*domain.Epic
	tasks map[string]*domain.Task
	order []string // task insertion order, for stable listings
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		ideas: make(map[string]*domain.Idea),
		epics: make(map[string]*domain.Epic),
		tasks: make(map[string]*domain.Task),
	}
}

// PutIdea inserts or replaces an idea record.
func (m *Memory) PutIdea(idea *domain.Idea) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ideas[idea.ID] = idea.Clone()
}

// PutEpic inserts or replaces an epic record.
func (m *Memory) PutEpic(epic *domain.Epic) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epics[epic.ID] = epic.Clone()
}

// PutTask inserts or replaces a task record.
func (m *Memory) PutTask(task *domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tasks[task.ID]; !exists {
		m.order = append(m.order, task.ID)
	}
	m.tasks[task.ID] = task.Clone()
}

// LoadIdea retrieves an idea by id.
func (m *Memory) LoadIdea(_ context.Context, id string) (*domain.Idea, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idea, ok := m.ideas[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrIdeaNotFound, id)
	}
	return idea.Clone(), nil
}

// LoadEpic retrieves an epic by id.
func (m *Memory) LoadEpic(_ context.Context, id string) (*domain.Epic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	epic, ok := m.epics[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrEpicNotFound, id)
	}
	return epic.Clone(), nil
}

// LoadTask retrieves a task by id.
func (m *Memory) LoadTask(_ context.Context, id string) (*domain.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	task, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	return task.Clone(), nil
}

// LoadAllTasks retrieves every task in insertion order.
func (m *Memory) LoadAllTasks(_ context.Context) ([]*domain.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tasks := make([]*domain.Task, 0, len(m.order))
	for _, id := range m.order {
		tasks = append(tasks, m.tasks[id].Clone())
	}
	return tasks, nil
}

// ListTasks retrieves tasks matching the filter, in insertion order.
func (m *Memory) ListTasks(_ context.Context, filter TaskFilter) ([]*domain.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var tasks []*domain.Task
	for _, id := range m.order {
		task := m.tasks[id]
		if !matches(task, filter) {
			continue
		}
		tasks = append(tasks, task.Clone())
	}
	return tasks, nil
}

// SaveTask writes the whole task record.
func (m *Memory) SaveTask(_ context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tasks[task.ID]; !exists {
		m.order = append(m.order, task.ID)
	}
	m.tasks[task.ID] = task.Clone()
	return nil
}

func matches(task *domain.Task, filter TaskFilter) bool {
	if filter.EpicID != "" && task.EpicID != filter.EpicID {
		return false
	}
	if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, task.Status) {
		return false
	}
	if len(filter.Priorities) > 0 && !slices.Contains(filter.Priorities, task.Priority) {
		return false
	}
	if len(filter.Types) > 0 && !slices.Contains(filter.Types, task.Type) {
		return false
	}
	return true
}

var _ EntityStore = (*Memory)(nil)
