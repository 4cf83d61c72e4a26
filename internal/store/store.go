// Package store defines the entity storage contract consumed by the task
// lifecycle engine and the tool surfaces, plus an in-memory implementation.
// The Postgres implementation lives in internal/repository.
package store

import (
	"context"

	"github.com/ideabank/server/internal/domain"
)

// TaskFilter narrows ListTasks results. Zero value matches everything.
type TaskFilter struct {
	EpicID     string
	Statuses   []domain.Status
	Priorities []domain.Priority
	Types      []domain.TaskType
}

// EntityStore is durable key-addressed storage for ideas, epics, and tasks.
//
// Lookups report absence with the domain sentinel errors (ErrTaskNotFound
// and friends); absence is a normal return, not a panic-worthy condition.
// SaveTask is a single whole-record write: it either lands completely or
// fails with no partial state.
type EntityStore interface {
	LoadIdea(ctx context.Context, id string) (*domain.Idea, error)
	LoadEpic(ctx context.Context, id string) (*domain.Epic, error)
	LoadTask(ctx context.Context, id string) (*domain.Task, error)
	LoadAllTasks(ctx context.Context) ([]*domain.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
	SaveTask(ctx context.Context, task *domain.Task) error
}
