package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ideabank/server/internal/domain"
	"github.com/ideabank/server/internal/store"
)

// Store is the Postgres-backed entity store. It bundles the per-entity
// repositories behind the store.EntityStore contract.
type Store struct {
	tasks *TaskRepository
	epics *EpicRepository
	ideas *IdeaRepository
}

// New creates a Store over the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		tasks: NewTaskRepository(pool),
		epics: NewEpicRepository(pool),
		ideas: NewIdeaRepository(pool),
	}
}

// LoadIdea retrieves an idea by id.
func (s *Store) LoadIdea(ctx context.Context, id string) (*domain.Idea, error) {
	return s.ideas.GetByID(ctx, id)
}

// LoadEpic retrieves an epic by id.
func (s *Store) LoadEpic(ctx context.Context, id string) (*domain.Epic, error) {
	return s.epics.GetByID(ctx, id)
}

// LoadTask retrieves a task by id.
func (s *Store) LoadTask(ctx context.Context, id string) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

// LoadAllTasks retrieves every task.
func (s *Store) LoadAllTasks(ctx context.Context) ([]*domain.Task, error) {
	return s.tasks.GetAll(ctx)
}

// ListTasks retrieves tasks matching the filter.
func (s *Store) ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	return s.tasks.List(ctx, filter)
}

// SaveTask writes the whole task record.
func (s *Store) SaveTask(ctx context.Context, task *domain.Task) error {
	return s.tasks.Save(ctx, task)
}

var _ store.EntityStore = (*Store)(nil)
