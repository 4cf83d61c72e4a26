package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ideabank/server/internal/domain"
	"github.com/ideabank/server/internal/store"
)

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "epic_id", "title", "description", "type", "status", "priority",
	"dependencies", "progress_notes", "created_at", "updated_at",
}

// TaskRepository handles database operations for tasks.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// noteRecord is the jsonb shape of one progress note inside the task row.
type noteRecord struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

func encodeNotes(notes []domain.ProgressNote) ([]byte, error) {
	records := make([]noteRecord, len(notes))
	for i, n := range notes {
		records[i] = noteRecord{
			ID:        n.ID,
			TaskID:    n.TaskID,
			Content:   n.Content,
			Type:      string(n.Type),
			Timestamp: n.Timestamp,
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode progress notes: %w", err)
	}
	return data, nil
}

func decodeNotes(data []byte) ([]domain.ProgressNote, error) {
	var records []noteRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse progress_notes: %w", err)
	}
	notes := make([]domain.ProgressNote, len(records))
	for i, r := range records {
		notes[i] = domain.ProgressNote{
			ID:        r.ID,
			TaskID:    r.TaskID,
			Content:   r.Content,
			Type:      domain.NoteType(r.Type),
			Timestamp: r.Timestamp,
		}
	}
	return notes, nil
}

// scanTask scans a single row into a Task struct.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	var notesJSON []byte
	err := row.Scan(
		&task.ID,
		&task.EpicID,
		&task.Title,
		&task.Description,
		&task.Type,
		&task.Status,
		&task.Priority,
		&task.Dependencies,
		&notesJSON,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	task.Notes, err = decodeNotes(notesJSON)
	if err != nil {
		return nil, err
	}
	if task.Dependencies == nil {
		task.Dependencies = []string{}
	}
	return &task, nil
}

// scanTasks scans multiple rows into a slice of Task structs.
func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

// GetByID retrieves a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for task: %w", err)
	}

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

// GetAll retrieves every task ordered by creation time.
func (r *TaskRepository) GetAll(ctx context.Context) ([]*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetAll query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	return scanTasks(rows)
}

// List retrieves tasks matching the filter, ordered by creation time.
func (r *TaskRepository) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	qb := psql.Select(taskColumns...).From("tasks")

	if filter.EpicID != "" {
		qb = qb.Where(sq.Eq{"epic_id": filter.EpicID})
	}
	if len(filter.Statuses) > 0 {
		qb = qb.Where(sq.Eq{"status": filter.Statuses})
	}
	if len(filter.Priorities) > 0 {
		qb = qb.Where(sq.Eq{"priority": filter.Priorities})
	}
	if len(filter.Types) > 0 {
		qb = qb.Where(sq.Eq{"type": filter.Types})
	}

	query, args, err := qb.OrderBy("created_at ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build List query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	return scanTasks(rows)
}

// Save writes the whole task record in a single statement, inserting or
// replacing it by id.
func (r *TaskRepository) Save(ctx context.Context, task *domain.Task) error {
	notesJSON, err := encodeNotes(task.Notes)
	if err != nil {
		return err
	}

	deps := task.Dependencies
	if deps == nil {
		deps = []string{}
	}

	query, args, err := psql.
		Insert("tasks").
		Columns(taskColumns...).
		Values(
			task.ID,
			task.EpicID,
			task.Title,
			task.Description,
			task.Type,
			task.Status,
			task.Priority,
			deps,
			notesJSON,
			task.CreatedAt,
			task.UpdatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			epic_id = EXCLUDED.epic_id,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			type = EXCLUDED.type,
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			dependencies = EXCLUDED.dependencies,
			progress_notes = EXCLUDED.progress_notes,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Save query for task %s: %w", task.ID, err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("save task %s: %w", task.ID, err)
	}
	return nil
}
