package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ideabank/server/internal/domain"
)

// EpicRepository handles database operations for epics.
type EpicRepository struct {
	pool *pgxpool.Pool
}

// NewEpicRepository creates a new EpicRepository.
func NewEpicRepository(pool *pgxpool.Pool) *EpicRepository {
	return &EpicRepository{pool: pool}
}

// GetByID retrieves an epic by ID.
func (r *EpicRepository) GetByID(ctx context.Context, epicID string) (*domain.Epic, error) {
	query, args, err := psql.
		Select("id", "idea_id", "title", "status", "priority").
		From("epics").
		Where(sq.Eq{"id": epicID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for epic %s: %w", epicID, err)
	}

	var epic domain.Epic
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&epic.ID,
		&epic.IdeaID,
		&epic.Title,
		&epic.Status,
		&epic.Priority,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEpicNotFound
		}
		return nil, fmt.Errorf("query epic: %w", err)
	}

	return &epic, nil
}
