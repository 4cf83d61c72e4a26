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

// IdeaRepository handles database operations for ideas.
type IdeaRepository struct {
	pool *pgxpool.Pool
}

// NewIdeaRepository creates a new IdeaRepository.
func NewIdeaRepository(pool *pgxpool.Pool) *IdeaRepository {
	return &IdeaRepository{pool: pool}
}

// GetByID retrieves an idea by ID.
func (r *IdeaRepository) GetByID(ctx context.Context, ideaID string) (*domain.Idea, error) {
	query, args, err := psql.
		Select("id", "title", "description", "status", "priority", "epic_ids", "created_at", "updated_at").
		From("ideas").
		Where(sq.Eq{"id": ideaID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for idea %s: %w", ideaID, err)
	}

	var idea domain.Idea
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&idea.ID,
		&idea.Title,
		&idea.Description,
		&idea.Status,
		&idea.Priority,
		&idea.EpicIDs,
		&idea.CreatedAt,
		&idea.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIdeaNotFound
		}
		return nil, fmt.Errorf("query idea: %w", err)
	}

	if idea.EpicIDs == nil {
		idea.EpicIDs = []string{}
	}
	return &idea, nil
}
