// Package activity implements the Activity repository using PostgreSQL.
package activity

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/mla/planning-backend/internal/adapter/postgres"
	"github.com/mla/planning-backend/internal/domain"
)

// Repo provides activity persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	psql sq.StatementBuilderType
}

// New creates a new activity repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const activityColumns = `id, type, start_at, end_at, location, description, ministry_id, campus_id, created_at, updated_at`

const createActivitySQL = `
INSERT INTO activities (type, start_at, end_at, location, description, ministry_id, campus_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + activityColumns

const getActivitySQL = `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`

const deleteActivitySQL = `DELETE FROM activities WHERE id = $1`

// Create inserts a new activity and returns the persisted row.
func (r *Repo) Create(ctx context.Context, a *domain.Activity) (*domain.Activity, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, createActivitySQL,
		a.Type, a.Start, a.End, a.Location, a.Description, a.MinistryID, a.CampusID)

	created, err := scanActivity(row)
	if err != nil {
		return nil, postgres.MapError(err, "activity", uuid.Nil)
	}
	return created, nil
}

// GetByID returns an activity by primary key.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	a, err := scanActivity(q.QueryRow(ctx, getActivitySQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "activity", id)
	}
	return a, nil
}

// Update applies the non-nil fields of params and returns the updated row.
// An empty params is a plain read. The end > start check is enforced by the
// table constraint and surfaces as domain.ErrValidation.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, params domain.ActivityUpdateParams) (*domain.Activity, error) {
	if params.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	b := r.psql.Update("activities").
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + activityColumns)

	if params.Type != nil {
		b = b.Set("type", *params.Type)
	}
	if params.Start != nil {
		b = b.Set("start_at", *params.Start)
	}
	if params.End != nil {
		b = b.Set("end_at", *params.End)
	}
	if params.Location != nil {
		b = b.Set("location", *params.Location)
	}
	if params.Description != nil {
		b = b.Set("description", *params.Description)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update activity query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	a, err := scanActivity(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "activity", id)
	}
	return a, nil
}

// Delete removes an activity. The planning referencing it must be deleted first.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteActivitySQL, id)
	if err != nil {
		return postgres.MapError(err, "activity", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("activity %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (*domain.Activity, error) {
	var (
		a          domain.Activity
		start, end time.Time
	)
	if err := row.Scan(
		&a.ID, &a.Type, &start, &end, &a.Location, &a.Description,
		&a.MinistryID, &a.CampusID, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.Start = start.UTC()
	a.End = end.UTC()
	return &a, nil
}
