// Package planning implements the Planning repository using PostgreSQL.
// Reads join the owning activity so callers get the time window in one round trip.
package planning

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/mla/planning-backend/internal/adapter/postgres"
	"github.com/mla/planning-backend/internal/domain"
)

// Repo provides planning persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	psql sq.StatementBuilderType
}

// New creates a new planning repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const defaultListLimit = 50

// ---------------------------------------------------------------------------
// Raw SQL
// ---------------------------------------------------------------------------

const planningColumns = `p.id, p.activity_id, p.status, p.created_at, p.updated_at`

const activityColumns = `a.id, a.type, a.start_at, a.end_at, a.location, a.description,
    a.ministry_id, a.campus_id, a.created_at, a.updated_at`

const createPlanningSQL = `
INSERT INTO plannings (activity_id, status)
VALUES ($1, $2)
RETURNING id, activity_id, status, created_at, updated_at`

const getPlanningSQL = `
SELECT ` + planningColumns + `
FROM plannings p
WHERE p.id = $1`

const getWithActivitySQL = `
SELECT ` + planningColumns + `, ` + activityColumns + `
FROM plannings p
JOIN activities a ON a.id = p.activity_id
WHERE p.id = $1`

const lockPlanningSQL = `
SELECT ` + planningColumns + `
FROM plannings p
WHERE p.id = $1
FOR UPDATE`

const updateStatusSQL = `
UPDATE plannings SET status = $2, updated_at = now()
WHERE id = $1
RETURNING id, activity_id, status, created_at, updated_at`

const deletePlanningSQL = `DELETE FROM plannings WHERE id = $1`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a planning without its activity.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Planning, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	p, err := scanPlanning(q.QueryRow(ctx, getPlanningSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "planning", id)
	}
	return p, nil
}

// GetWithActivity returns a planning with Activity populated.
// Returns domain.ErrNotFound if either row is missing.
func (r *Repo) GetWithActivity(ctx context.Context, id uuid.UUID) (*domain.Planning, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	p, err := scanPlanningWithActivity(q.QueryRow(ctx, getWithActivitySQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "planning", id)
	}
	return p, nil
}

// LockByID takes a row lock on the planning for the rest of the current
// transaction and returns it. Outside a transaction the lock is released
// immediately, so callers must run it inside TxManager.RunInTx.
func (r *Repo) LockByID(ctx context.Context, id uuid.UUID) (*domain.Planning, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	p, err := scanPlanning(q.QueryRow(ctx, lockPlanningSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "planning", id)
	}
	return p, nil
}

// ListWithActivity returns plannings with their activity, latest activity first.
// Returns an empty slice (not nil) when nothing matches.
func (r *Repo) ListWithActivity(ctx context.Context, filter domain.PlanningFilter) ([]domain.Planning, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	b := r.psql.Select(planningColumns, activityColumns).
		From("plannings p").
		Join("activities a ON a.id = p.activity_id").
		OrderBy("a.start_at DESC", "p.id").
		Limit(uint64(limit)).
		Offset(uint64(max(filter.Offset, 0)))

	if filter.Status != nil {
		b = b.Where(sq.Eq{"p.status": string(*filter.Status)})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list plannings query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plannings: %w", err)
	}
	defer rows.Close()

	result := []domain.Planning{}
	for rows.Next() {
		p, err := scanPlanningWithActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("list plannings: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list plannings: %w", err)
	}

	return result, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a planning for an existing activity.
func (r *Repo) Create(ctx context.Context, p *domain.Planning) (*domain.Planning, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	created, err := scanPlanning(q.QueryRow(ctx, createPlanningSQL, p.ActivityID, string(p.Status)))
	if err != nil {
		return nil, postgres.MapError(err, "planning", uuid.Nil)
	}
	return created, nil
}

// UpdateStatus sets the planning status. Transition rules are the caller's job.
// Returns domain.ErrNotFound if the planning does not exist.
func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PlanningStatus) (*domain.Planning, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	p, err := scanPlanning(q.QueryRow(ctx, updateStatusSQL, id, string(status)))
	if err != nil {
		return nil, postgres.MapError(err, "planning", id)
	}
	return p, nil
}

// Delete removes the planning row. Slots cascade in the schema, but the
// aggregate service deletes assignments and slots explicitly beforehand.
// Returns domain.ErrNotFound if the planning does not exist.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deletePlanningSQL, id)
	if err != nil {
		return postgres.MapError(err, "planning", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("planning %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanPlanning(row pgx.Row) (*domain.Planning, error) {
	var (
		p      domain.Planning
		status string
	)
	if err := row.Scan(&p.ID, &p.ActivityID, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = domain.PlanningStatus(status)
	return &p, nil
}

func scanPlanningWithActivity(row pgx.Row) (*domain.Planning, error) {
	var (
		p          domain.Planning
		a          domain.Activity
		status     string
		start, end time.Time
	)
	if err := row.Scan(
		&p.ID, &p.ActivityID, &status, &p.CreatedAt, &p.UpdatedAt,
		&a.ID, &a.Type, &start, &end, &a.Location, &a.Description,
		&a.MinistryID, &a.CampusID, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Status = domain.PlanningStatus(status)
	a.Start = start.UTC()
	a.End = end.UTC()
	p.Activity = &a
	return &p, nil
}
