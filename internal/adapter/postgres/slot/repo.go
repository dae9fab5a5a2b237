// Package slot implements the Slot repository using PostgreSQL.
package slot

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

// Repo provides slot persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	psql sq.StatementBuilderType
}

// New creates a new slot repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ---------------------------------------------------------------------------
// Raw SQL
// ---------------------------------------------------------------------------

const slotColumns = `id, planning_id, name, start_at, end_at, required_headcount, created_at, updated_at`

const createSlotSQL = `
INSERT INTO slots (planning_id, name, start_at, end_at, required_headcount)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + slotColumns

const getSlotSQL = `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`

const listByPlanningSQL = `
SELECT ` + slotColumns + `
FROM slots
WHERE planning_id = $1
ORDER BY start_at, id`

const updateSlotSQL = `
UPDATE slots
SET name = $2, start_at = $3, end_at = $4, required_headcount = $5, updated_at = now()
WHERE id = $1
RETURNING ` + slotColumns

const deleteSlotSQL = `DELETE FROM slots WHERE id = $1`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a slot by primary key.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	s, err := scanSlot(q.QueryRow(ctx, getSlotSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "slot", id)
	}
	return s, nil
}

// ListByPlanning returns the planning's slots ordered by start time.
func (r *Repo) ListByPlanning(ctx context.Context, planningID uuid.UUID) ([]domain.Slot, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listByPlanningSQL, planningID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return collectSlots(rows)
}

// FindOverlapping returns slots of the planning whose half-open interval
// intersects [start, end). Touching intervals do not overlap. When exclude
// is set that slot is left out, so an update never collides with itself.
func (r *Repo) FindOverlapping(ctx context.Context, planningID uuid.UUID, start, end time.Time, exclude *uuid.UUID) ([]domain.Slot, error) {
	b := r.psql.Select(slotColumns).
		From("slots").
		Where(sq.Eq{"planning_id": planningID}).
		Where(sq.Lt{"start_at": end}).
		Where(sq.Gt{"end_at": start}).
		OrderBy("start_at", "id")

	if exclude != nil {
		b = b.Where(sq.NotEq{"id": *exclude})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build overlap query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find overlapping slots: %w", err)
	}
	return collectSlots(rows)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a slot. A zero RequiredHeadcount stores the default.
func (r *Repo) Create(ctx context.Context, s *domain.Slot) (*domain.Slot, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	created, err := scanSlot(q.QueryRow(ctx, createSlotSQL,
		s.PlanningID, s.Name, s.Start, s.End, s.Headcount()))
	if err != nil {
		return nil, postgres.MapError(err, "slot", uuid.Nil)
	}
	return created, nil
}

// Update overwrites the mutable columns of the slot with s.
// Returns domain.ErrNotFound if the slot does not exist.
func (r *Repo) Update(ctx context.Context, s *domain.Slot) (*domain.Slot, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	updated, err := scanSlot(q.QueryRow(ctx, updateSlotSQL,
		s.ID, s.Name, s.Start, s.End, s.Headcount()))
	if err != nil {
		return nil, postgres.MapError(err, "slot", s.ID)
	}
	return updated, nil
}

// Delete removes a slot. Its assignments must be removed first.
// Returns domain.ErrNotFound if the slot does not exist.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteSlotSQL, id)
	if err != nil {
		return postgres.MapError(err, "slot", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("slot %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanSlot(row pgx.Row) (*domain.Slot, error) {
	var (
		s          domain.Slot
		start, end time.Time
	)
	if err := row.Scan(
		&s.ID, &s.PlanningID, &s.Name, &start, &end,
		&s.RequiredHeadcount, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.Start = start.UTC()
	s.End = end.UTC()
	return &s, nil
}

func collectSlots(rows pgx.Rows) ([]domain.Slot, error) {
	defer rows.Close()

	result := []domain.Slot{}
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}
	return result, nil
}
