// Package assignment implements the Assignment repository using PostgreSQL.
// List reads join members so each row carries a MemberSummary.
package assignment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/mla/planning-backend/internal/adapter/postgres"
	"github.com/mla/planning-backend/internal/domain"
)

// Repo provides assignment persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new assignment repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Raw SQL
// ---------------------------------------------------------------------------

const assignmentColumns = `a.id, a.slot_id, a.member_id, a.role_code, a.status, a.presence_confirmed, a.created_at, a.updated_at`

const withMemberColumns = assignmentColumns + `, m.last_name, m.first_name`

const createAssignmentSQL = `
INSERT INTO assignments AS a (slot_id, member_id, role_code, status, presence_confirmed)
VALUES ($1, $2, $3, $4, false)
RETURNING ` + assignmentColumns

const getAssignmentSQL = `SELECT ` + assignmentColumns + ` FROM assignments a WHERE a.id = $1`

const updateAssignmentSQL = `
UPDATE assignments AS a
SET member_id = $2, role_code = $3, status = $4, presence_confirmed = $5, updated_at = now()
WHERE a.id = $1
RETURNING ` + assignmentColumns

const updateStatusSQL = `
UPDATE assignments AS a
SET status = $2, presence_confirmed = $3, updated_at = now()
WHERE a.id = $1
RETURNING ` + assignmentColumns

const listBySlotSQL = `
SELECT ` + withMemberColumns + `
FROM assignments a
JOIN members m ON m.id = a.member_id
WHERE a.slot_id = $1
ORDER BY a.created_at, a.id`

const listByPlanningSQL = `
SELECT ` + withMemberColumns + `
FROM assignments a
JOIN slots s ON s.id = a.slot_id
JOIN members m ON m.id = a.member_id
WHERE s.planning_id = $1
ORDER BY s.start_at, a.created_at, a.id`

const countDistinctMembersSQL = `
SELECT count(DISTINCT a.member_id)
FROM assignments a
JOIN slots s ON s.id = a.slot_id
WHERE s.planning_id = $1`

const deleteAssignmentSQL = `DELETE FROM assignments WHERE id = $1`

const deleteBySlotSQL = `DELETE FROM assignments WHERE slot_id = $1`

const deleteByPlanningSQL = `
DELETE FROM assignments
WHERE slot_id IN (SELECT id FROM slots WHERE planning_id = $1)`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns an assignment without its member summary.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Assignment, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	a, err := scanAssignment(q.QueryRow(ctx, getAssignmentSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "assignment", id)
	}
	return a, nil
}

// ListBySlot returns the slot's assignments in creation order.
func (r *Repo) ListBySlot(ctx context.Context, slotID uuid.UUID) ([]domain.Assignment, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listBySlotSQL, slotID)
	if err != nil {
		return nil, fmt.Errorf("list assignments by slot: %w", err)
	}
	return collectWithMember(rows)
}

// ListByPlanning returns every assignment under the planning, grouped by
// slot start time.
func (r *Repo) ListByPlanning(ctx context.Context, planningID uuid.UUID) ([]domain.Assignment, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listByPlanningSQL, planningID)
	if err != nil {
		return nil, fmt.Errorf("list assignments by planning: %w", err)
	}
	return collectWithMember(rows)
}

// CountDistinctMembers returns how many different members are assigned
// anywhere in the planning.
func (r *Repo) CountDistinctMembers(ctx context.Context, planningID uuid.UUID) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var n int
	if err := q.QueryRow(ctx, countDistinctMembersSQL, planningID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count planning members: %w", err)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts an assignment with presence_confirmed false; only a later
// status change to PRESENT confirms presence.
// Unknown slot, member or role surfaces as domain.ErrNotFound.
func (r *Repo) Create(ctx context.Context, a *domain.Assignment) (*domain.Assignment, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	created, err := scanAssignment(q.QueryRow(ctx, createAssignmentSQL,
		a.SlotID, a.MemberID, a.RoleCode, string(a.Status)))
	if err != nil {
		return nil, postgres.MapError(err, "assignment", uuid.Nil)
	}
	return created, nil
}

// Update overwrites member, role and status of an existing assignment.
func (r *Repo) Update(ctx context.Context, a *domain.Assignment) (*domain.Assignment, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	updated, err := scanAssignment(q.QueryRow(ctx, updateAssignmentSQL,
		a.ID, a.MemberID, a.RoleCode, string(a.Status), a.Status.ConfirmsPresence()))
	if err != nil {
		return nil, postgres.MapError(err, "assignment", a.ID)
	}
	return updated, nil
}

// UpdateStatus sets the status and derives presence_confirmed from it.
// Transition rules are the caller's job.
func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AssignmentStatus) (*domain.Assignment, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	a, err := scanAssignment(q.QueryRow(ctx, updateStatusSQL, id, string(status), status.ConfirmsPresence()))
	if err != nil {
		return nil, postgres.MapError(err, "assignment", id)
	}
	return a, nil
}

// Delete removes a single assignment.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteAssignmentSQL, id)
	if err != nil {
		return postgres.MapError(err, "assignment", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("assignment %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteBySlot removes every assignment of the slot and returns how many went.
func (r *Repo) DeleteBySlot(ctx context.Context, slotID uuid.UUID) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteBySlotSQL, slotID)
	if err != nil {
		return 0, fmt.Errorf("delete assignments of slot %s: %w", slotID, err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByPlanning removes every assignment under the planning's slots.
func (r *Repo) DeleteByPlanning(ctx context.Context, planningID uuid.UUID) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteByPlanningSQL, planningID)
	if err != nil {
		return 0, fmt.Errorf("delete assignments of planning %s: %w", planningID, err)
	}
	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanAssignment(row pgx.Row) (*domain.Assignment, error) {
	var (
		a      domain.Assignment
		status string
	)
	if err := row.Scan(
		&a.ID, &a.SlotID, &a.MemberID, &a.RoleCode, &status,
		&a.PresenceConfirmed, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.Status = domain.AssignmentStatus(status)
	return &a, nil
}

func collectWithMember(rows pgx.Rows) ([]domain.Assignment, error) {
	defer rows.Close()

	result := []domain.Assignment{}
	for rows.Next() {
		var (
			a      domain.Assignment
			m      domain.MemberSummary
			status string
		)
		if err := rows.Scan(
			&a.ID, &a.SlotID, &a.MemberID, &a.RoleCode, &status,
			&a.PresenceConfirmed, &a.CreatedAt, &a.UpdatedAt,
			&m.LastName, &m.FirstName,
		); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		a.Status = domain.AssignmentStatus(status)
		m.ID = a.MemberID
		a.Member = &m
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return result, nil
}
