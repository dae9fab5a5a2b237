// Package member implements read access to members and their competence roles.
package member

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/mla/planning-backend/internal/adapter/postgres"
	"github.com/mla/planning-backend/internal/domain"
)

// Repo provides member lookups backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new member repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const hasRoleSQL = `
SELECT EXISTS (
    SELECT 1 FROM member_roles WHERE member_id = $1 AND role_code = $2
)`

const getMemberSQL = `
SELECT id, last_name, first_name, email, created_at
FROM members
WHERE id = $1`

// HasRole reports whether the member holds the competence role.
// An unknown member simply has no roles.
func (r *Repo) HasRole(ctx context.Context, memberID uuid.UUID, roleCode string) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var ok bool
	if err := q.QueryRow(ctx, hasRoleSQL, memberID, roleCode).Scan(&ok); err != nil {
		return false, fmt.Errorf("member %s has role %s: %w", memberID, roleCode, err)
	}
	return ok, nil
}

// GetByID returns a member by primary key.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var m domain.Member
	err := q.QueryRow(ctx, getMemberSQL, id).Scan(&m.ID, &m.LastName, &m.FirstName, &m.Email, &m.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "member", id)
	}
	return &m, nil
}
