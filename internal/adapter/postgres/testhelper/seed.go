package testhelper

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mla/planning-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// UniqueCode returns an upper-case code with a unique suffix, e.g. "SOPRANO_1A2B3C4D".
func UniqueCode(prefix string) string {
	return prefix + "_" + strings.ToUpper(uniqueSuffix())
}

// BaseTime returns a fixed reference time (UTC, microsecond precision) that
// seeds build activity windows from.
func BaseTime() time.Time {
	return time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
}

// SeedUser creates an operator account with the MEMBRE_MLA role and a dummy hash.
func SeedUser(t *testing.T, pool *pgxpool.Pool) domain.User {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := domain.User{
		ID:           uuid.New(),
		Email:        "operator-" + suffix + "@example.com",
		Name:         "Operator " + suffix,
		PasswordHash: "$2a$10$invalidinvalidinvalidinvalidinvalidinvalidinvalidinva",
		Role:         domain.UserRoleMember,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, email, name, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.Name, user.PasswordHash, string(user.Role), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser: %v", err)
	}

	return user
}

// SeedRole creates a competence role with a unique code and returns the code.
func SeedRole(t *testing.T, pool *pgxpool.Pool, prefix string) string {
	t.Helper()

	code := UniqueCode(prefix)
	_, err := pool.Exec(context.Background(),
		`INSERT INTO roles (code, label) VALUES ($1, $2)`, code, prefix)
	if err != nil {
		t.Fatalf("testhelper: SeedRole: %v", err)
	}
	return code
}

// SeedMember creates a member holding the given role codes.
func SeedMember(t *testing.T, pool *pgxpool.Pool, roleCodes ...string) domain.Member {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	email := "member-" + suffix + "@example.com"
	m := domain.Member{
		ID:        uuid.New(),
		LastName:  "Member " + suffix,
		FirstName: "Test",
		Email:     &email,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO members (id, last_name, first_name, email, created_at) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.LastName, m.FirstName, m.Email, m.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedMember: %v", err)
	}

	for _, code := range roleCodes {
		if _, err := pool.Exec(ctx,
			`INSERT INTO member_roles (member_id, role_code) VALUES ($1, $2)`, m.ID, code); err != nil {
			t.Fatalf("testhelper: SeedMember role %s: %v", code, err)
		}
	}

	return m
}

// SeedPlanning creates an activity spanning [start, end] and its planning in
// the given status. The activity type is unique so tests can look it up.
func SeedPlanning(t *testing.T, pool *pgxpool.Pool, status domain.PlanningStatus, start, end time.Time) domain.Planning {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	activity := domain.Activity{
		ID:        uuid.New(),
		Type:      "Culte " + uniqueSuffix(),
		Start:     start,
		End:       end,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := pool.Exec(ctx,
		`INSERT INTO activities (id, type, start_at, end_at, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		activity.ID, activity.Type, activity.Start, activity.End, activity.CreatedAt, activity.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedPlanning activity: %v", err)
	}

	p := domain.Planning{
		ID:         uuid.New(),
		ActivityID: activity.ID,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
		Activity:   &activity,
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO plannings (id, activity_id, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.ActivityID, string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedPlanning planning: %v", err)
	}

	return p
}

// SeedSlot creates a slot under the planning requiring two people.
func SeedSlot(t *testing.T, pool *pgxpool.Pool, planningID uuid.UUID, name string, start, end time.Time) domain.Slot {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	s := domain.Slot{
		ID:                uuid.New(),
		PlanningID:        planningID,
		Name:              name,
		Start:             start,
		End:               end,
		RequiredHeadcount: domain.DefaultRequiredHeadcount,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO slots (id, planning_id, name, start_at, end_at, required_headcount, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.PlanningID, s.Name, s.Start, s.End, s.RequiredHeadcount, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedSlot: %v", err)
	}
	return s
}

// SeedAssignment assigns the member to the slot with the given status.
func SeedAssignment(t *testing.T, pool *pgxpool.Pool, slotID, memberID uuid.UUID, roleCode string, status domain.AssignmentStatus) domain.Assignment {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	a := domain.Assignment{
		ID:        uuid.New(),
		SlotID:    slotID,
		MemberID:  memberID,
		RoleCode:  roleCode,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO assignments (id, slot_id, member_id, role_code, status, presence_confirmed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, false, $6, $7)`,
		a.ID, a.SlotID, a.MemberID, a.RoleCode, string(a.Status), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedAssignment: %v", err)
	}
	return a
}
