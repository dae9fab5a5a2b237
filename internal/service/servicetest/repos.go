package servicetest

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Activities
// ---------------------------------------------------------------------------

// ActivityRepo is the in-memory activity repository.
type ActivityRepo struct{ s *Store }

// Activities returns the activity repository.
func (s *Store) Activities() *ActivityRepo { return &ActivityRepo{s: s} }

func (r *ActivityRepo) Create(_ context.Context, a *domain.Activity) (*domain.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("activity.Create"); err != nil {
		return nil, err
	}
	if !a.End.After(a.Start) {
		return nil, fmt.Errorf("activity %s: %w", uuid.Nil, domain.ErrValidation)
	}
	created := *a
	created.ID = uuid.New()
	created.CreatedAt = r.s.tick()
	created.UpdatedAt = created.CreatedAt
	r.s.activities[created.ID] = created
	return &created, nil
}

func (r *ActivityRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[id]
	if !ok {
		return nil, notFound("activity", id)
	}
	return &a, nil
}

func (r *ActivityRepo) Update(_ context.Context, id uuid.UUID, p domain.ActivityUpdateParams) (*domain.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("activity.Update"); err != nil {
		return nil, err
	}
	a, ok := r.s.activities[id]
	if !ok {
		return nil, notFound("activity", id)
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Start != nil {
		a.Start = *p.Start
	}
	if p.End != nil {
		a.End = *p.End
	}
	if p.Location != nil {
		a.Location = p.Location
	}
	if p.Description != nil {
		a.Description = p.Description
	}
	if !a.End.After(a.Start) {
		return nil, fmt.Errorf("activity %s: %w", id, domain.ErrValidation)
	}
	a.UpdatedAt = r.s.tick()
	r.s.activities[id] = a
	return &a, nil
}

func (r *ActivityRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("activity.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.activities[id]; !ok {
		return notFound("activity", id)
	}
	for _, p := range r.s.plannings {
		if p.ActivityID == id {
			return notFound("activity", id) // FK violation
		}
	}
	delete(r.s.activities, id)
	return nil
}

// ---------------------------------------------------------------------------
// Plannings
// ---------------------------------------------------------------------------

// PlanningRepo is the in-memory planning repository.
type PlanningRepo struct{ s *Store }

// Plannings returns the planning repository.
func (s *Store) Plannings() *PlanningRepo { return &PlanningRepo{s: s} }

func (r *PlanningRepo) Create(_ context.Context, p *domain.Planning) (*domain.Planning, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("planning.Create"); err != nil {
		return nil, err
	}
	if _, ok := r.s.activities[p.ActivityID]; !ok {
		return nil, notFound("planning", uuid.Nil)
	}
	for _, existing := range r.s.plannings {
		if existing.ActivityID == p.ActivityID {
			return nil, fmt.Errorf("planning %s: %w", uuid.Nil, domain.ErrAlreadyExists)
		}
	}
	created := domain.Planning{
		ID:         uuid.New(),
		ActivityID: p.ActivityID,
		Status:     p.Status,
		CreatedAt:  r.s.tick(),
	}
	created.UpdatedAt = created.CreatedAt
	r.s.plannings[created.ID] = created
	return &created, nil
}

func (r *PlanningRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Planning, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plannings[id]
	if !ok {
		return nil, notFound("planning", id)
	}
	return &p, nil
}

func (r *PlanningRepo) GetWithActivity(_ context.Context, id uuid.UUID) (*domain.Planning, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.withActivity(id)
}

// withActivity must be called with r.s.mu held.
func (r *PlanningRepo) withActivity(id uuid.UUID) (*domain.Planning, error) {
	p, ok := r.s.plannings[id]
	if !ok {
		return nil, notFound("planning", id)
	}
	a, ok := r.s.activities[p.ActivityID]
	if !ok {
		return nil, notFound("planning", id)
	}
	p.Activity = &a
	return &p, nil
}

func (r *PlanningRepo) LockByID(ctx context.Context, id uuid.UUID) (*domain.Planning, error) {
	return r.GetByID(ctx, id)
}

func (r *PlanningRepo) ListWithActivity(_ context.Context, f domain.PlanningFilter) ([]domain.Planning, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := []domain.Planning{}
	for id, p := range r.s.plannings {
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		full, err := r.withActivity(id)
		if err != nil {
			return nil, err
		}
		result = append(result, *full)
	}
	slices.SortFunc(result, func(a, b domain.Planning) int {
		if c := b.Activity.Start.Compare(a.Activity.Start); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := min(max(f.Offset, 0), len(result))
	return result[offset:min(offset+limit, len(result))], nil
}

func (r *PlanningRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.PlanningStatus) (*domain.Planning, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("planning.UpdateStatus"); err != nil {
		return nil, err
	}
	p, ok := r.s.plannings[id]
	if !ok {
		return nil, notFound("planning", id)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("planning %s: %w", id, domain.ErrValidation)
	}
	p.Status = status
	p.UpdatedAt = r.s.tick()
	r.s.plannings[id] = p
	return &p, nil
}

func (r *PlanningRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("planning.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.plannings[id]; !ok {
		return notFound("planning", id)
	}
	// slots cascade, but not if they still carry assignments
	for sid, sl := range r.s.slots {
		if sl.PlanningID != id {
			continue
		}
		for _, a := range r.s.assignments {
			if a.SlotID == sid {
				return notFound("planning", id)
			}
		}
	}
	for sid, sl := range r.s.slots {
		if sl.PlanningID == id {
			delete(r.s.slots, sid)
		}
	}
	delete(r.s.plannings, id)
	return nil
}

// ---------------------------------------------------------------------------
// Slots
// ---------------------------------------------------------------------------

// SlotRepo is the in-memory slot repository.
type SlotRepo struct{ s *Store }

// Slots returns the slot repository.
func (s *Store) Slots() *SlotRepo { return &SlotRepo{s: s} }

func (r *SlotRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sl, ok := r.s.slots[id]
	if !ok {
		return nil, notFound("slot", id)
	}
	return &sl, nil
}

func (r *SlotRepo) ListByPlanning(_ context.Context, planningID uuid.UUID) ([]domain.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(sl domain.Slot) bool { return sl.PlanningID == planningID }), nil
}

func (r *SlotRepo) FindOverlapping(_ context.Context, planningID uuid.UUID, start, end time.Time, exclude *uuid.UUID) ([]domain.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("slot.FindOverlapping"); err != nil {
		return nil, err
	}
	return r.filter(func(sl domain.Slot) bool {
		if sl.PlanningID != planningID {
			return false
		}
		if exclude != nil && sl.ID == *exclude {
			return false
		}
		return sl.Overlaps(start, end)
	}), nil
}

// filter must be called with r.s.mu held. Results are ordered by start then id.
func (r *SlotRepo) filter(keep func(domain.Slot) bool) []domain.Slot {
	result := []domain.Slot{}
	for _, sl := range r.s.slots {
		if keep(sl) {
			result = append(result, sl)
		}
	}
	slices.SortFunc(result, func(a, b domain.Slot) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return result
}

func (r *SlotRepo) Create(_ context.Context, sl *domain.Slot) (*domain.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("slot.Create"); err != nil {
		return nil, err
	}
	if _, ok := r.s.plannings[sl.PlanningID]; !ok {
		return nil, notFound("slot", uuid.Nil)
	}
	if !sl.End.After(sl.Start) {
		return nil, fmt.Errorf("slot %s: %w", uuid.Nil, domain.ErrValidation)
	}
	created := *sl
	created.ID = uuid.New()
	created.RequiredHeadcount = sl.Headcount()
	created.CreatedAt = r.s.tick()
	created.UpdatedAt = created.CreatedAt
	r.s.slots[created.ID] = created
	return &created, nil
}

func (r *SlotRepo) Update(_ context.Context, sl *domain.Slot) (*domain.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("slot.Update"); err != nil {
		return nil, err
	}
	existing, ok := r.s.slots[sl.ID]
	if !ok {
		return nil, notFound("slot", sl.ID)
	}
	existing.Name = sl.Name
	existing.Start = sl.Start
	existing.End = sl.End
	existing.RequiredHeadcount = sl.Headcount()
	existing.UpdatedAt = r.s.tick()
	r.s.slots[sl.ID] = existing
	return &existing, nil
}

func (r *SlotRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("slot.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.slots[id]; !ok {
		return notFound("slot", id)
	}
	for _, a := range r.s.assignments {
		if a.SlotID == id {
			return notFound("slot", id) // FK violation
		}
	}
	delete(r.s.slots, id)
	return nil
}

// ---------------------------------------------------------------------------
// Assignments
// ---------------------------------------------------------------------------

// AssignmentRepo is the in-memory assignment repository.
type AssignmentRepo struct{ s *Store }

// Assignments returns the assignment repository.
func (s *Store) Assignments() *AssignmentRepo { return &AssignmentRepo{s: s} }

func (r *AssignmentRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return nil, notFound("assignment", id)
	}
	return &a, nil
}

func (r *AssignmentRepo) ListBySlot(_ context.Context, slotID uuid.UUID) ([]domain.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(a domain.Assignment) bool { return a.SlotID == slotID }), nil
}

func (r *AssignmentRepo) ListByPlanning(_ context.Context, planningID uuid.UUID) ([]domain.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := r.filter(func(a domain.Assignment) bool { return r.s.slots[a.SlotID].PlanningID == planningID })
	slices.SortStableFunc(list, func(a, b domain.Assignment) int {
		return r.s.slots[a.SlotID].Start.Compare(r.s.slots[b.SlotID].Start)
	})
	return list, nil
}

func (r *AssignmentRepo) CountDistinctMembers(_ context.Context, planningID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("assignment.CountDistinctMembers"); err != nil {
		return 0, err
	}
	seen := map[uuid.UUID]bool{}
	for _, a := range r.s.assignments {
		if r.s.slots[a.SlotID].PlanningID == planningID {
			seen[a.MemberID] = true
		}
	}
	return len(seen), nil
}

// filter must be called with r.s.mu held. Results are in creation order and
// carry a member summary.
func (r *AssignmentRepo) filter(keep func(domain.Assignment) bool) []domain.Assignment {
	result := []domain.Assignment{}
	for _, a := range r.s.assignments {
		if !keep(a) {
			continue
		}
		m := r.s.members[a.MemberID]
		a.Member = &domain.MemberSummary{ID: m.ID, LastName: m.LastName, FirstName: m.FirstName}
		result = append(result, a)
	}
	slices.SortFunc(result, func(a, b domain.Assignment) int {
		return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	})
	return result
}

// checkRefs must be called with r.s.mu held.
func (r *AssignmentRepo) checkRefs(a *domain.Assignment) error {
	if _, ok := r.s.slots[a.SlotID]; !ok {
		return notFound("assignment", a.ID)
	}
	if _, ok := r.s.members[a.MemberID]; !ok {
		return notFound("assignment", a.ID)
	}
	if !r.s.roles[a.RoleCode] {
		return notFound("assignment", a.ID)
	}
	if !a.Status.IsValid() {
		return fmt.Errorf("assignment %s: %w", a.ID, domain.ErrValidation)
	}
	return nil
}

func (r *AssignmentRepo) Create(_ context.Context, a *domain.Assignment) (*domain.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("assignment.Create"); err != nil {
		return nil, err
	}
	if err := r.checkRefs(a); err != nil {
		return nil, err
	}
	created := *a
	created.ID = uuid.New()
	created.PresenceConfirmed = false
	created.CreatedAt = r.s.tick()
	created.UpdatedAt = created.CreatedAt
	created.Member = nil
	r.s.assignments[created.ID] = created
	return &created, nil
}

func (r *AssignmentRepo) Update(_ context.Context, a *domain.Assignment) (*domain.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("assignment.Update"); err != nil {
		return nil, err
	}
	existing, ok := r.s.assignments[a.ID]
	if !ok {
		return nil, notFound("assignment", a.ID)
	}
	if err := r.checkRefs(a); err != nil {
		return nil, err
	}
	existing.MemberID = a.MemberID
	existing.RoleCode = a.RoleCode
	existing.Status = a.Status
	existing.PresenceConfirmed = a.Status.ConfirmsPresence()
	existing.UpdatedAt = r.s.tick()
	r.s.assignments[a.ID] = existing
	return &existing, nil
}

func (r *AssignmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.AssignmentStatus) (*domain.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("assignment.UpdateStatus"); err != nil {
		return nil, err
	}
	a, ok := r.s.assignments[id]
	if !ok {
		return nil, notFound("assignment", id)
	}
	a.Status = status
	a.PresenceConfirmed = status.ConfirmsPresence()
	a.UpdatedAt = r.s.tick()
	r.s.assignments[id] = a
	return &a, nil
}

func (r *AssignmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("assignment.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.assignments[id]; !ok {
		return notFound("assignment", id)
	}
	delete(r.s.assignments, id)
	return nil
}

func (r *AssignmentRepo) DeleteBySlot(_ context.Context, slotID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("assignment.DeleteBySlot"); err != nil {
		return 0, err
	}
	var n int64
	for id, a := range r.s.assignments {
		if a.SlotID == slotID {
			delete(r.s.assignments, id)
			n++
		}
	}
	return n, nil
}

func (r *AssignmentRepo) DeleteByPlanning(_ context.Context, planningID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("assignment.DeleteByPlanning"); err != nil {
		return 0, err
	}
	var n int64
	for id, a := range r.s.assignments {
		if r.s.slots[a.SlotID].PlanningID == planningID {
			delete(r.s.assignments, id)
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

// MemberRepo is the in-memory member role lookup.
type MemberRepo struct{ s *Store }

// Members returns the member repository.
func (s *Store) Members() *MemberRepo { return &MemberRepo{s: s} }

func (r *MemberRepo) HasRole(_ context.Context, memberID uuid.UUID, roleCode string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("member.HasRole"); err != nil {
		return false, err
	}
	return r.s.memberRoles[memberID][roleCode], nil
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// UserRepo is the in-memory operator account repository.
type UserRepo struct{ s *Store }

// Users returns the user repository.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == strings.ToLower(email) {
			return &u, nil
		}
	}
	return nil, notFound("user", uuid.Nil)
}

func (r *UserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("user.Create"); err != nil {
		return nil, err
	}
	created := *u
	created.Email = strings.ToLower(u.Email)
	for _, existing := range r.s.users {
		if existing.Email == created.Email {
			return nil, fmt.Errorf("user %s: %w", u.ID, domain.ErrAlreadyExists)
		}
	}
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}
	r.s.users[created.ID] = created
	return &created, nil
}

func (r *UserRepo) UpdateRole(_ context.Context, id uuid.UUID, role domain.UserRole) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	u.Role = role
	u.UpdatedAt = r.s.tick()
	r.s.users[id] = u
	return &u, nil
}

// ---------------------------------------------------------------------------
// Audit
// ---------------------------------------------------------------------------

// AuditRepo is the in-memory audit log.
type AuditRepo struct{ s *Store }

// Audit returns the audit repository.
func (s *Store) Audit() *AuditRepo { return &AuditRepo{s: s} }

func (r *AuditRepo) Log(_ context.Context, rec domain.AuditRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("audit.Log"); err != nil {
		return err
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = r.s.tick()
	r.s.audit = append(r.s.audit, rec)
	return nil
}

func (r *AuditRepo) GetByEntity(_ context.Context, entityType domain.EntityType, entityID uuid.UUID, limit int) ([]domain.AuditRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := []domain.AuditRecord{}
	for i := len(r.s.audit) - 1; i >= 0 && len(result) < limit; i-- {
		rec := r.s.audit[i]
		if rec.EntityType == entityType && rec.EntityID != nil && *rec.EntityID == entityID {
			result = append(result, rec)
		}
	}
	return result, nil
}
