package servicetest

import (
	"time"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
)

// BaseTime is the reference instant seeds build activity windows from.
func BaseTime() time.Time {
	return time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
}

// At returns BaseTime shifted by h hours.
func At(h float64) time.Time {
	return BaseTime().Add(time.Duration(h * float64(time.Hour)))
}

// AddMember registers a member holding the given roles. Unknown role codes
// are added to the role catalog.
func (s *Store) AddMember(lastName string, roles ...string) domain.Member {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := domain.Member{ID: uuid.New(), LastName: lastName, FirstName: "Test", CreatedAt: s.tick()}
	s.members[m.ID] = m
	s.memberRoles[m.ID] = map[string]bool{}
	for _, r := range roles {
		s.roles[r] = true
		s.memberRoles[m.ID][r] = true
	}
	return m
}

// AddRole registers a role code in the catalog without giving it to anyone.
func (s *Store) AddRole(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[code] = true
}

// AddPlanning creates an activity over [start, end] and its planning.
func (s *Store) AddPlanning(status domain.PlanningStatus, start, end time.Time) domain.Planning {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := domain.Activity{ID: uuid.New(), Type: "Culte", Start: start, End: end, CreatedAt: s.tick()}
	a.UpdatedAt = a.CreatedAt
	s.activities[a.ID] = a

	p := domain.Planning{ID: uuid.New(), ActivityID: a.ID, Status: status, CreatedAt: s.tick()}
	p.UpdatedAt = p.CreatedAt
	s.plannings[p.ID] = p
	p.Activity = &a
	return p
}

// AddSlot creates a slot requiring the default headcount.
func (s *Store) AddSlot(planningID uuid.UUID, name string, start, end time.Time) domain.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := domain.Slot{
		ID: uuid.New(), PlanningID: planningID, Name: name, Start: start, End: end,
		RequiredHeadcount: domain.DefaultRequiredHeadcount, CreatedAt: s.tick(),
	}
	sl.UpdatedAt = sl.CreatedAt
	s.slots[sl.ID] = sl
	return sl
}

// AddAssignment binds a member to a slot with the given status.
func (s *Store) AddAssignment(slotID, memberID uuid.UUID, role string, status domain.AssignmentStatus) domain.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := domain.Assignment{
		ID: uuid.New(), SlotID: slotID, MemberID: memberID, RoleCode: role, Status: status,
		PresenceConfirmed: status.ConfirmsPresence(), CreatedAt: s.tick(),
	}
	a.UpdatedAt = a.CreatedAt
	s.assignments[a.ID] = a
	return a
}

// AddUser stores an operator account as is.
func (s *Store) AddUser(u domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.users[u.ID] = u
	return u
}

// ---------------------------------------------------------------------------
// Inspection
// ---------------------------------------------------------------------------

// Counts reports the number of rows per table.
type Counts struct {
	Activities  int
	Plannings   int
	Slots       int
	Assignments int
	Audit       int
}

// Counts returns the current row counts.
func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Activities:  len(s.activities),
		Plannings:   len(s.plannings),
		Slots:       len(s.slots),
		Assignments: len(s.assignments),
		Audit:       len(s.audit),
	}
}

// Planning returns the stored planning, if any.
func (s *Store) Planning(id uuid.UUID) (domain.Planning, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plannings[id]
	return p, ok
}

// Activity returns the stored activity, if any.
func (s *Store) Activity(id uuid.UUID) (domain.Activity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.activities[id]
	return a, ok
}

// Slot returns the stored slot, if any.
func (s *Store) Slot(id uuid.UUID) (domain.Slot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[id]
	return sl, ok
}

// Assignment returns the stored assignment, if any.
func (s *Store) Assignment(id uuid.UUID) (domain.Assignment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	return a, ok
}

// SlotsOf returns the planning's slots ordered by start.
func (s *Store) SlotsOf(planningID uuid.UUID) []domain.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&SlotRepo{s: s}).filter(func(sl domain.Slot) bool { return sl.PlanningID == planningID })
}

// AssignmentsOf returns the slot's assignments in creation order.
func (s *Store) AssignmentsOf(slotID uuid.UUID) []domain.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&AssignmentRepo{s: s}).filter(func(a domain.Assignment) bool { return a.SlotID == slotID })
}

// AuditRecords returns a copy of the audit log, oldest first.
func (s *Store) AuditRecords() []domain.AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuditRecord, len(s.audit))
	copy(out, s.audit)
	return out
}
