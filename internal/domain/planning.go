package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// DefaultRequiredHeadcount applies when a slot does not say how many people it needs.
const DefaultRequiredHeadcount = 2

// Activity is a scheduled event whose time window contains all slots of its planning.
type Activity struct {
	ID          uuid.UUID
	Type        string
	Start       time.Time
	End         time.Time
	Location    *string
	Description *string
	MinistryID  *uuid.UUID
	CampusID    *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Contains reports whether [start, end] lies within the activity window.
// Both activity bounds are inclusive.
func (a Activity) Contains(start, end time.Time) bool {
	return !start.Before(a.Start) && !end.After(a.End)
}

// ActivityUpdateParams holds the partial update of an activity.
// nil fields are left untouched.
type ActivityUpdateParams struct {
	Type        *string
	Start       *time.Time
	End         *time.Time
	Location    *string
	Description *string
}

// IsEmpty reports whether no field is set.
func (p ActivityUpdateParams) IsEmpty() bool {
	return p.Type == nil && p.Start == nil && p.End == nil && p.Location == nil && p.Description == nil
}

// Planning is the schedule-in-progress of one activity.
type Planning struct {
	ID         uuid.UUID
	ActivityID uuid.UUID
	Status     PlanningStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Activity *Activity // populated by joined reads
}

// PlanningFilter narrows planning listings. Zero Limit means the default page size.
type PlanningFilter struct {
	Status *PlanningStatus
	Limit  int
	Offset int
}

// Slot is a sub-interval of an activity that requires a headcount.
type Slot struct {
	ID                uuid.UUID
	PlanningID        uuid.UUID
	Name              string
	Start             time.Time
	End               time.Time
	RequiredHeadcount int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Overlaps is the half-open interval test [s.Start, s.End) ∩ [start, end) ≠ ∅.
// Touching intervals do not overlap.
func (s Slot) Overlaps(start, end time.Time) bool {
	return s.Start.Before(end) && s.End.After(start)
}

// Headcount returns RequiredHeadcount, or DefaultRequiredHeadcount when unset.
func (s Slot) Headcount() int {
	if s.RequiredHeadcount <= 0 {
		return DefaultRequiredHeadcount
	}
	return s.RequiredHeadcount
}

// Assignment binds a member to a slot in a given role.
type Assignment struct {
	ID                uuid.UUID
	SlotID            uuid.UUID
	MemberID          uuid.UUID
	RoleCode          string
	Status            AssignmentStatus
	PresenceConfirmed bool
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Member *MemberSummary // populated by joined reads
}

// ---------------------------------------------------------------------------
// Sync payloads
// ---------------------------------------------------------------------------

// SlotPayload is the desired state of one slot in a tree sync.
// A nil ID (or an ID unknown to the planning) means "create".
type SlotPayload struct {
	ID                *uuid.UUID
	Name              string
	Start             time.Time
	End               time.Time
	RequiredHeadcount *int
	Assignments       []AssignmentPayload
}

// AssignmentPayload is the desired state of one assignment in a slot sync.
// With a known ID only Status is applied; without one MemberID and RoleCode
// are needed to create it.
type AssignmentPayload struct {
	ID       *uuid.UUID
	MemberID *uuid.UUID
	RoleCode *string
	Status   *AssignmentStatus
}

// ---------------------------------------------------------------------------
// Read model
// ---------------------------------------------------------------------------

// SlotView is a slot with its assignments, as exposed by the full read model.
type SlotView struct {
	Slot
	Assignments []Assignment
}

// FillingRate is len(assignments)/required*100 capped at 100 and rounded to
// 2 decimals. It is 0 when the slot requires nobody.
func (v SlotView) FillingRate() float64 {
	if v.RequiredHeadcount <= 0 {
		return 0
	}
	rate := float64(len(v.Assignments)) / float64(v.RequiredHeadcount) * 100
	return Round2(math.Min(rate, 100))
}

// ViewContext summarises what the caller can do next with a planning.
type ViewContext struct {
	AllowedTransitions []PlanningStatus
	TotalSlots         int
	FilledSlots        int
	IsReadyForPublish  bool
}

// PlanningFull is the planning aggregate read model.
type PlanningFull struct {
	Planning
	Slots       []SlotView
	ViewContext ViewContext
}

// Round2 rounds half away from zero to 2 decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
