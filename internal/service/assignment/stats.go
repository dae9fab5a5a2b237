package assignment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
)

// Stats summarises a list of assignments.
type Stats struct {
	Total         int
	ConfirmedRate float64 // percentage of CONFIRMED, 2 decimals
	Roles         map[string]int
}

// StatsFromList computes totals, the confirmed percentage and a per-role count.
func StatsFromList(assignments []domain.Assignment) Stats {
	st := Stats{Total: len(assignments), Roles: map[string]int{}}
	if st.Total == 0 {
		return st
	}

	confirmed := 0
	for _, a := range assignments {
		if a.Status == domain.AssignmentStatusConfirmed {
			confirmed++
		}
		st.Roles[a.RoleCode]++
	}
	st.ConfirmedRate = domain.Round2(float64(confirmed) / float64(st.Total) * 100)
	return st
}

// IsSlotFilled reports whether count reaches the slot's required headcount.
func IsSlotFilled(slot domain.Slot, count int) bool {
	return count >= slot.Headcount()
}

// SlotAssignments is the slot with its assignments and fill statistics.
type SlotAssignments struct {
	Slot        domain.Slot
	Assignments []domain.Assignment
	Stats       Stats
	IsFilled    bool
}

// GetSlotAssignments returns the slot's assignments with statistics.
func (s *Service) GetSlotAssignments(ctx context.Context, slotID uuid.UUID) (*SlotAssignments, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewSlotNotFound(slotID)
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}

	list, err := s.assignments.ListBySlot(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	return &SlotAssignments{
		Slot:        *slot,
		Assignments: list,
		Stats:       StatsFromList(list),
		IsFilled:    IsSlotFilled(*slot, len(list)),
	}, nil
}
