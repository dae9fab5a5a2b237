package planning

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/internal/service/assignment"
)

// GetFullPlanning returns the planning with its activity, its slots ordered
// by start (each with its assignments) and the view context.
func (s *Service) GetFullPlanning(ctx context.Context, planningID uuid.UUID) (*domain.PlanningFull, error) {
	p, err := s.plannings.GetWithActivity(ctx, planningID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewPlanningNotFound(planningID)
		}
		return nil, fmt.Errorf("get planning: %w", err)
	}

	slots, err := s.slots.ListByPlanning(ctx, planningID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	assignments, err := s.assignments.ListByPlanning(ctx, planningID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	bySlot := make(map[uuid.UUID][]domain.Assignment, len(slots))
	for _, a := range assignments {
		bySlot[a.SlotID] = append(bySlot[a.SlotID], a)
	}

	full := &domain.PlanningFull{
		Planning: *p,
		Slots:    make([]domain.SlotView, 0, len(slots)),
	}
	filled := 0
	for _, sl := range slots {
		list := bySlot[sl.ID]
		if list == nil {
			list = []domain.Assignment{}
		}
		full.Slots = append(full.Slots, domain.SlotView{Slot: sl, Assignments: list})
		if assignment.IsSlotFilled(sl, len(list)) {
			filled++
		}
	}

	full.ViewContext = domain.ViewContext{
		AllowedTransitions: s.workflow.AllowedTransitions(ctx, p.Status),
		TotalSlots:         len(slots),
		FilledSlots:        filled,
		IsReadyForPublish: p.Status == domain.PlanningStatusDraft &&
			len(slots) > 0 && filled == len(slots),
	}
	return full, nil
}
