package slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
)

type planningWithActivity interface {
	GetWithActivity(ctx context.Context, id uuid.UUID) (*domain.Planning, error)
}

type overlapFinder interface {
	FindOverlapping(ctx context.Context, planningID uuid.UUID, start, end time.Time, exclude *uuid.UUID) ([]domain.Slot, error)
}

// Validator checks slot timing against the parent activity and sibling slots.
type Validator struct {
	plannings planningWithActivity
	slots     overlapFinder
}

// NewValidator creates a slot timing validator.
func NewValidator(plannings planningWithActivity, slots overlapFinder) *Validator {
	return &Validator{plannings: plannings, slots: slots}
}

// Validate checks [start, end) for a slot of the planning, in this order:
//
//  1. end must be after start (SlotChronologyError);
//  2. the planning and its activity must exist (PlanningNotFound);
//  3. the slot must lie within the activity, bounds inclusive (SlotOutOfBounds);
//  4. no sibling slot may overlap it (SlotCollision, first match reported).
//
// exclude skips the slot being updated. The loaded planning is returned so
// callers can inspect its status without a second read.
func (v *Validator) Validate(ctx context.Context, planningID uuid.UUID, start, end time.Time, exclude *uuid.UUID) (*domain.Planning, error) {
	if !end.After(start) {
		return nil, domain.NewSlotChronologyError()
	}

	planning, err := v.plannings.GetWithActivity(ctx, planningID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewPlanningNotFound(planningID)
		}
		return nil, fmt.Errorf("get planning: %w", err)
	}
	if planning.Activity == nil {
		return nil, domain.NewPlanningNotFound(planningID)
	}

	activity := planning.Activity
	if !activity.Contains(start, end) {
		return nil, domain.NewSlotOutOfBounds(activity.Start, activity.End)
	}

	colliding, err := v.slots.FindOverlapping(ctx, planningID, start, end, exclude)
	if err != nil {
		return nil, fmt.Errorf("find overlapping slots: %w", err)
	}
	if len(colliding) > 0 {
		c := colliding[0]
		return nil, domain.NewSlotCollision(c.Name, c.Start, c.End)
	}

	return planning, nil
}
