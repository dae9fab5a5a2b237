package planning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mla/planning-backend/internal/domain"
)

// UpdateFullPlanning applies activity changes, a status change and a slot
// tree sync in one transaction, in that order. The publish hook runs with the
// status change, so nested assignments pointed PRESENT or ABSENT in the same
// call see the new status.
//
// A FINISHED planning rejects activity or slot changes before anything is
// written. The status transition is checked up front so an illegal status
// writes nothing. Any failure, the hook included, rolls the whole update back.
func (s *Service) UpdateFullPlanning(ctx context.Context, input UpdateFullInput) (*domain.PlanningFull, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var published *domain.Planning
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		published = nil

		current, err := s.lock(txCtx, input)
		if err != nil {
			return err
		}

		changeStatus := input.Status != nil && *input.Status != current.Status
		if changeStatus {
			if err := s.workflow.ValidateTransition(current.Status, *input.Status); err != nil {
				return err
			}
		}

		changes := map[string]any{}

		if params := input.Activity.params(); !params.IsEmpty() {
			if _, err := s.activities.Update(txCtx, current.ActivityID, params); err != nil {
				return fmt.Errorf("update activity: %w", err)
			}
			changes["activity"] = activityChanges(params)
		}

		if input.Slots == nil && input.Activity != nil && (input.Activity.Start != nil || input.Activity.End != nil) {
			if err := s.checkSlotsWithinActivity(txCtx, current); err != nil {
				return err
			}
		}

		if changeStatus {
			updated, err := s.transition(txCtx, current, *input.Status)
			if err != nil {
				return err
			}
			changes["status"] = map[string]any{"old": string(current.Status), "new": string(updated.Status)}
			if updated.Status == domain.PlanningStatusPublished {
				published = updated
			}
		}

		if input.Slots != nil {
			res, err := s.slotSync.SyncPlanningSlots(txCtx, current.ID, input.Slots)
			if err != nil {
				return err
			}
			changes["slots"] = map[string]any{
				"created": res.Created,
				"updated": res.Updated,
				"deleted": res.Deleted,
			}
		}

		if len(changes) == 0 {
			return nil
		}
		if err := s.logAudit(txCtx, current.ID, domain.AuditActionUpdate, changes); err != nil {
			return fmt.Errorf("audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.ErrorContext(ctx, "update full planning failed",
			slog.String("planning_id", input.PlanningID.String()),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if published != nil {
		s.afterPublish(ctx, published)
	}
	s.log.InfoContext(ctx, "planning updated", slog.String("planning_id", input.PlanningID.String()))
	return s.GetFullPlanning(ctx, input.PlanningID)
}

// lock takes the planning row lock and applies the FINISHED guard.
func (s *Service) lock(ctx context.Context, input UpdateFullInput) (*domain.Planning, error) {
	current, err := s.plannings.LockByID(ctx, input.PlanningID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewPlanningNotFound(input.PlanningID)
		}
		return nil, fmt.Errorf("lock planning: %w", err)
	}
	if current.Status == domain.PlanningStatusFinished && input.touchesTree() {
		return nil, domain.NewPlanningImmutable(current.Status)
	}
	return current, nil
}

// checkSlotsWithinActivity rejects an activity window that no longer
// contains every existing slot.
func (s *Service) checkSlotsWithinActivity(ctx context.Context, p *domain.Planning) error {
	full, err := s.plannings.GetWithActivity(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("get planning: %w", err)
	}
	slots, err := s.slots.ListByPlanning(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("list slots: %w", err)
	}
	for _, sl := range slots {
		if !full.Activity.Contains(sl.Start, sl.End) {
			return domain.NewSlotOutOfBounds(full.Activity.Start, full.Activity.End)
		}
	}
	return nil
}

func activityChanges(p domain.ActivityUpdateParams) map[string]any {
	m := map[string]any{}
	if p.Type != nil {
		m["type"] = *p.Type
	}
	if p.Start != nil {
		m["start"] = *p.Start
	}
	if p.End != nil {
		m["end"] = *p.End
	}
	if p.Location != nil {
		m["location"] = *p.Location
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	return m
}
