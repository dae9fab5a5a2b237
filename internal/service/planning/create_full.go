package planning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mla/planning-backend/internal/domain"
)

// CreateFullPlanning creates the activity, the planning and its slot tree in
// one transaction. The planning is written with the requested status, DRAFT
// when none is given, before the slots so nested pointings see it. A
// PUBLISHED planning runs the publish hook once its slots exist. Any failure
// leaves nothing behind.
func (s *Service) CreateFullPlanning(ctx context.Context, input CreateFullInput) (*domain.PlanningFull, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var planningID string
	var created *domain.Planning
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		activity, err := s.activities.Create(txCtx, &domain.Activity{
			Type:        domain.NormalizeActivityType(input.Activity.Type),
			Start:       input.Activity.Start,
			End:         input.Activity.End,
			Location:    trimOrNil(input.Activity.Location),
			Description: trimOrNil(input.Activity.Description),
			MinistryID:  input.Activity.MinistryID,
			CampusID:    input.Activity.CampusID,
		})
		if err != nil {
			return fmt.Errorf("create activity: %w", err)
		}

		status := domain.PlanningStatusDraft
		if input.Status != nil {
			status = *input.Status
		}
		created, err = s.plannings.Create(txCtx, &domain.Planning{
			ActivityID: activity.ID,
			Status:     status,
		})
		if err != nil {
			return fmt.Errorf("create planning: %w", err)
		}
		planningID = created.ID.String()

		var slotCount int
		if len(input.Slots) > 0 {
			res, err := s.slotSync.SyncPlanningSlots(txCtx, created.ID, input.Slots)
			if err != nil {
				return err
			}
			slotCount = res.Created
		}

		if created.Status == domain.PlanningStatusPublished && s.hook != nil {
			if err := s.hook.OnPublish(txCtx, *created); err != nil {
				return err
			}
		}

		if err := s.logAudit(txCtx, created.ID, domain.AuditActionCreate, map[string]any{
			"activity_id": activity.ID.String(),
			"type":        activity.Type,
			"status":      string(created.Status),
			"slots":       slotCount,
		}); err != nil {
			return fmt.Errorf("audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.ErrorContext(ctx, "create full planning failed",
			slog.String("planning_id", planningID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if created.Status == domain.PlanningStatusPublished {
		s.afterPublish(ctx, created)
	}
	s.log.InfoContext(ctx, "planning created",
		slog.String("planning_id", created.ID.String()),
		slog.String("status", string(created.Status)),
	)
	return s.GetFullPlanning(ctx, created.ID)
}
