package planning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
)

// DeleteFullPlanning removes the assignments, slots, planning and activity
// in one transaction. A PUBLISHED planning cannot be deleted.
func (s *Service) DeleteFullPlanning(ctx context.Context, planningID uuid.UUID) error {
	if planningID == uuid.Nil {
		return domain.NewValidationError("planning_id", "required")
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.plannings.LockByID(txCtx, planningID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewPlanningNotFound(planningID)
			}
			return fmt.Errorf("lock planning: %w", err)
		}
		if current.Status == domain.PlanningStatusPublished {
			return domain.NewPlanningDeleteImpossible(current.Status)
		}

		removedAssignments, err := s.assignments.DeleteByPlanning(txCtx, planningID)
		if err != nil {
			return fmt.Errorf("delete assignments: %w", err)
		}

		slots, err := s.slots.ListByPlanning(txCtx, planningID)
		if err != nil {
			return fmt.Errorf("list slots: %w", err)
		}
		for _, sl := range slots {
			if err := s.slots.Delete(txCtx, sl.ID); err != nil {
				return fmt.Errorf("delete slot %s: %w", sl.ID, err)
			}
		}

		if err := s.plannings.Delete(txCtx, planningID); err != nil {
			return fmt.Errorf("delete planning: %w", err)
		}
		if err := s.activities.Delete(txCtx, current.ActivityID); err != nil {
			return fmt.Errorf("delete activity: %w", err)
		}

		if err := s.logAudit(txCtx, planningID, domain.AuditActionDelete, map[string]any{
			"status":      string(current.Status),
			"slots":       len(slots),
			"assignments": removedAssignments,
		}); err != nil {
			return fmt.Errorf("audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.ErrorContext(ctx, "delete full planning failed",
			slog.String("planning_id", planningID.String()),
			slog.String("error", err.Error()),
		)
		return err
	}

	s.log.InfoContext(ctx, "planning deleted", slog.String("planning_id", planningID.String()))
	return nil
}
