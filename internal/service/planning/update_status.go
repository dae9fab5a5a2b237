package planning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mla/planning-backend/internal/domain"
)

// UpdatePlanningStatus moves the planning along its workflow. Moving to
// PUBLISHED runs the publish hook; a hook failure undoes the change.
func (s *Service) UpdatePlanningStatus(ctx context.Context, input UpdateStatusInput) (*domain.Planning, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		updated  *domain.Planning
		previous domain.PlanningStatus
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.plannings.LockByID(txCtx, input.PlanningID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewPlanningNotFound(input.PlanningID)
			}
			return fmt.Errorf("lock planning: %w", err)
		}
		previous = current.Status

		updated, err = s.transition(txCtx, current, input.Status)
		if err != nil {
			return err
		}

		if err := s.logAudit(txCtx, current.ID, domain.AuditActionStatus, map[string]any{
			"status": map[string]any{"old": string(previous), "new": string(updated.Status)},
		}); err != nil {
			return fmt.Errorf("audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if updated.Status == domain.PlanningStatusPublished {
		s.afterPublish(ctx, updated)
	}
	s.log.InfoContext(ctx, "planning status changed",
		slog.String("planning_id", updated.ID.String()),
		slog.String("old_status", string(previous)),
		slog.String("new_status", string(updated.Status)),
	)
	return updated, nil
}
