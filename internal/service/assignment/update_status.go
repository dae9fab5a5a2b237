package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/pkg/ctxutil"
)

// UpdateStatus moves an assignment to a new status. Pointing statuses need a
// published planning; every change must be allowed by the assignment workflow.
func (s *Service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*domain.Assignment, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		updated  *domain.Assignment
		previous domain.AssignmentStatus
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.assignments.GetByID(txCtx, input.AssignmentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewAssignmentNotFound(input.AssignmentID)
			}
			return fmt.Errorf("get assignment: %w", err)
		}
		slot, err := s.slots.GetByID(txCtx, current.SlotID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewAssignmentNotFound(input.AssignmentID)
			}
			return fmt.Errorf("get slot: %w", err)
		}

		if input.Status.IsPointing() {
			if err := s.requirePublished(txCtx, slot); err != nil {
				return err
			}
		}

		if err := s.workflow.ValidateTransition(current.Status, input.Status); err != nil {
			return err
		}

		previous = current.Status
		updated, err = s.assignments.UpdateStatus(txCtx, current.ID, input.Status)
		if err != nil {
			return fmt.Errorf("update assignment status: %w", err)
		}

		if err := s.audit.Log(txCtx, domain.AuditRecord{
			UserID:     ctxutil.ActorFromCtx(txCtx),
			EntityType: domain.EntityTypeAssignment,
			EntityID:   &updated.ID,
			Action:     domain.AuditActionStatus,
			Changes: map[string]any{
				"status": map[string]any{"old": string(previous), "new": string(updated.Status)},
			},
		}); err != nil {
			return fmt.Errorf("audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "assignment status changed",
		slog.String("assignment_id", updated.ID.String()),
		slog.String("old_status", string(previous)),
		slog.String("new_status", string(updated.Status)),
	)
	return updated, nil
}
