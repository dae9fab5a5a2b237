package slot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/pkg/ctxutil"
)

// DeleteSlot removes the slot and its assignments atomically.
func (s *Service) DeleteSlot(ctx context.Context, slotID uuid.UUID) error {
	if slotID == uuid.Nil {
		return domain.NewValidationError("slot_id", "required")
	}

	var removed int64
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.slots.GetByID(txCtx, slotID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewSlotNotFound(slotID)
			}
			return fmt.Errorf("get slot: %w", err)
		}

		if _, err := s.lockEditable(txCtx, current.PlanningID); err != nil {
			return err
		}

		removed, err = s.deleteCascade(txCtx, slotID)
		if err != nil {
			return err
		}

		if err := s.audit.Log(txCtx, domain.AuditRecord{
			UserID:     ctxutil.ActorFromCtx(txCtx),
			EntityType: domain.EntityTypeSlot,
			EntityID:   &slotID,
			Action:     domain.AuditActionDelete,
			Changes: map[string]any{
				"name":                current.Name,
				"assignments_removed": removed,
			},
		}); err != nil {
			return fmt.Errorf("audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "slot deleted",
		slog.String("slot_id", slotID.String()),
		slog.Int64("assignments_removed", removed),
	)
	return nil
}

// deleteCascade deletes the slot's assignments, then the slot.
func (s *Service) deleteCascade(ctx context.Context, slotID uuid.UUID) (int64, error) {
	n, err := s.assignments.DeleteBySlot(ctx, slotID)
	if err != nil {
		return 0, fmt.Errorf("delete slot assignments: %w", err)
	}
	if err := s.slots.Delete(ctx, slotID); err != nil {
		return 0, fmt.Errorf("delete slot: %w", err)
	}
	return n, nil
}
