package slot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/pkg/ctxutil"
)

// UpdateSlot applies a partial update. The merged interval is re-validated
// with the slot itself excluded from the collision check.
func (s *Service) UpdateSlot(ctx context.Context, input UpdateSlotInput) (*domain.Slot, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Slot
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.slots.GetByID(txCtx, input.SlotID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewSlotNotFound(input.SlotID)
			}
			return fmt.Errorf("get slot: %w", err)
		}

		if _, err := s.lockEditable(txCtx, current.PlanningID); err != nil {
			return err
		}

		next := *current
		if input.Name != nil {
			next.Name = strings.TrimSpace(*input.Name)
		}
		if input.Start != nil {
			next.Start = *input.Start
		}
		if input.End != nil {
			next.End = *input.End
		}
		if input.RequiredHeadcount != nil {
			next.RequiredHeadcount = *input.RequiredHeadcount
		}

		if _, err := s.validator.Validate(txCtx, next.PlanningID, next.Start, next.End, &next.ID); err != nil {
			return err
		}

		updated, err = s.slots.Update(txCtx, &next)
		if err != nil {
			return fmt.Errorf("update slot: %w", err)
		}

		changes := buildSlotChanges(current, updated)
		if len(changes) == 0 {
			return nil
		}
		if err := s.audit.Log(txCtx, domain.AuditRecord{
			UserID:     ctxutil.ActorFromCtx(txCtx),
			EntityType: domain.EntityTypeSlot,
			EntityID:   &updated.ID,
			Action:     domain.AuditActionUpdate,
			Changes:    changes,
		}); err != nil {
			return fmt.Errorf("audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "slot updated", slog.String("slot_id", updated.ID.String()))
	return updated, nil
}

func buildSlotChanges(old, cur *domain.Slot) map[string]any {
	changes := map[string]any{}
	if old.Name != cur.Name {
		changes["name"] = map[string]any{"old": old.Name, "new": cur.Name}
	}
	if !old.Start.Equal(cur.Start) {
		changes["start"] = map[string]any{"old": old.Start, "new": cur.Start}
	}
	if !old.End.Equal(cur.End) {
		changes["end"] = map[string]any{"old": old.End, "new": cur.End}
	}
	if old.RequiredHeadcount != cur.RequiredHeadcount {
		changes["required_headcount"] = map[string]any{"old": old.RequiredHeadcount, "new": cur.RequiredHeadcount}
	}
	return changes
}
