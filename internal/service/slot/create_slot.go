package slot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/pkg/ctxutil"
)

// CreateSlot validates the slot timing and persists it under the planning.
func (s *Service) CreateSlot(ctx context.Context, input CreateSlotInput) (*domain.Slot, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	headcount := s.defaultHeadcount
	if input.RequiredHeadcount != nil {
		headcount = *input.RequiredHeadcount
	}

	var created *domain.Slot
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.lockEditable(txCtx, input.PlanningID); err != nil {
			return err
		}

		if _, err := s.validator.Validate(txCtx, input.PlanningID, input.Start, input.End, nil); err != nil {
			return err
		}

		var err error
		created, err = s.slots.Create(txCtx, &domain.Slot{
			PlanningID:        input.PlanningID,
			Name:              strings.TrimSpace(input.Name),
			Start:             input.Start,
			End:               input.End,
			RequiredHeadcount: headcount,
		})
		if err != nil {
			return fmt.Errorf("create slot: %w", err)
		}

		if err := s.audit.Log(txCtx, domain.AuditRecord{
			UserID:     ctxutil.ActorFromCtx(txCtx),
			EntityType: domain.EntityTypeSlot,
			EntityID:   &created.ID,
			Action:     domain.AuditActionCreate,
			Changes: map[string]any{
				"planning_id": input.PlanningID.String(),
				"name":        created.Name,
			},
		}); err != nil {
			return fmt.Errorf("audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "slot created",
		slog.String("slot_id", created.ID.String()),
		slog.String("planning_id", created.PlanningID.String()),
	)
	return created, nil
}

// lockEditable locks the planning row and rejects FINISHED plannings.
func (s *Service) lockEditable(ctx context.Context, planningID uuid.UUID) (*domain.Planning, error) {
	planning, err := s.plannings.LockByID(ctx, planningID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewPlanningNotFound(planningID)
		}
		return nil, fmt.Errorf("lock planning: %w", err)
	}
	if planning.Status == domain.PlanningStatusFinished {
		return nil, domain.NewPlanningImmutable(planning.Status)
	}
	return planning, nil
}
