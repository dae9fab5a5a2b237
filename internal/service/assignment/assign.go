package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/pkg/ctxutil"
)

// AssignMemberToSlot creates an assignment after checking that the slot
// exists and that the member holds the role. Creating directly as PRESENT or
// ABSENT requires a published planning.
func (s *Service) AssignMemberToSlot(ctx context.Context, input AssignInput) (*domain.Assignment, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	status := domain.AssignmentStatusProposed
	if input.Status != nil {
		status = *input.Status
	}
	roleCode := strings.TrimSpace(input.RoleCode)

	var created *domain.Assignment
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		slot, err := s.checkEligibility(txCtx, input, roleCode)
		if err != nil {
			return err
		}

		if status.IsPointing() {
			if err := s.requirePublished(txCtx, slot); err != nil {
				return err
			}
		}

		created, err = s.assignments.Create(txCtx, &domain.Assignment{
			SlotID:   slot.ID,
			MemberID: input.MemberID,
			RoleCode: roleCode,
			Status:   status,
		})
		if err != nil {
			return fmt.Errorf("create assignment: %w", err)
		}

		if err := s.audit.Log(txCtx, domain.AuditRecord{
			UserID:     ctxutil.ActorFromCtx(txCtx),
			EntityType: domain.EntityTypeAssignment,
			EntityID:   &created.ID,
			Action:     domain.AuditActionCreate,
			Changes: map[string]any{
				"slot_id":   slot.ID.String(),
				"member_id": input.MemberID.String(),
				"role_code": roleCode,
				"status":    string(status),
			},
		}); err != nil {
			return fmt.Errorf("audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "member assigned",
		slog.String("assignment_id", created.ID.String()),
		slog.String("slot_id", created.SlotID.String()),
		slog.String("member_id", created.MemberID.String()),
		slog.String("status", string(created.Status)),
	)
	return created, nil
}

// checkEligibility loads the slot and verifies the member holds roleCode.
func (s *Service) checkEligibility(ctx context.Context, input AssignInput, roleCode string) (*domain.Slot, error) {
	slot, err := s.slots.GetByID(ctx, input.SlotID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewSlotNotFound(input.SlotID)
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}

	ok, err := s.members.HasRole(ctx, input.MemberID, roleCode)
	if err != nil {
		return nil, fmt.Errorf("check member role: %w", err)
	}
	if !ok {
		return nil, domain.NewMemberMissingRole(roleCode)
	}
	return slot, nil
}

// requirePublished fails unless the slot's planning is PUBLISHED.
func (s *Service) requirePublished(ctx context.Context, slot *domain.Slot) error {
	planning, err := s.plannings.GetByID(ctx, slot.PlanningID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewPlanningParentMissing(slot.ID)
		}
		return fmt.Errorf("get planning: %w", err)
	}
	if planning.Status != domain.PlanningStatusPublished {
		return domain.NewPlanningNotPublished()
	}
	return nil
}
