package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
)

// SyncResult counts what SyncAssignments did.
type SyncResult struct {
	Created int
	Updated int
	Deleted int
	Skipped int
}

// SyncAssignments reconciles the slot's assignments with payloads.
//
// Persisted assignments whose id is missing from payloads are deleted. A
// payload with a known id only changes the status, and only when a different
// status is given. Resending the current status is a no-op here, whereas
// UpdateStatus rejects X -> X with WorkflowInvalidTransition. Any other
// payload creates an assignment; if it lacks a member or a role it is logged
// and skipped instead of failing the batch.
func (s *Service) SyncAssignments(ctx context.Context, slotID uuid.UUID, payloads []domain.AssignmentPayload) (SyncResult, error) {
	var res SyncResult

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		res = SyncResult{}

		if _, err := s.slots.GetByID(txCtx, slotID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewSlotNotFound(slotID)
			}
			return fmt.Errorf("get slot: %w", err)
		}

		persisted, err := s.assignments.ListBySlot(txCtx, slotID)
		if err != nil {
			return fmt.Errorf("list assignments: %w", err)
		}
		current := make(map[uuid.UUID]domain.Assignment, len(persisted))
		for _, a := range persisted {
			current[a.ID] = a
		}

		keep := make(map[uuid.UUID]bool, len(payloads))
		for _, p := range payloads {
			if p.ID != nil {
				keep[*p.ID] = true
			}
		}

		for id := range current {
			if keep[id] {
				continue
			}
			if err := s.assignments.Delete(txCtx, id); err != nil {
				return fmt.Errorf("delete assignment %s: %w", id, err)
			}
			res.Deleted++
		}

		for _, p := range payloads {
			if p.ID != nil {
				if existing, ok := current[*p.ID]; ok {
					// Same status is skipped rather than sent through UpdateStatus.
					if p.Status == nil || *p.Status == existing.Status {
						continue
					}
					if _, err := s.UpdateStatus(txCtx, UpdateStatusInput{AssignmentID: existing.ID, Status: *p.Status}); err != nil {
						return err
					}
					res.Updated++
					continue
				}
			}

			if p.MemberID == nil || p.RoleCode == nil || *p.RoleCode == "" {
				s.log.WarnContext(txCtx, "incomplete assignment payload skipped",
					slog.String("slot_id", slotID.String()))
				res.Skipped++
				continue
			}

			if _, err := s.AssignMemberToSlot(txCtx, AssignInput{
				SlotID:   slotID,
				MemberID: *p.MemberID,
				RoleCode: *p.RoleCode,
				Status:   p.Status,
			}); err != nil {
				return err
			}
			res.Created++
		}
		return nil
	})
	if err != nil {
		return SyncResult{}, err
	}

	s.log.DebugContext(ctx, "assignments synced",
		slog.String("slot_id", slotID.String()),
		slog.Int("created", res.Created),
		slog.Int("updated", res.Updated),
		slog.Int("deleted", res.Deleted),
		slog.Int("skipped", res.Skipped),
	)
	return res, nil
}

// DeleteBySlot removes every assignment of the slot.
func (s *Service) DeleteBySlot(ctx context.Context, slotID uuid.UUID) (int64, error) {
	n, err := s.assignments.DeleteBySlot(ctx, slotID)
	if err != nil {
		return 0, fmt.Errorf("delete assignments by slot: %w", err)
	}
	return n, nil
}
