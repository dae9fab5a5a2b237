package slot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/internal/service/assignment"
)

// SyncResult counts what SyncPlanningSlots did.
type SyncResult struct {
	Created     int
	Updated     int
	Deleted     int
	Assignments assignment.SyncResult
}

func (r *SyncResult) addAssignments(a assignment.SyncResult) {
	r.Assignments.Created += a.Created
	r.Assignments.Updated += a.Updated
	r.Assignments.Deleted += a.Deleted
	r.Assignments.Skipped += a.Skipped
}

// SyncPlanningSlots reconciles the planning's slots with payloads.
//
// Slots missing from payloads are deleted first, with their assignments, so
// they cannot cause collisions with the slots that replace them. A payload
// whose id matches a persisted slot updates it in place; any other payload
// creates a slot. Every slot is timing-validated before it is written.
//
// Nested assignments of an updated slot are synced only when its Assignments
// is non-nil, so an empty slice clears them and nil leaves them untouched.
//
// The caller is expected to have checked that the planning may be modified.
func (s *Service) SyncPlanningSlots(ctx context.Context, planningID uuid.UUID, payloads []domain.SlotPayload) (SyncResult, error) {
	if err := validatePayloads(payloads); err != nil {
		return SyncResult{}, err
	}

	var res SyncResult
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		res = SyncResult{}

		persisted, err := s.slots.ListByPlanning(txCtx, planningID)
		if err != nil {
			return fmt.Errorf("list slots: %w", err)
		}
		current := make(map[uuid.UUID]domain.Slot, len(persisted))
		for _, sl := range persisted {
			current[sl.ID] = sl
		}

		keep := make(map[uuid.UUID]bool, len(payloads))
		for _, p := range payloads {
			if p.ID != nil {
				keep[*p.ID] = true
			}
		}

		for _, sl := range persisted {
			if keep[sl.ID] {
				continue
			}
			n, err := s.deleteCascade(txCtx, sl.ID)
			if err != nil {
				return err
			}
			res.Deleted++
			res.Assignments.Deleted += int(n)
		}

		for _, p := range payloads {
			if p.ID != nil {
				if existing, ok := current[*p.ID]; ok {
					if err := s.updateFromPayload(txCtx, existing, p, &res); err != nil {
						return err
					}
					res.Updated++
					continue
				}
			}
			if err := s.createFromPayload(txCtx, planningID, p, &res); err != nil {
				return err
			}
			res.Created++
		}
		return nil
	})
	if err != nil {
		return SyncResult{}, err
	}

	s.log.DebugContext(ctx, "slots synced",
		slog.String("planning_id", planningID.String()),
		slog.Int("created", res.Created),
		slog.Int("updated", res.Updated),
		slog.Int("deleted", res.Deleted),
	)
	return res, nil
}

func (s *Service) updateFromPayload(ctx context.Context, existing domain.Slot, p domain.SlotPayload, res *SyncResult) error {
	if _, err := s.validator.Validate(ctx, existing.PlanningID, p.Start, p.End, &existing.ID); err != nil {
		return err
	}

	next := existing
	next.Name = strings.TrimSpace(p.Name)
	next.Start = p.Start
	next.End = p.End
	if p.RequiredHeadcount != nil {
		next.RequiredHeadcount = *p.RequiredHeadcount
	}
	if _, err := s.slots.Update(ctx, &next); err != nil {
		return fmt.Errorf("update slot %s: %w", existing.ID, err)
	}

	if p.Assignments == nil {
		return nil
	}
	ar, err := s.assignments.SyncAssignments(ctx, existing.ID, p.Assignments)
	if err != nil {
		return err
	}
	res.addAssignments(ar)
	return nil
}

func (s *Service) createFromPayload(ctx context.Context, planningID uuid.UUID, p domain.SlotPayload, res *SyncResult) error {
	if _, err := s.validator.Validate(ctx, planningID, p.Start, p.End, nil); err != nil {
		return err
	}

	headcount := s.defaultHeadcount
	if p.RequiredHeadcount != nil {
		headcount = *p.RequiredHeadcount
	}
	created, err := s.slots.Create(ctx, &domain.Slot{
		PlanningID:        planningID,
		Name:              strings.TrimSpace(p.Name),
		Start:             p.Start,
		End:               p.End,
		RequiredHeadcount: headcount,
	})
	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	if len(p.Assignments) == 0 {
		return nil
	}
	ar, err := s.assignments.SyncAssignments(ctx, created.ID, p.Assignments)
	if err != nil {
		return err
	}
	res.addAssignments(ar)
	return nil
}
