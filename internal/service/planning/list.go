package planning

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
)

// ListPlannings returns plannings with their activity, latest activity first.
func (s *Service) ListPlannings(ctx context.Context, input ListInput) ([]domain.Planning, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	list, err := s.plannings.ListWithActivity(ctx, domain.PlanningFilter{
		Status: input.Status,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list plannings: %w", err)
	}
	return list, nil
}

// GetPlanningHistory returns the planning's audit records, newest first.
// limit <= 0 uses the default.
func (s *Service) GetPlanningHistory(ctx context.Context, planningID uuid.UUID, limit int) ([]domain.AuditRecord, error) {
	if planningID == uuid.Nil {
		return nil, domain.NewValidationError("planning_id", "required")
	}
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}

	records, err := s.audit.GetByEntity(ctx, domain.EntityTypePlanning, planningID, limit)
	if err != nil {
		return nil, fmt.Errorf("get planning history: %w", err)
	}
	return records, nil
}
