package workflow

import (
	"log/slog"

	"github.com/mla/planning-backend/internal/domain"
)

// PlanningTransitions is the Planning status table. FINISHED is terminal.
var PlanningTransitions = map[domain.PlanningStatus][]domain.PlanningStatus{
	domain.PlanningStatusDraft:     {domain.PlanningStatusPublished, domain.PlanningStatusCancelled},
	domain.PlanningStatusPublished: {domain.PlanningStatusFinished, domain.PlanningStatusCancelled},
	domain.PlanningStatusCancelled: {domain.PlanningStatusDraft},
	domain.PlanningStatusFinished:  {},
}

// AssignmentTransitions is the Assignment status table.
var AssignmentTransitions = map[domain.AssignmentStatus][]domain.AssignmentStatus{
	domain.AssignmentStatusProposed:  {domain.AssignmentStatusConfirmed, domain.AssignmentStatusRefused},
	domain.AssignmentStatusConfirmed: {domain.AssignmentStatusPresent, domain.AssignmentStatusAbsent, domain.AssignmentStatusRefused},
	domain.AssignmentStatusRefused:   {domain.AssignmentStatusProposed},
	domain.AssignmentStatusPresent:   {domain.AssignmentStatusConfirmed},
	domain.AssignmentStatusAbsent:    {domain.AssignmentStatusConfirmed},
}

// NewPlanningEngine returns the engine for Planning statuses.
func NewPlanningEngine(log *slog.Logger) *Engine[domain.PlanningStatus] {
	return New(log, "planning", PlanningTransitions)
}

// NewAssignmentEngine returns the engine for Assignment statuses.
func NewAssignmentEngine(log *slog.Logger) *Engine[domain.AssignmentStatus] {
	return New(log, "assignment", AssignmentTransitions)
}
