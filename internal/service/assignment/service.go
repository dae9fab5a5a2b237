package assignment

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/internal/workflow"
)

type assignmentRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Assignment, error)
	ListBySlot(ctx context.Context, slotID uuid.UUID) ([]domain.Assignment, error)
	Create(ctx context.Context, a *domain.Assignment) (*domain.Assignment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AssignmentStatus) (*domain.Assignment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBySlot(ctx context.Context, slotID uuid.UUID) (int64, error)
}

type slotReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error)
}

type planningReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Planning, error)
}

type roleChecker interface {
	HasRole(ctx context.Context, memberID uuid.UUID, roleCode string) (bool, error)
}

type auditLogger interface {
	Log(ctx context.Context, record domain.AuditRecord) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service manages member-to-slot assignments.
type Service struct {
	assignments assignmentRepo
	slots       slotReader
	plannings   planningReader
	members     roleChecker
	audit       auditLogger
	tx          txManager
	workflow    *workflow.Engine[domain.AssignmentStatus]
	log         *slog.Logger
}

// NewService creates a new Assignment service.
func NewService(
	log *slog.Logger,
	assignments assignmentRepo,
	slots slotReader,
	plannings planningReader,
	members roleChecker,
	audit auditLogger,
	tx txManager,
) *Service {
	return &Service{
		assignments: assignments,
		slots:       slots,
		plannings:   plannings,
		members:     members,
		audit:       audit,
		tx:          tx,
		workflow:    workflow.NewAssignmentEngine(log),
		log:         log.With("service", "assignment"),
	}
}

