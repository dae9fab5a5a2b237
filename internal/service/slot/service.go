package slot

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/internal/service/assignment"
)

type slotRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error)
	ListByPlanning(ctx context.Context, planningID uuid.UUID) ([]domain.Slot, error)
	FindOverlapping(ctx context.Context, planningID uuid.UUID, start, end time.Time, exclude *uuid.UUID) ([]domain.Slot, error)
	Create(ctx context.Context, s *domain.Slot) (*domain.Slot, error)
	Update(ctx context.Context, s *domain.Slot) (*domain.Slot, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type planningRepo interface {
	GetWithActivity(ctx context.Context, id uuid.UUID) (*domain.Planning, error)
	LockByID(ctx context.Context, id uuid.UUID) (*domain.Planning, error)
}

type assignmentSyncer interface {
	SyncAssignments(ctx context.Context, slotID uuid.UUID, payloads []domain.AssignmentPayload) (assignment.SyncResult, error)
	DeleteBySlot(ctx context.Context, slotID uuid.UUID) (int64, error)
}

type auditLogger interface {
	Log(ctx context.Context, record domain.AuditRecord) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service manages slots and keeps them consistent with their activity window.
type Service struct {
	slots            slotRepo
	plannings        planningRepo
	assignments      assignmentSyncer
	audit            auditLogger
	tx               txManager
	validator        *Validator
	defaultHeadcount int
	log              *slog.Logger
}

// NewService creates a new Slot service. defaultHeadcount is used for slots
// created without an explicit required headcount; values below 1 fall back
// to domain.DefaultRequiredHeadcount.
func NewService(
	log *slog.Logger,
	slots slotRepo,
	plannings planningRepo,
	assignments assignmentSyncer,
	audit auditLogger,
	tx txManager,
	defaultHeadcount int,
) *Service {
	if defaultHeadcount < 1 {
		defaultHeadcount = domain.DefaultRequiredHeadcount
	}
	return &Service{
		slots:            slots,
		plannings:        plannings,
		assignments:      assignments,
		audit:            audit,
		tx:               tx,
		validator:        NewValidator(plannings, slots),
		defaultHeadcount: defaultHeadcount,
		log:              log.With("service", "slot"),
	}
}

