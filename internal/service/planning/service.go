package planning

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/internal/service/slot"
	"github.com/mla/planning-backend/internal/workflow"
	"github.com/mla/planning-backend/pkg/ctxutil"
)

type activityRepo interface {
	Create(ctx context.Context, a *domain.Activity) (*domain.Activity, error)
	Update(ctx context.Context, id uuid.UUID, params domain.ActivityUpdateParams) (*domain.Activity, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type planningRepo interface {
	Create(ctx context.Context, p *domain.Planning) (*domain.Planning, error)
	GetWithActivity(ctx context.Context, id uuid.UUID) (*domain.Planning, error)
	LockByID(ctx context.Context, id uuid.UUID) (*domain.Planning, error)
	ListWithActivity(ctx context.Context, filter domain.PlanningFilter) ([]domain.Planning, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PlanningStatus) (*domain.Planning, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type slotRepo interface {
	ListByPlanning(ctx context.Context, planningID uuid.UUID) ([]domain.Slot, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type assignmentRepo interface {
	ListByPlanning(ctx context.Context, planningID uuid.UUID) ([]domain.Assignment, error)
	DeleteByPlanning(ctx context.Context, planningID uuid.UUID) (int64, error)
}

type slotSyncer interface {
	SyncPlanningSlots(ctx context.Context, planningID uuid.UUID, payloads []domain.SlotPayload) (slot.SyncResult, error)
}

type auditRepo interface {
	Log(ctx context.Context, record domain.AuditRecord) error
	GetByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, limit int) ([]domain.AuditRecord, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PublishHook runs inside the transaction that moves a planning to
// PUBLISHED. Returning an error rolls the whole operation back.
type PublishHook interface {
	OnPublish(ctx context.Context, planning domain.Planning) error
}

// PublishCommitHook is implemented by hooks that also need to run once the
// publishing transaction has committed. AfterPublish is never called for a
// publish that was rolled back.
type PublishCommitHook interface {
	AfterPublish(ctx context.Context, planning domain.Planning)
}

// Service orchestrates the Planning -> Slots -> Assignments aggregate.
type Service struct {
	activities  activityRepo
	plannings   planningRepo
	slots       slotRepo
	assignments assignmentRepo
	slotSync    slotSyncer
	audit       auditRepo
	tx          txManager
	hook        PublishHook
	workflow    *workflow.Engine[domain.PlanningStatus]
	log         *slog.Logger
}

// NewService creates a new Planning service. A nil hook disables publish
// side effects.
func NewService(
	log *slog.Logger,
	activities activityRepo,
	plannings planningRepo,
	slots slotRepo,
	assignments assignmentRepo,
	slotSync slotSyncer,
	audit auditRepo,
	tx txManager,
	hook PublishHook,
) *Service {
	return &Service{
		activities:  activities,
		plannings:   plannings,
		slots:       slots,
		assignments: assignments,
		slotSync:    slotSync,
		audit:       audit,
		tx:          tx,
		hook:        hook,
		workflow:    workflow.NewPlanningEngine(log),
		log:         log.With("service", "planning"),
	}
}

// transition validates current -> target, writes the new status and, when
// the target is PUBLISHED, runs the publish hook. Nothing is written when
// the transition is not allowed.
func (s *Service) transition(ctx context.Context, p *domain.Planning, target domain.PlanningStatus) (*domain.Planning, error) {
	var updated *domain.Planning
	err := s.workflow.ExecuteTransition(ctx, p.Status, target, func() error {
		var err error
		updated, err = s.plannings.UpdateStatus(ctx, p.ID, target)
		if err != nil {
			return err
		}
		if target != domain.PlanningStatusPublished || s.hook == nil {
			return nil
		}
		return s.hook.OnPublish(ctx, *updated)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) afterPublish(ctx context.Context, p *domain.Planning) {
	if h, ok := s.hook.(PublishCommitHook); ok {
		h.AfterPublish(ctx, *p)
	}
}

func (s *Service) logAudit(ctx context.Context, id uuid.UUID, action domain.AuditAction, changes map[string]any) error {
	return s.audit.Log(ctx, domain.AuditRecord{
		UserID:     ctxutil.ActorFromCtx(ctx),
		EntityType: domain.EntityTypePlanning,
		EntityID:   &id,
		Action:     action,
		Changes:    changes,
	})
}
