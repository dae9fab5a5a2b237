// Package auth authenticates operator accounts and manages their roles.
package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mla/planning-backend/internal/auth"
	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/pkg/ctxutil"
)

// userRepo defines the user repository interface needed by auth service.
type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.UserRole) (*domain.User, error)
}

type auditLogger interface {
	Log(ctx context.Context, record domain.AuditRecord) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// jwtManager defines the token operations needed by auth service.
type jwtManager interface {
	GenerateAccessToken(userID uuid.UUID, role domain.UserRole) (string, error)
	ValidateAccessToken(token string) (auth.Identity, error)
	AccessTTL() time.Duration
}

// Service implements auth operations.
type Service struct {
	log        *slog.Logger
	users      userRepo
	audit      auditLogger
	tx         txManager
	jwt        jwtManager
	bcryptCost int
}

// NewService creates a new auth service instance.
// A bcryptCost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewService(
	logger *slog.Logger,
	users userRepo,
	audit auditLogger,
	tx txManager,
	jwt jwtManager,
	bcryptCost int,
) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		log:        logger.With("service", "auth"),
		users:      users,
		audit:      audit,
		tx:         tx,
		jwt:        jwt,
		bcryptCost: bcryptCost,
	}
}

func (s *Service) logUserAudit(ctx context.Context, userID uuid.UUID, action domain.AuditAction, changes map[string]any) error {
	rec := domain.AuditRecord{
		EntityType: domain.EntityTypeUser,
		EntityID:   &userID,
		Action:     action,
		Changes:    changes,
	}
	if actor, ok := ctxutil.UserIDFromCtx(ctx); ok {
		rec.UserID = &actor
	}
	return s.audit.Log(ctx, rec)
}
