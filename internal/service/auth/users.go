package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mla/planning-backend/internal/domain"
)

// CreateUser creates an operator account with a bcrypt password hash.
// Returns ErrAlreadyExists if the email is taken.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)

	if err := input.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth.CreateUser hash password: %w", err)
	}

	var created *domain.User
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := time.Now().UTC()
		u, err := s.users.Create(txCtx, &domain.User{
			ID:           uuid.New(),
			Email:        input.Email,
			Name:         input.Name,
			PasswordHash: string(hash),
			Role:         input.Role,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		if err := s.logUserAudit(txCtx, u.ID, domain.AuditActionCreate, map[string]any{
			"email": u.Email,
			"role":  u.Role.String(),
		}); err != nil {
			return fmt.Errorf("audit: %w", err)
		}

		created = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth.CreateUser: %w", err)
	}

	s.log.InfoContext(ctx, "user created",
		slog.String("user_id", created.ID.String()),
		slog.String("role", created.Role.String()))

	return created, nil
}

// PromoteUser changes the role of the account identified by email.
// Setting the role it already has is a no-op and writes no audit record.
func (s *Service) PromoteUser(ctx context.Context, input PromoteUserInput) (*domain.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.User
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		u, err := s.users.GetByEmail(txCtx, input.Email)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if u.Role == input.Role {
			updated = u
			return nil
		}

		old := u.Role
		u, err = s.users.UpdateRole(txCtx, u.ID, input.Role)
		if err != nil {
			return fmt.Errorf("update role: %w", err)
		}

		if err := s.logUserAudit(txCtx, u.ID, domain.AuditActionUpdate, map[string]any{
			"role": map[string]any{"old": old.String(), "new": u.Role.String()},
		}); err != nil {
			return fmt.Errorf("audit: %w", err)
		}

		updated = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth.PromoteUser: %w", err)
	}

	s.log.InfoContext(ctx, "user role changed",
		slog.String("user_id", updated.ID.String()),
		slog.String("role", updated.Role.String()))

	return updated, nil
}
