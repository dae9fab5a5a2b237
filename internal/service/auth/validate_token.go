package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
)

// ValidateToken checks an access token and returns the caller's identity.
// Any invalid token maps to domain.ErrUnauthorized.
func (s *Service) ValidateToken(ctx context.Context, token string) (uuid.UUID, domain.UserRole, error) {
	id, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		s.log.DebugContext(ctx, "access token rejected", "error", err)
		return uuid.Nil, "", fmt.Errorf("auth.ValidateToken: %w", domain.ErrUnauthorized)
	}
	return id.UserID, id.Role, nil
}
