package auth

import (
	"time"

	"github.com/mla/planning-backend/internal/domain"
)

// AuthResult is returned by a successful login.
type AuthResult struct {
	AccessToken string
	ExpiresIn   time.Duration
	User        *domain.User
}
