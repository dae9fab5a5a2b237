package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an operator account allowed to sign in to the back office.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Member is a volunteer that can be assigned to slots.
type Member struct {
	ID        uuid.UUID
	LastName  string
	FirstName string
	Email     *string
	CreatedAt time.Time
}

// MemberSummary is the light member projection embedded in read models.
type MemberSummary struct {
	ID        uuid.UUID
	LastName  string
	FirstName string
}
