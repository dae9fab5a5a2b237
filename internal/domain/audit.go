package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditRecord logs a mutation event on a domain entity.
// UserID is nil when the mutation did not come from an authenticated caller
// (CLI, background maintenance).
type AuditRecord struct {
	ID         uuid.UUID
	UserID     *uuid.UUID
	EntityType EntityType
	EntityID   *uuid.UUID
	Action     AuditAction
	Changes    map[string]any
	CreatedAt  time.Time
}
