package assignment

import (
	"strings"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
)

// AssignInput holds the parameters for assigning a member to a slot.
type AssignInput struct {
	SlotID   uuid.UUID
	MemberID uuid.UUID
	RoleCode string
	Status   *domain.AssignmentStatus // nil = PROPOSED
}

// Validate checks all fields and collects all errors.
func (i AssignInput) Validate() error {
	var errs []domain.FieldError

	if i.SlotID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "slot_id", Message: "required"})
	}
	if i.MemberID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "member_id", Message: "required"})
	}
	if strings.TrimSpace(i.RoleCode) == "" {
		errs = append(errs, domain.FieldError{Field: "role_code", Message: "required"})
	}
	if i.Status != nil && !i.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "invalid value"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateStatusInput holds the parameters for changing an assignment status.
type UpdateStatusInput struct {
	AssignmentID uuid.UUID
	Status       domain.AssignmentStatus
}

// Validate checks all fields and collects all errors.
func (i UpdateStatusInput) Validate() error {
	var errs []domain.FieldError

	if i.AssignmentID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "assignment_id", Message: "required"})
	}
	if !i.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "invalid value"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
