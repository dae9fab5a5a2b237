package slot

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
)

const maxNameLength = 100

// CreateSlotInput holds the parameters for creating a slot.
type CreateSlotInput struct {
	PlanningID        uuid.UUID
	Name              string
	Start             time.Time
	End               time.Time
	RequiredHeadcount *int // nil = configured default
}

// Validate checks all fields and collects all errors. Timing is checked by
// the Validator, not here.
func (i CreateSlotInput) Validate() error {
	var errs []domain.FieldError

	if i.PlanningID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "planning_id", Message: "required"})
	}
	errs = append(errs, validateFields("", &i.Name, &i.Start, &i.End, i.RequiredHeadcount)...)

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateSlotInput holds a partial slot update. nil fields are left untouched.
type UpdateSlotInput struct {
	SlotID            uuid.UUID
	Name              *string
	Start             *time.Time
	End               *time.Time
	RequiredHeadcount *int
}

// Validate checks all fields and collects all errors.
func (i UpdateSlotInput) Validate() error {
	var errs []domain.FieldError

	if i.SlotID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "slot_id", Message: "required"})
	}
	errs = append(errs, validateFields("", i.Name, i.Start, i.End, i.RequiredHeadcount)...)

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// validatePayloads checks the static fields of a slot tree. Field names are
// prefixed with the payload index, e.g. "slots[2].name".
func validatePayloads(payloads []domain.SlotPayload) error {
	var errs []domain.FieldError
	for idx, p := range payloads {
		prefix := fmt.Sprintf("slots[%d].", idx)
		errs = append(errs, validateFields(prefix, &p.Name, &p.Start, &p.End, p.RequiredHeadcount)...)
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func validateFields(prefix string, name *string, start, end *time.Time, headcount *int) []domain.FieldError {
	var errs []domain.FieldError

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			errs = append(errs, domain.FieldError{Field: prefix + "name", Message: "required"})
		} else if utf8.RuneCountInString(trimmed) > maxNameLength {
			errs = append(errs, domain.FieldError{Field: prefix + "name", Message: fmt.Sprintf("max %d characters", maxNameLength)})
		}
	}
	if start != nil && start.IsZero() {
		errs = append(errs, domain.FieldError{Field: prefix + "start", Message: "required"})
	}
	if end != nil && end.IsZero() {
		errs = append(errs, domain.FieldError{Field: prefix + "end", Message: "required"})
	}
	if headcount != nil && *headcount < 1 {
		errs = append(errs, domain.FieldError{Field: prefix + "required_headcount", Message: "must be at least 1"})
	}
	return errs
}
