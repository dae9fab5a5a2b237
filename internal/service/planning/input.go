package planning

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
)

const (
	minTypeLength        = 2
	maxTypeLength        = 100
	minLocationLength    = 2
	maxLocationLength    = 255
	maxDescriptionLength = 1000
	maxListLimit         = 200
	defaultHistoryLimit  = 100
)

// ActivityInput describes the activity of a new planning.
type ActivityInput struct {
	Type        string
	Start       time.Time
	End         time.Time
	Location    *string
	Description *string
	MinistryID  *uuid.UUID
	CampusID    *uuid.UUID
}

// ActivityPatch is a partial activity update. nil fields are left untouched.
type ActivityPatch struct {
	Type        *string
	Start       *time.Time
	End         *time.Time
	Location    *string
	Description *string
}

// CreateFullInput holds a whole planning tree to create.
type CreateFullInput struct {
	Activity ActivityInput
	Status   *domain.PlanningStatus // nil = DRAFT
	Slots    []domain.SlotPayload
}

// Validate checks all fields and collects all errors.
func (i CreateFullInput) Validate() error {
	var errs []domain.FieldError

	errs = append(errs, validateActivity(&i.Activity.Type, &i.Activity.Start, &i.Activity.End,
		i.Activity.Location, i.Activity.Description)...)
	if !i.Activity.Start.IsZero() && !i.Activity.End.IsZero() && !i.Activity.End.After(i.Activity.Start) {
		errs = append(errs, domain.FieldError{Field: "activity.end", Message: "must be after start"})
	}
	if i.Status != nil && !i.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "invalid value"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateFullInput holds a partial planning tree update.
// Slots == nil leaves the slots untouched; an empty slice deletes them all.
type UpdateFullInput struct {
	PlanningID uuid.UUID
	Activity   *ActivityPatch
	Status     *domain.PlanningStatus
	Slots      []domain.SlotPayload
}

// Validate checks all fields and collects all errors.
func (i UpdateFullInput) Validate() error {
	var errs []domain.FieldError

	if i.PlanningID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "planning_id", Message: "required"})
	}
	if a := i.Activity; a != nil {
		errs = append(errs, validateActivity(a.Type, a.Start, a.End, a.Location, a.Description)...)
		if a.Start != nil && a.End != nil && !a.End.After(*a.Start) {
			errs = append(errs, domain.FieldError{Field: "activity.end", Message: "must be after start"})
		}
	}
	if i.Status != nil && !i.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "invalid value"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// touchesTree reports whether the update modifies the activity or the slots.
func (i UpdateFullInput) touchesTree() bool {
	return (i.Activity != nil && !i.Activity.params().IsEmpty()) || i.Slots != nil
}

func (a *ActivityPatch) params() domain.ActivityUpdateParams {
	if a == nil {
		return domain.ActivityUpdateParams{}
	}
	p := domain.ActivityUpdateParams{
		Start:       a.Start,
		End:         a.End,
		Location:    trimOrNil(a.Location),
		Description: trimOrNil(a.Description),
	}
	if a.Type != nil {
		t := domain.NormalizeActivityType(*a.Type)
		p.Type = &t
	}
	return p
}

// UpdateStatusInput holds a planning status change.
type UpdateStatusInput struct {
	PlanningID uuid.UUID
	Status     domain.PlanningStatus
}

// Validate checks all fields and collects all errors.
func (i UpdateStatusInput) Validate() error {
	var errs []domain.FieldError

	if i.PlanningID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "planning_id", Message: "required"})
	}
	if !i.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "invalid value"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListInput holds planning list parameters.
type ListInput struct {
	Status *domain.PlanningStatus
	Limit  int
	Offset int
}

// Validate checks all fields and collects all errors.
func (i ListInput) Validate() error {
	var errs []domain.FieldError

	if i.Status != nil && !i.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "invalid value"})
	}
	if i.Limit < 0 || i.Limit > maxListLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: fmt.Sprintf("must be between 0 and %d", maxListLimit)})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func validateActivity(typ *string, start, end *time.Time, location, description *string) []domain.FieldError {
	var errs []domain.FieldError

	if typ != nil {
		n := utf8.RuneCountInString(domain.NormalizeActivityType(*typ))
		if n < minTypeLength || n > maxTypeLength {
			errs = append(errs, domain.FieldError{Field: "activity.type",
				Message: fmt.Sprintf("must be %d to %d characters", minTypeLength, maxTypeLength)})
		}
	}
	if start != nil && start.IsZero() {
		errs = append(errs, domain.FieldError{Field: "activity.start", Message: "required"})
	}
	if end != nil && end.IsZero() {
		errs = append(errs, domain.FieldError{Field: "activity.end", Message: "required"})
	}
	if location != nil {
		if n := utf8.RuneCountInString(strings.TrimSpace(*location)); n != 0 && (n < minLocationLength || n > maxLocationLength) {
			errs = append(errs, domain.FieldError{Field: "activity.location",
				Message: fmt.Sprintf("must be %d to %d characters", minLocationLength, maxLocationLength)})
		}
	}
	if description != nil && utf8.RuneCountInString(*description) > maxDescriptionLength {
		errs = append(errs, domain.FieldError{Field: "activity.description",
			Message: fmt.Sprintf("max %d characters", maxDescriptionLength)})
	}
	return errs
}

// trimOrNil trims whitespace. Returns nil if result is empty.
func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
