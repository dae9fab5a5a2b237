package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// ---------------------------------------------------------------------------
// Planning engine errors
// ---------------------------------------------------------------------------

// ErrorKind classifies planning engine failures.
type ErrorKind string

const (
	KindSlotChronology           ErrorKind = "SlotChronologyError"
	KindSlotOutOfBounds          ErrorKind = "SlotOutOfBounds"
	KindSlotCollision            ErrorKind = "SlotCollision"
	KindPlanningNotFound         ErrorKind = "PlanningNotFound"
	KindSlotNotFound             ErrorKind = "SlotNotFound"
	KindAssignmentNotFound       ErrorKind = "AssignmentNotFound"
	KindPlanningParentMissing    ErrorKind = "PlanningParentMissing"
	KindMemberMissingRole        ErrorKind = "MemberMissingRole"
	KindPlanningNotPublished     ErrorKind = "PlanningNotPublished"
	KindInvalidTransition        ErrorKind = "WorkflowInvalidTransition"
	KindPlanningImmutable        ErrorKind = "PlanningImmutable"
	KindPlanningDeleteImpossible ErrorKind = "PlanningDeleteImpossible"
)

var kindInfo = map[ErrorKind]struct {
	code     string
	sentinel error
}{
	KindPlanningImmutable:        {"PLAN_001", ErrValidation},
	KindPlanningNotPublished:     {"PLAN_002", ErrValidation},
	KindPlanningNotFound:         {"PLAN_003", ErrNotFound},
	KindPlanningDeleteImpossible: {"PLAN_004", ErrValidation},
	KindSlotCollision:            {"SLOT_001", ErrConflict},
	KindSlotOutOfBounds:          {"SLOT_002", ErrValidation},
	KindSlotChronology:           {"SLOT_003", ErrValidation},
	KindSlotNotFound:             {"SLOT_004", ErrNotFound},
	KindAssignmentNotFound:       {"ASGN_001", ErrNotFound},
	KindPlanningParentMissing:    {"ASGN_003", ErrNotFound},
	KindMemberMissingRole:        {"ASGN_006", ErrValidation},
	KindInvalidTransition:        {"WKFL_001", ErrValidation},
}

// Error is a typed planning engine failure with a stable code.
// It unwraps to one of the sentinel errors so transports can map it with errors.Is.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return kindInfo[e.Kind].sentinel }

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Code:    kindInfo[kind].code,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsKind reports whether err (or anything it wraps) is a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

const errTimeLayout = "2006-01-02 15:04"

func NewSlotChronologyError() *Error {
	return newError(KindSlotChronology, "slot end must be after its start")
}

func NewSlotOutOfBounds(activityStart, activityEnd time.Time) *Error {
	return newError(KindSlotOutOfBounds, "slot must lie within the activity (%s - %s)",
		activityStart.Format(errTimeLayout), activityEnd.Format(errTimeLayout))
}

func NewSlotCollision(name string, start, end time.Time) *Error {
	return newError(KindSlotCollision, "collision with existing slot '%s' (%s - %s)",
		name, start.Format(errTimeLayout), end.Format(errTimeLayout))
}

func NewPlanningNotFound(id uuid.UUID) *Error {
	return newError(KindPlanningNotFound, "planning %s or its activity not found", id)
}

func NewSlotNotFound(id uuid.UUID) *Error {
	return newError(KindSlotNotFound, "slot %s not found", id)
}

func NewAssignmentNotFound(id uuid.UUID) *Error {
	return newError(KindAssignmentNotFound, "assignment %s or its slot not found", id)
}

func NewPlanningParentMissing(slotID uuid.UUID) *Error {
	return newError(KindPlanningParentMissing, "parent planning not found for slot %s", slotID)
}

func NewMemberMissingRole(role string) *Error {
	return newError(KindMemberMissingRole, "member does not hold the required role: %s", role)
}

func NewPlanningNotPublished() *Error {
	return newError(KindPlanningNotPublished, "cannot record attendance on a planning that is not published")
}

func NewInvalidTransition(current, target string) *Error {
	return newError(KindInvalidTransition, "transition not allowed: %s -> %s", current, target)
}

func NewPlanningImmutable(status PlanningStatus) *Error {
	return newError(KindPlanningImmutable, "planning is %s, modification forbidden", status)
}

func NewPlanningDeleteImpossible(status PlanningStatus) *Error {
	return newError(KindPlanningDeleteImpossible, "cannot delete planning: it is %s", status)
}
