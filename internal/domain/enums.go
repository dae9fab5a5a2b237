package domain

// PlanningStatus is the workflow state of a Planning.
type PlanningStatus string

const (
	PlanningStatusDraft     PlanningStatus = "DRAFT"
	PlanningStatusPublished PlanningStatus = "PUBLISHED"
	PlanningStatusCancelled PlanningStatus = "CANCELLED"
	PlanningStatusFinished  PlanningStatus = "FINISHED"
)

func (s PlanningStatus) String() string { return string(s) }

func (s PlanningStatus) IsValid() bool {
	switch s {
	case PlanningStatusDraft, PlanningStatusPublished, PlanningStatusCancelled, PlanningStatusFinished:
		return true
	}
	return false
}

// AssignmentStatus is the workflow state of an Assignment.
type AssignmentStatus string

const (
	AssignmentStatusProposed  AssignmentStatus = "PROPOSED"
	AssignmentStatusConfirmed AssignmentStatus = "CONFIRMED"
	AssignmentStatusRefused   AssignmentStatus = "REFUSED"
	AssignmentStatusPresent   AssignmentStatus = "PRESENT"
	AssignmentStatusAbsent    AssignmentStatus = "ABSENT"
)

func (s AssignmentStatus) String() string { return string(s) }

func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentStatusProposed, AssignmentStatusConfirmed, AssignmentStatusRefused,
		AssignmentStatusPresent, AssignmentStatusAbsent:
		return true
	}
	return false
}

// IsPointing reports whether the status records attendance (PRESENT or ABSENT).
// Pointing is only allowed on a published planning.
func (s AssignmentStatus) IsPointing() bool {
	return s == AssignmentStatusPresent || s == AssignmentStatusAbsent
}

// ConfirmsPresence reports whether the member was marked present.
func (s AssignmentStatus) ConfirmsPresence() bool {
	return s == AssignmentStatusPresent
}

// EntityType identifies the kind of domain entity (used in audit logs).
type EntityType string

const (
	EntityTypePlanning   EntityType = "PLANNING"
	EntityTypeSlot       EntityType = "SLOT"
	EntityTypeAssignment EntityType = "ASSIGNMENT"
	EntityTypeUser       EntityType = "USER"
)

func (e EntityType) String() string { return string(e) }

func (e EntityType) IsValid() bool {
	switch e {
	case EntityTypePlanning, EntityTypeSlot, EntityTypeAssignment, EntityTypeUser:
		return true
	}
	return false
}

// AuditAction represents the kind of mutation recorded in the audit log.
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionStatus AuditAction = "STATUS"
	AuditActionDelete AuditAction = "DELETE"
)

func (a AuditAction) String() string { return string(a) }

func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionCreate, AuditActionUpdate, AuditActionStatus, AuditActionDelete:
		return true
	}
	return false
}

// UserRole represents the authorization level of an operator account.
type UserRole string

const (
	UserRoleAdmin       UserRole = "ADMIN"
	UserRoleResponsable UserRole = "RESPONSABLE_MLA"
	UserRoleMember      UserRole = "MEMBRE_MLA"
)

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleResponsable, UserRoleMember:
		return true
	}
	return false
}

func (r UserRole) IsAdmin() bool {
	return r == UserRoleAdmin
}
