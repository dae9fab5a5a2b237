package domain

import "testing"

func TestPlanningStatus_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status PlanningStatus
		want   bool
	}{
		{PlanningStatusDraft, true},
		{PlanningStatusPublished, true},
		{PlanningStatusCancelled, true},
		{PlanningStatusFinished, true},
		{PlanningStatus("BROUILLON"), false},
		{PlanningStatus(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			if got := tt.status.IsValid(); got != tt.want {
				t.Errorf("PlanningStatus(%q).IsValid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestAssignmentStatus_IsValid(t *testing.T) {
	t.Parallel()

	valid := []AssignmentStatus{
		AssignmentStatusProposed, AssignmentStatusConfirmed, AssignmentStatusRefused,
		AssignmentStatusPresent, AssignmentStatusAbsent,
	}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("AssignmentStatus(%q).IsValid() = false, want true", s)
		}
	}
	if AssignmentStatus("LATE").IsValid() {
		t.Error("AssignmentStatus(LATE).IsValid() = true, want false")
	}
}

func TestAssignmentStatus_IsPointing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status AssignmentStatus
		want   bool
	}{
		{AssignmentStatusPresent, true},
		{AssignmentStatusAbsent, true},
		{AssignmentStatusProposed, false},
		{AssignmentStatusConfirmed, false},
		{AssignmentStatusRefused, false},
	}
	for _, tt := range tests {
		if got := tt.status.IsPointing(); got != tt.want {
			t.Errorf("AssignmentStatus(%q).IsPointing() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestAssignmentStatus_ConfirmsPresence(t *testing.T) {
	t.Parallel()

	if !AssignmentStatusPresent.ConfirmsPresence() {
		t.Error("PRESENT should confirm presence")
	}
	for _, s := range []AssignmentStatus{
		AssignmentStatusAbsent, AssignmentStatusProposed, AssignmentStatusConfirmed, AssignmentStatusRefused,
	} {
		if s.ConfirmsPresence() {
			t.Errorf("%s should not confirm presence", s)
		}
	}
}

func TestEntityType_IsValid(t *testing.T) {
	t.Parallel()

	valid := []EntityType{EntityTypePlanning, EntityTypeSlot, EntityTypeAssignment, EntityTypeUser}
	for _, e := range valid {
		if !e.IsValid() {
			t.Errorf("EntityType(%q).IsValid() = false, want true", e)
		}
	}
	if EntityType("BOGUS").IsValid() {
		t.Error("EntityType(BOGUS).IsValid() = true, want false")
	}
}

func TestAuditAction_IsValid(t *testing.T) {
	t.Parallel()

	valid := []AuditAction{AuditActionCreate, AuditActionUpdate, AuditActionStatus, AuditActionDelete}
	for _, a := range valid {
		if !a.IsValid() {
			t.Errorf("AuditAction(%q).IsValid() = false, want true", a)
		}
	}
	if AuditAction("NOPE").IsValid() {
		t.Error("AuditAction(NOPE).IsValid() = true, want false")
	}
}

func TestUserRole(t *testing.T) {
	t.Parallel()

	if !UserRoleAdmin.IsAdmin() {
		t.Error("ADMIN.IsAdmin() = false, want true")
	}
	if UserRoleResponsable.IsAdmin() {
		t.Error("RESPONSABLE_MLA.IsAdmin() = true, want false")
	}
	if UserRole("admin").IsValid() {
		t.Error("UserRole(admin).IsValid() = true, want false")
	}
	if got := UserRoleMember.String(); got != "MEMBRE_MLA" {
		t.Errorf("got %q, want MEMBRE_MLA", got)
	}
}
