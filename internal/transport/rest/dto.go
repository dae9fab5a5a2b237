package rest

import (
	"time"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/internal/service/assignment"
	"github.com/mla/planning-backend/internal/service/planning"
	"github.com/mla/planning-backend/internal/service/slot"
)

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

type activityRequest struct {
	Type        string     `json:"type"        validate:"required,min=2,max=100"`
	Start       time.Time  `json:"start"       validate:"required"`
	End         time.Time  `json:"end"         validate:"required,gtfield=Start"`
	Location    *string    `json:"location"    validate:"omitempty,min=2,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	MinistryID  *uuid.UUID `json:"ministry_id"`
	CampusID    *uuid.UUID `json:"campus_id"`
}

type activityPatchRequest struct {
	Type        *string    `json:"type"        validate:"omitempty,min=2,max=100"`
	Start       *time.Time `json:"start"`
	End         *time.Time `json:"end"`
	Location    *string    `json:"location"    validate:"omitempty,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
}

type planningRequest struct {
	Status *domain.PlanningStatus `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED CANCELLED FINISHED"`
}

// Nested assignment fields are deliberately loose: incomplete creates are
// skipped by the sync, not rejected.
type assignmentPayloadRequest struct {
	ID       *uuid.UUID               `json:"id"`
	MemberID *uuid.UUID               `json:"member_id"`
	RoleCode *string                  `json:"role_code" validate:"omitempty,max=50"`
	Status   *domain.AssignmentStatus `json:"status"    validate:"omitempty,oneof=PROPOSED CONFIRMED REFUSED PRESENT ABSENT"`
}

type slotPayloadRequest struct {
	ID                *uuid.UUID                 `json:"id"`
	Name              string                     `json:"name"`
	Start             time.Time                  `json:"start"`
	End               time.Time                  `json:"end"`
	RequiredHeadcount *int                       `json:"required_headcount" validate:"omitempty,min=1"`
	Assignments       []assignmentPayloadRequest `json:"assignments"        validate:"omitempty,dive"`
}

type createFullRequest struct {
	Activity activityRequest      `json:"activity" validate:"required"`
	Planning *planningRequest     `json:"planning"`
	Slots    []slotPayloadRequest `json:"slots"    validate:"omitempty,dive"`
}

type updateFullRequest struct {
	Activity *activityPatchRequest `json:"activity"`
	Planning *planningRequest      `json:"planning"`
	Slots    []slotPayloadRequest  `json:"slots"    validate:"omitempty,dive"`
}

type updatePlanningStatusRequest struct {
	Status domain.PlanningStatus `json:"status" validate:"required,oneof=DRAFT PUBLISHED CANCELLED FINISHED"`
}

type createSlotRequest struct {
	Name              string    `json:"name"               validate:"required,max=100"`
	Start             time.Time `json:"start"              validate:"required"`
	End               time.Time `json:"end"                validate:"required"`
	RequiredHeadcount *int      `json:"required_headcount" validate:"omitempty,min=1"`
}

type updateSlotRequest struct {
	Name              *string    `json:"name"               validate:"omitempty,min=1,max=100"`
	Start             *time.Time `json:"start"`
	End               *time.Time `json:"end"`
	RequiredHeadcount *int       `json:"required_headcount" validate:"omitempty,min=1"`
}

type syncAssignmentsRequest struct {
	Assignments []assignmentPayloadRequest `json:"assignments" validate:"dive"`
}

type assignRequest struct {
	SlotID   uuid.UUID                `json:"slot_id"   validate:"required"`
	MemberID uuid.UUID                `json:"member_id" validate:"required"`
	RoleCode string                   `json:"role_code" validate:"required,max=50"`
	Status   *domain.AssignmentStatus `json:"status"    validate:"omitempty,oneof=PROPOSED CONFIRMED REFUSED PRESENT ABSENT"`
}

type updateAssignmentStatusRequest struct {
	Status domain.AssignmentStatus `json:"status" validate:"required,oneof=PROPOSED CONFIRMED REFUSED PRESENT ABSENT"`
}

func statusOf(p *planningRequest) *domain.PlanningStatus {
	if p == nil {
		return nil
	}
	return p.Status
}

func toAssignmentPayloads(in []assignmentPayloadRequest) []domain.AssignmentPayload {
	if in == nil {
		return nil
	}
	out := make([]domain.AssignmentPayload, 0, len(in))
	for _, a := range in {
		out = append(out, domain.AssignmentPayload{
			ID:       a.ID,
			MemberID: a.MemberID,
			RoleCode: a.RoleCode,
			Status:   a.Status,
		})
	}
	return out
}

func toSlotPayloads(in []slotPayloadRequest) []domain.SlotPayload {
	if in == nil {
		return nil
	}
	out := make([]domain.SlotPayload, 0, len(in))
	for _, s := range in {
		out = append(out, domain.SlotPayload{
			ID:                s.ID,
			Name:              s.Name,
			Start:             s.Start,
			End:               s.End,
			RequiredHeadcount: s.RequiredHeadcount,
			Assignments:       toAssignmentPayloads(s.Assignments),
		})
	}
	return out
}

func (req createFullRequest) input() planning.CreateFullInput {
	a := req.Activity
	return planning.CreateFullInput{
		Activity: planning.ActivityInput{
			Type:        a.Type,
			Start:       a.Start,
			End:         a.End,
			Location:    a.Location,
			Description: a.Description,
			MinistryID:  a.MinistryID,
			CampusID:    a.CampusID,
		},
		Status: statusOf(req.Planning),
		Slots:  toSlotPayloads(req.Slots),
	}
}

func (req updateFullRequest) input(id uuid.UUID) planning.UpdateFullInput {
	in := planning.UpdateFullInput{
		PlanningID: id,
		Status:     statusOf(req.Planning),
		Slots:      toSlotPayloads(req.Slots),
	}
	if a := req.Activity; a != nil {
		in.Activity = &planning.ActivityPatch{
			Type:        a.Type,
			Start:       a.Start,
			End:         a.End,
			Location:    a.Location,
			Description: a.Description,
		}
	}
	return in
}

func (req createSlotRequest) input(planningID uuid.UUID) slot.CreateSlotInput {
	return slot.CreateSlotInput{
		PlanningID:        planningID,
		Name:              req.Name,
		Start:             req.Start,
		End:               req.End,
		RequiredHeadcount: req.RequiredHeadcount,
	}
}

func (req updateSlotRequest) input(slotID uuid.UUID) slot.UpdateSlotInput {
	return slot.UpdateSlotInput{
		SlotID:            slotID,
		Name:              req.Name,
		Start:             req.Start,
		End:               req.End,
		RequiredHeadcount: req.RequiredHeadcount,
	}
}

func (req assignRequest) input() assignment.AssignInput {
	return assignment.AssignInput{
		SlotID:   req.SlotID,
		MemberID: req.MemberID,
		RoleCode: req.RoleCode,
		Status:   req.Status,
	}
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

type activityResponse struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	Location    *string    `json:"location,omitempty"`
	Description *string    `json:"description,omitempty"`
	MinistryID  *uuid.UUID `json:"ministry_id,omitempty"`
	CampusID    *uuid.UUID `json:"campus_id,omitempty"`
}

type planningResponse struct {
	ID         uuid.UUID         `json:"id"`
	ActivityID uuid.UUID         `json:"activity_id"`
	Status     string            `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Activity   *activityResponse `json:"activity,omitempty"`
}

type slotResponse struct {
	ID                uuid.UUID `json:"id"`
	PlanningID        uuid.UUID `json:"planning_id"`
	Name              string    `json:"name"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	RequiredHeadcount int       `json:"required_headcount"`
}

type memberResponse struct {
	ID        uuid.UUID `json:"id"`
	LastName  string    `json:"last_name"`
	FirstName string    `json:"first_name"`
}

type assignmentResponse struct {
	ID                uuid.UUID       `json:"id"`
	SlotID            uuid.UUID       `json:"slot_id"`
	MemberID          uuid.UUID       `json:"member_id"`
	RoleCode          string          `json:"role_code"`
	Status            string          `json:"status"`
	PresenceConfirmed bool            `json:"presence_confirmed"`
	Member            *memberResponse `json:"member,omitempty"`
}

type slotViewResponse struct {
	slotResponse
	FillingRate float64              `json:"filling_rate"`
	Assignments []assignmentResponse `json:"assignments"`
}

type viewContextResponse struct {
	AllowedTransitions []string `json:"allowed_transitions"`
	TotalSlots         int      `json:"total_slots"`
	FilledSlots        int      `json:"filled_slots"`
	IsReadyForPublish  bool     `json:"is_ready_for_publish"`
}

type planningFullResponse struct {
	planningResponse
	Slots       []slotViewResponse  `json:"slots"`
	ViewContext viewContextResponse `json:"view_context"`
}

type statsResponse struct {
	Total         int            `json:"total"`
	ConfirmedRate float64        `json:"confirmed_rate"`
	Roles         map[string]int `json:"roles"`
}

type slotAssignmentsResponse struct {
	Slot        slotResponse         `json:"slot"`
	Assignments []assignmentResponse `json:"assignments"`
	Stats       statsResponse        `json:"stats"`
	IsFilled    bool                 `json:"is_filled"`
}

type auditResponse struct {
	ID        uuid.UUID      `json:"id"`
	UserID    *uuid.UUID     `json:"user_id,omitempty"`
	Entity    string         `json:"entity_type"`
	EntityID  *uuid.UUID     `json:"entity_id,omitempty"`
	Action    string         `json:"action"`
	Changes   map[string]any `json:"changes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func toActivityResponse(a *domain.Activity) *activityResponse {
	if a == nil {
		return nil
	}
	return &activityResponse{
		ID:          a.ID,
		Type:        a.Type,
		Start:       a.Start,
		End:         a.End,
		Location:    a.Location,
		Description: a.Description,
		MinistryID:  a.MinistryID,
		CampusID:    a.CampusID,
	}
}

func toPlanningResponse(p domain.Planning) planningResponse {
	return planningResponse{
		ID:         p.ID,
		ActivityID: p.ActivityID,
		Status:     p.Status.String(),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		Activity:   toActivityResponse(p.Activity),
	}
}

func toSlotResponse(s domain.Slot) slotResponse {
	return slotResponse{
		ID:                s.ID,
		PlanningID:        s.PlanningID,
		Name:              s.Name,
		Start:             s.Start,
		End:               s.End,
		RequiredHeadcount: s.RequiredHeadcount,
	}
}

func toAssignmentResponse(a domain.Assignment) assignmentResponse {
	resp := assignmentResponse{
		ID:                a.ID,
		SlotID:            a.SlotID,
		MemberID:          a.MemberID,
		RoleCode:          a.RoleCode,
		Status:            a.Status.String(),
		PresenceConfirmed: a.PresenceConfirmed,
	}
	if m := a.Member; m != nil {
		resp.Member = &memberResponse{ID: m.ID, LastName: m.LastName, FirstName: m.FirstName}
	}
	return resp
}

func toAssignmentResponses(list []domain.Assignment) []assignmentResponse {
	out := make([]assignmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAssignmentResponse(a))
	}
	return out
}

func toPlanningFullResponse(full *domain.PlanningFull) planningFullResponse {
	slots := make([]slotViewResponse, 0, len(full.Slots))
	for _, v := range full.Slots {
		slots = append(slots, slotViewResponse{
			slotResponse: toSlotResponse(v.Slot),
			FillingRate:  v.FillingRate(),
			Assignments:  toAssignmentResponses(v.Assignments),
		})
	}

	transitions := make([]string, 0, len(full.ViewContext.AllowedTransitions))
	for _, st := range full.ViewContext.AllowedTransitions {
		transitions = append(transitions, st.String())
	}

	return planningFullResponse{
		planningResponse: toPlanningResponse(full.Planning),
		Slots:            slots,
		ViewContext: viewContextResponse{
			AllowedTransitions: transitions,
			TotalSlots:         full.ViewContext.TotalSlots,
			FilledSlots:        full.ViewContext.FilledSlots,
			IsReadyForPublish:  full.ViewContext.IsReadyForPublish,
		},
	}
}

func toSlotAssignmentsResponse(sa *assignment.SlotAssignments) slotAssignmentsResponse {
	roles := sa.Stats.Roles
	if roles == nil {
		roles = map[string]int{}
	}
	return slotAssignmentsResponse{
		Slot:        toSlotResponse(sa.Slot),
		Assignments: toAssignmentResponses(sa.Assignments),
		Stats: statsResponse{
			Total:         sa.Stats.Total,
			ConfirmedRate: sa.Stats.ConfirmedRate,
			Roles:         roles,
		},
		IsFilled: sa.IsFilled,
	}
}

func toAuditResponse(rec domain.AuditRecord) auditResponse {
	return auditResponse{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Entity:    rec.EntityType.String(),
		EntityID:  rec.EntityID,
		Action:    rec.Action.String(),
		Changes:   rec.Changes,
		CreatedAt: rec.CreatedAt,
	}
}
