package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/internal/service/assignment"
)

type assignmentService interface {
	AssignMemberToSlot(ctx context.Context, input assignment.AssignInput) (*domain.Assignment, error)
	UpdateStatus(ctx context.Context, input assignment.UpdateStatusInput) (*domain.Assignment, error)
	SyncAssignments(ctx context.Context, slotID uuid.UUID, payloads []domain.AssignmentPayload) (assignment.SyncResult, error)
	GetSlotAssignments(ctx context.Context, slotID uuid.UUID) (*assignment.SlotAssignments, error)
}

// AssignmentHandler serves assignment endpoints.
type AssignmentHandler struct {
	svc assignmentService
	errorResponder
}

// NewAssignmentHandler creates an AssignmentHandler.
func NewAssignmentHandler(svc assignmentService, metrics errorRecorder, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		svc:            svc,
		errorResponder: errorResponder{log: logger.With("handler", "assignment"), metrics: metrics},
	}
}

// Assign handles POST /assignments.
func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	a, err := h.svc.AssignMemberToSlot(r.Context(), req.input())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAssignmentResponse(*a))
}

// UpdateStatus handles PATCH /assignments/{id}/status.
func (h *AssignmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var req updateAssignmentStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	a, err := h.svc.UpdateStatus(r.Context(), assignment.UpdateStatusInput{AssignmentID: id, Status: req.Status})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAssignmentResponse(*a))
}

// ListForSlot handles GET /slots/{id}/assignments.
func (h *AssignmentHandler) ListForSlot(w http.ResponseWriter, r *http.Request) {
	slotID, err := pathUUID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	sa, err := h.svc.GetSlotAssignments(r.Context(), slotID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSlotAssignmentsResponse(sa))
}

// Sync handles PUT /slots/{id}/assignments.
func (h *AssignmentHandler) Sync(w http.ResponseWriter, r *http.Request) {
	slotID, err := pathUUID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var req syncAssignmentsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	payloads := toAssignmentPayloads(req.Assignments)
	if payloads == nil {
		payloads = []domain.AssignmentPayload{}
	}

	if _, err := h.svc.SyncAssignments(r.Context(), slotID, payloads); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
