package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/internal/service/planning"
)

type planningService interface {
	CreateFullPlanning(ctx context.Context, input planning.CreateFullInput) (*domain.PlanningFull, error)
	GetFullPlanning(ctx context.Context, planningID uuid.UUID) (*domain.PlanningFull, error)
	UpdateFullPlanning(ctx context.Context, input planning.UpdateFullInput) (*domain.PlanningFull, error)
	UpdatePlanningStatus(ctx context.Context, input planning.UpdateStatusInput) (*domain.Planning, error)
	DeleteFullPlanning(ctx context.Context, planningID uuid.UUID) error
	ListPlannings(ctx context.Context, input planning.ListInput) ([]domain.Planning, error)
	GetPlanningHistory(ctx context.Context, planningID uuid.UUID, limit int) ([]domain.AuditRecord, error)
}

// PlanningHandler serves the planning aggregate endpoints.
type PlanningHandler struct {
	svc planningService
	errorResponder
}

// NewPlanningHandler creates a PlanningHandler.
func NewPlanningHandler(svc planningService, metrics errorRecorder, logger *slog.Logger) *PlanningHandler {
	return &PlanningHandler{
		svc:            svc,
		errorResponder: errorResponder{log: logger.With("handler", "planning"), metrics: metrics},
	}
}

// List handles GET /plannings?status=&limit=&offset=.
func (h *PlanningHandler) List(w http.ResponseWriter, r *http.Request) {
	input, err := parseListQuery(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	list, err := h.svc.ListPlannings(r.Context(), input)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := make([]planningResponse, 0, len(list))
	for _, p := range list {
		resp = append(resp, toPlanningResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateFull handles POST /plannings/full.
func (h *PlanningHandler) CreateFull(w http.ResponseWriter, r *http.Request) {
	var req createFullRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	full, err := h.svc.CreateFullPlanning(r.Context(), req.input())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPlanningFullResponse(full))
}

// GetFull handles GET /plannings/{id}/full.
func (h *PlanningHandler) GetFull(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	full, err := h.svc.GetFullPlanning(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPlanningFullResponse(full))
}

// UpdateFull handles PATCH /plannings/{id}/full.
func (h *PlanningHandler) UpdateFull(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var req updateFullRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	full, err := h.svc.UpdateFullPlanning(r.Context(), req.input(id))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPlanningFullResponse(full))
}

// UpdateStatus handles PATCH /plannings/{id}/status.
func (h *PlanningHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var req updatePlanningStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	p, err := h.svc.UpdatePlanningStatus(r.Context(), planning.UpdateStatusInput{PlanningID: id, Status: req.Status})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPlanningResponse(*p))
}

// DeleteFull handles DELETE /plannings/{id}/full.
func (h *PlanningHandler) DeleteFull(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.svc.DeleteFullPlanning(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /plannings/{id}/history?limit=.
func (h *PlanningHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	records, err := h.svc.GetPlanningHistory(r.Context(), id, limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := make([]auditResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toAuditResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseListQuery(r *http.Request) (planning.ListInput, error) {
	var input planning.ListInput

	if v := r.URL.Query().Get("status"); v != "" {
		st := domain.PlanningStatus(v)
		input.Status = &st
	}

	var err error
	if input.Limit, err = queryInt(r, "limit", 0); err != nil {
		return input, err
	}
	if input.Offset, err = queryInt(r, "offset", 0); err != nil {
		return input, err
	}
	return input, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return n, nil
}
