package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/internal/service/slot"
)

type slotService interface {
	CreateSlot(ctx context.Context, input slot.CreateSlotInput) (*domain.Slot, error)
	UpdateSlot(ctx context.Context, input slot.UpdateSlotInput) (*domain.Slot, error)
	DeleteSlot(ctx context.Context, slotID uuid.UUID) error
}

// SlotHandler serves single-slot endpoints.
type SlotHandler struct {
	svc slotService
	errorResponder
}

// NewSlotHandler creates a SlotHandler.
func NewSlotHandler(svc slotService, metrics errorRecorder, logger *slog.Logger) *SlotHandler {
	return &SlotHandler{
		svc:            svc,
		errorResponder: errorResponder{log: logger.With("handler", "slot"), metrics: metrics},
	}
}

// Create handles POST /plannings/{id}/slots.
func (h *SlotHandler) Create(w http.ResponseWriter, r *http.Request) {
	planningID, err := pathUUID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var req createSlotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	s, err := h.svc.CreateSlot(r.Context(), req.input(planningID))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSlotResponse(*s))
}

// Update handles PATCH /slots/{id}.
func (h *SlotHandler) Update(w http.ResponseWriter, r *http.Request) {
	slotID, err := pathUUID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var req updateSlotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	s, err := h.svc.UpdateSlot(r.Context(), req.input(slotID))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSlotResponse(*s))
}

// Delete handles DELETE /slots/{id}.
func (h *SlotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	slotID, err := pathUUID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.svc.DeleteSlot(r.Context(), slotID); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
