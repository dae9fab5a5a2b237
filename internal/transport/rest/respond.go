package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mla/planning-backend/internal/domain"
)

// errorRecorder counts business rule violations.
type errorRecorder interface {
	DomainError(code string)
}

type fieldErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error  string               `json:"error"`
	Code   string               `json:"code,omitempty"`
	Fields []fieldErrorResponse `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponder maps service errors to HTTP responses.
type errorResponder struct {
	log     *slog.Logger
	metrics errorRecorder
}

func (e errorResponder) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp := errorResponse{Error: "validation failed"}
		for _, fe := range ve.Errors {
			resp.Fields = append(resp.Fields, fieldErrorResponse{Field: fe.Field, Message: fe.Message})
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	var de *domain.Error
	if errors.As(err, &de) {
		if e.metrics != nil {
			e.metrics.DomainError(de.Code)
		}
		writeJSON(w, statusFor(err), errorResponse{Error: de.Message, Code: de.Code})
		return
	}

	switch status := statusFor(err); status {
	case http.StatusInternalServerError:
		e.log.ErrorContext(r.Context(), "internal error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		writeError(w, status, "internal server error")
	default:
		writeError(w, status, http.StatusText(status))
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
