package rest

import (
	"net/http"

	"github.com/mla/planning-backend/internal/auth"
	"github.com/mla/planning-backend/internal/transport/middleware"
)

// RouterDeps holds everything NewRouter mounts.
type RouterDeps struct {
	Planning   *PlanningHandler
	Slot       *SlotHandler
	Assignment *AssignmentHandler
	Auth       *AuthHandler
	Health     *HealthHandler
	Authorizer *middleware.Authorizer

	// LoginLimit guards POST /auth/login when set.
	LoginLimit middleware.Middleware
	// Metrics is served on MetricsPath when set.
	Metrics     http.Handler
	MetricsPath string
}

// NewRouter registers every route on a fresh mux.
func NewRouter(d RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()
	require := d.Authorizer.Require

	handle := func(pattern string, h http.HandlerFunc, mws ...middleware.Middleware) {
		mux.Handle(pattern, middleware.Route(pattern, middleware.Chain(mws...)(h)))
	}

	// Public
	handle("GET /live", d.Health.Live)
	handle("GET /ready", d.Health.Ready)
	handle("GET /health", d.Health.Health)
	if d.LoginLimit != nil {
		handle("POST /auth/login", d.Auth.Login, d.LoginLimit)
	} else {
		handle("POST /auth/login", d.Auth.Login)
	}
	if d.Metrics != nil {
		handle("GET "+d.MetricsPath, d.Metrics.ServeHTTP)
	}

	// Plannings
	handle("GET /plannings", d.Planning.List, require(auth.ObjectPlanning, auth.ActionRead))
	handle("POST /plannings/full", d.Planning.CreateFull, require(auth.ObjectPlanning, auth.ActionWrite))
	handle("GET /plannings/{id}/full", d.Planning.GetFull, require(auth.ObjectPlanning, auth.ActionRead))
	handle("PATCH /plannings/{id}/full", d.Planning.UpdateFull, require(auth.ObjectPlanning, auth.ActionWrite))
	handle("DELETE /plannings/{id}/full", d.Planning.DeleteFull, require(auth.ObjectPlanning, auth.ActionWrite))
	handle("PATCH /plannings/{id}/status", d.Planning.UpdateStatus, require(auth.ObjectPlanning, auth.ActionWrite))
	handle("GET /plannings/{id}/history", d.Planning.History, require(auth.ObjectAudit, auth.ActionRead))

	// Slots
	handle("POST /plannings/{id}/slots", d.Slot.Create, require(auth.ObjectSlot, auth.ActionWrite))
	handle("PATCH /slots/{id}", d.Slot.Update, require(auth.ObjectSlot, auth.ActionWrite))
	handle("DELETE /slots/{id}", d.Slot.Delete, require(auth.ObjectSlot, auth.ActionWrite))

	// Assignments
	handle("GET /slots/{id}/assignments", d.Assignment.ListForSlot, require(auth.ObjectAssignment, auth.ActionRead))
	handle("PUT /slots/{id}/assignments", d.Assignment.Sync, require(auth.ObjectAssignment, auth.ActionWrite))
	handle("POST /assignments", d.Assignment.Assign, require(auth.ObjectAssignment, auth.ActionWrite))
	handle("PATCH /assignments/{id}/status", d.Assignment.UpdateStatus, require(auth.ObjectAssignment, auth.ActionStatus))

	return mux
}
