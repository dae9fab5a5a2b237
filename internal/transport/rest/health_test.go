package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func probeHealth(t *testing.T, h *HealthHandler, path string) (int, healthReport) {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	switch path {
	case "/live":
		h.Live(rec, req)
	case "/ready":
		h.Ready(rec, req)
	default:
		h.Health(rec, req)
	}

	var report healthReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.False(t, report.CheckedAt.IsZero())
	return rec.Code, report
}

func TestHealthHandler_Live_IgnoresProbes(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler("v0.3.0", DatabaseProbe(stubPinger{err: errors.New("dial tcp: refused")}))

	code, report := probeHealth(t, h, "/live")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", report.Status)
	assert.Empty(t, report.Components)
}

func TestHealthHandler_Ready(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pingErr    error
		wantCode   int
		wantStatus string
	}{
		{"database reachable", nil, http.StatusOK, "ok"},
		{"database unreachable", errors.New("dial tcp: refused"), http.StatusServiceUnavailable, "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthHandler("v0.3.0", DatabaseProbe(stubPinger{err: tt.pingErr}))
			code, report := probeHealth(t, h, "/ready")
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, report.Status)
			assert.Empty(t, report.Components, "readiness hides component details")
		})
	}
}

func TestHealthHandler_Health_ReportsEveryProbe(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler("v0.3.0",
		DatabaseProbe(stubPinger{}),
		Probe{Name: "casbin", Check: func(context.Context) error { return nil }},
	)

	code, report := probeHealth(t, h, "/health")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", report.Status)
	assert.Equal(t, "v0.3.0", report.Version)
	assert.NotEmpty(t, report.Uptime)
	require.Len(t, report.Components, 2)
	for name, c := range report.Components {
		assert.Equal(t, "ok", c.Status, name)
		assert.NotEmpty(t, c.Latency, name)
		assert.Empty(t, c.Error, name)
	}
}

func TestHealthHandler_Health_OneFailingProbeTurnsItDown(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler("v0.3.0",
		DatabaseProbe(stubPinger{err: errors.New("too many clients")}),
		Probe{Name: "casbin", Check: func(context.Context) error { return nil }},
	)

	code, report := probeHealth(t, h, "/health")
	require.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "down", report.Status)

	db := report.Components["database"]
	assert.Equal(t, "down", db.Status)
	assert.Equal(t, "too many clients", db.Error)
	assert.Empty(t, db.Latency)
	assert.Equal(t, "ok", report.Components["casbin"].Status)
}

func TestHealthHandler_ProbesShareDeadline(t *testing.T) {
	t.Parallel()

	var deadlines int
	check := func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); ok {
			deadlines++
		}
		return nil
	}
	h := NewHealthHandler("", Probe{Name: "a", Check: check}, Probe{Name: "b", Check: check})

	code, report := probeHealth(t, h, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, deadlines)
	assert.Empty(t, report.Version)
}
