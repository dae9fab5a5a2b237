package rest

import (
	"context"
	"net/http"
	"time"
)

const probeTimeout = 3 * time.Second

// Probe checks one dependency. A nil error means the dependency is usable.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseProbe reports on the connection pool.
func DatabaseProbe(db pinger) Probe {
	return Probe{Name: "database", Check: db.Ping}
}

// HealthHandler serves /live, /ready and /health.
type HealthHandler struct {
	version string
	started time.Time
	probes  []Probe
}

func NewHealthHandler(version string, probes ...Probe) *HealthHandler {
	return &HealthHandler{version: version, started: time.Now(), probes: probes}
}

type healthReport struct {
	Status     string                     `json:"status"`
	Version    string                     `json:"version,omitempty"`
	Uptime     string                     `json:"uptime,omitempty"`
	Components map[string]componentReport `json:"components,omitempty"`
	CheckedAt  time.Time                  `json:"checked_at"`
}

type componentReport struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Live answers as long as the process serves HTTP.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthReport{Status: "ok", CheckedAt: time.Now().UTC()})
}

// Ready is 503 as soon as one probe fails. Component details are left out.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	_, ok := h.runProbes(r.Context())
	writeJSON(w, healthStatusFor(ok), healthReport{Status: statusText(ok), CheckedAt: time.Now().UTC()})
}

// Health reports every probe with its latency, plus version and uptime.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	components, ok := h.runProbes(r.Context())
	writeJSON(w, healthStatusFor(ok), healthReport{
		Status:     statusText(ok),
		Version:    h.version,
		Uptime:     time.Since(h.started).Truncate(time.Second).String(),
		Components: components,
		CheckedAt:  time.Now().UTC(),
	})
}

func (h *HealthHandler) runProbes(ctx context.Context) (map[string]componentReport, bool) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	healthy := true
	out := make(map[string]componentReport, len(h.probes))
	for _, p := range h.probes {
		began := time.Now()
		if err := p.Check(ctx); err != nil {
			healthy = false
			out[p.Name] = componentReport{Status: "down", Error: err.Error()}
			continue
		}
		out[p.Name] = componentReport{Status: "ok", Latency: time.Since(began).String()}
	}
	return out, healthy
}

func healthStatusFor(healthy bool) int {
	if healthy {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func statusText(healthy bool) string {
	if healthy {
		return "ok"
	}
	return "down"
}
