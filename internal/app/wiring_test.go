package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mla/planning-backend/internal/auth"
	"github.com/mla/planning-backend/internal/config"
	"github.com/mla/planning-backend/internal/metrics"
	"github.com/mla/planning-backend/internal/service/assignment"
	authsvc "github.com/mla/planning-backend/internal/service/auth"
	"github.com/mla/planning-backend/internal/service/planning"
	"github.com/mla/planning-backend/internal/service/servicetest"
	"github.com/mla/planning-backend/internal/service/slot"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-at-least-32-chars-long-for-security",
			JWTIssuer:      "planning-test",
			AccessTokenTTL: time.Hour,
		},
		CORS: config.CORSConfig{
			AllowedOrigins: "*",
			AllowedMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowedHeaders: "Authorization,Content-Type",
		},
		RateLimit: config.RateLimitConfig{Enabled: true, Rate: "100-M", LoginRate: "2-M"},
		Metrics:   config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Planning:  config.PlanningConfig{DefaultRequiredHeadcount: 2},
	}
}

func testServices(cfg *config.Config, store *servicetest.Store, m *metrics.Metrics) *Services {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwt := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	assignments := assignment.NewService(log,
		store.Assignments(), store.Slots(), store.Plannings(), store.Members(), store.Audit(), store.Tx())
	slots := slot.NewService(log, store.Slots(), store.Plannings(), assignments, store.Audit(), store.Tx(),
		cfg.Planning.DefaultRequiredHeadcount)
	hook := planning.NewNotifyHook(log, store.Assignments(), m.PlanningsPublished)

	return &Services{
		Planning: planning.NewService(log,
			store.Activities(), store.Plannings(), store.Slots(), store.Assignments(),
			slots, store.Audit(), store.Tx(), hook),
		Slot:       slots,
		Assignment: assignments,
		Auth:       authsvc.NewService(log, store.Users(), store.Audit(), store.Tx(), jwt, bcrypt.MinCost),
	}
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewHandler_PublicRoutes(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	m := metrics.New()
	h, err := NewHandler(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)),
		testServices(cfg, servicetest.NewStore(), m), okPinger{}, m)
	require.NoError(t, err)

	live := serve(t, h, http.MethodGet, "/live", "")
	assert.Equal(t, http.StatusOK, live.Code)
	assert.NotEmpty(t, live.Header().Get("X-Request-Id"))

	anon := serve(t, h, http.MethodGet, "/plannings", "")
	assert.Equal(t, http.StatusUnauthorized, anon.Code)

	scrape := serve(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, scrape.Code)
	assert.Contains(t, scrape.Body.String(), `route="GET /live"`)
	assert.Contains(t, scrape.Body.String(), `route="GET /plannings"`)
}

func TestNewHandler_LoginRateLimit(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	m := metrics.New()
	h, err := NewHandler(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)),
		testServices(cfg, servicetest.NewStore(), m), okPinger{}, m)
	require.NoError(t, err)

	body := `{"email":"nobody@mla.org","password":"wrong-password"}`
	for i := 0; i < 2; i++ {
		rec := serve(t, h, http.MethodPost, "/auth/login", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i+1)
	}

	rec := serve(t, h, http.MethodPost, "/auth/login", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// The login budget does not affect other routes.
	assert.Equal(t, http.StatusOK, serve(t, h, http.MethodGet, "/live", "").Code)
}

func TestNewHandler_MetricsDisabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Metrics.Enabled = false
	cfg.RateLimit.Enabled = false
	m := metrics.New()
	h, err := NewHandler(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)),
		testServices(cfg, servicetest.NewStore(), m), okPinger{}, m)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, serve(t, h, http.MethodGet, "/metrics", "").Code)
}

func TestNewHandler_BadRate(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.RateLimit.Rate = "fast"
	m := metrics.New()
	_, err := NewHandler(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)),
		testServices(cfg, servicetest.NewStore(), m), okPinger{}, m)
	require.Error(t, err)
}
