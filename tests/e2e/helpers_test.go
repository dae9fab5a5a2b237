//go:build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mla/planning-backend/internal/adapter/postgres/testhelper"
	"github.com/mla/planning-backend/internal/app"
	"github.com/mla/planning-backend/internal/auth"
	"github.com/mla/planning-backend/internal/config"
	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/internal/metrics"
)

const (
	jwtSecret = "test-secret-at-least-32-chars-long!!"
	jwtIssuer = "e2e-issuer"
)

// ---------------------------------------------------------------------------
// testServer wraps the full application handler over a real database.
// ---------------------------------------------------------------------------

type testServer struct {
	URL     string
	Client  *http.Client
	Pool    *pgxpool.Pool
	Metrics *metrics.Metrics
	jwt     *auth.JWTManager
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// setupTestServer wires the production handler to a PostgreSQL container
// shared through testhelper. Rate limiting is off so tests can hammer it.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      jwtSecret,
			JWTIssuer:      jwtIssuer,
			AccessTokenTTL: 15 * time.Minute,
			BcryptCost:     bcrypt.MinCost,
		},
		CORS: config.CORSConfig{
			AllowedOrigins:   "*",
			AllowedMethods:   "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowedHeaders:   "Authorization,Content-Type",
			AllowCredentials: true,
			MaxAge:           86400,
		},
		Metrics:  config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Planning: config.PlanningConfig{DefaultRequiredHeadcount: 2},
	}

	m := metrics.New()
	handler, err := app.NewHandler(cfg, logger, app.NewServices(pool, cfg, logger, m), pool, m)
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:     srv.URL,
		Client:  srv.Client(),
		Pool:    pool,
		Metrics: m,
		jwt:     auth.NewJWTManager(jwtSecret, jwtIssuer, 15*time.Minute),
	}
}

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

type apiResponse struct {
	Status int
	Body   []byte
}

func (r apiResponse) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v), "body: %s", r.Body)
}

func (r apiResponse) object(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	r.decode(t, &m)
	return m
}

// errorCode returns the stable code of an error response.
func (r apiResponse) errorCode(t *testing.T) string {
	t.Helper()
	code, _ := r.object(t)["code"].(string)
	return code
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) apiResponse {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return apiResponse{Status: resp.StatusCode, Body: buf.Bytes()}
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

// createUser inserts an operator with the given role and password and
// returns it with a valid access token.
func createUser(t *testing.T, ts *testServer, role domain.UserRole, password string) (domain.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	u := domain.User{
		ID:    uuid.New(),
		Email: "op-" + uuid.NewString()[:8] + "@example.com",
		Name:  "Operator",
		Role:  role,
	}
	_, err = ts.Pool.Exec(context.Background(),
		`INSERT INTO users (id, email, name, password_hash, role) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.Name, string(hash), string(role),
	)
	require.NoError(t, err)

	tok, err := ts.jwt.GenerateAccessToken(u.ID, role)
	require.NoError(t, err)
	return u, tok
}

func tokenFor(t *testing.T, ts *testServer, role domain.UserRole) string {
	t.Helper()
	_, tok := createUser(t, ts, role, "irrelevant-password")
	return tok
}

// at returns the testhelper base time shifted by h hours.
func at(h float64) time.Time {
	return testhelper.BaseTime().Add(time.Duration(h * float64(time.Hour)))
}
