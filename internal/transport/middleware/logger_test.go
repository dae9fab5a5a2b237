package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/pkg/ctxutil"
)

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &rec))
	return rec
}

func TestLogger_LevelFollowsStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status    int
		wantLevel string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNoContent, "INFO"},
		{http.StatusConflict, "WARN"},
		{http.StatusBadRequest, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			h := Logger(slog.New(slog.NewJSONHandler(&buf, nil)))(
				http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(tt.status) }))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/slots", nil))

			rec := lastRecord(t, &buf)
			assert.Equal(t, "http.request", rec["msg"])
			assert.Equal(t, tt.wantLevel, rec["level"])
			assert.Equal(t, float64(tt.status), rec["status"])
			assert.Equal(t, "POST", rec["method"])
			assert.Equal(t, "/slots", rec["path"])
			assert.Contains(t, rec, "duration")
		})
	}
}

func TestLogger_ImplicitOK(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := Logger(slog.New(slog.NewJSONHandler(&buf, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("{}")) }))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plannings", nil))

	assert.Equal(t, float64(http.StatusOK), lastRecord(t, &buf)["status"])
}

func TestLogger_Anonymous(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := Logger(slog.New(slog.NewJSONHandler(&buf, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req = req.WithContext(ctxutil.WithRequestID(req.Context(), "req-live-1"))
	h.ServeHTTP(httptest.NewRecorder(), req)

	rec := lastRecord(t, &buf)
	assert.Equal(t, "req-live-1", rec["request_id"])
	assert.NotContains(t, rec, "user_id")
	assert.NotContains(t, rec, "role")
}

func TestLogger_IdentityRecordedByInnerAuth(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	userID := uuid.New()
	validator := &tokenValidatorMock{
		ValidateTokenFunc: func(context.Context, string) (uuid.UUID, domain.UserRole, error) {
			return userID, domain.UserRoleResponsable, nil
		},
	}

	h := Chain(Logger(slog.New(slog.NewJSONHandler(&buf, nil))), Auth(validator))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	req := httptest.NewRequest(http.MethodPost, "/slots/9/sync", nil)
	req.Header.Set("Authorization", "Bearer responsable")
	h.ServeHTTP(httptest.NewRecorder(), req)

	rec := lastRecord(t, &buf)
	assert.Equal(t, userID.String(), rec["user_id"])
	assert.Equal(t, "RESPONSABLE_MLA", rec["role"])
}
