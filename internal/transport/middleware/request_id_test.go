package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mla/planning-backend/pkg/ctxutil"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "caller id is kept", incoming: "planning-sync-7f3a", keep: true},
		{name: "uuid is kept", incoming: "6f1c1f8e-8a43-4c39-9b57-7d0c3c0d2a11", keep: true},
		{name: "longest accepted id", incoming: strings.Repeat("r", maxRequestIDLen), keep: true},
		{name: "missing header", incoming: ""},
		{name: "oversized id", incoming: strings.Repeat("r", maxRequestIDLen+1)},
		{name: "id with spaces", incoming: "slot 42"},
		{name: "id with newline", incoming: "abc\ndef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var inCtx string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				inCtx = ctxutil.RequestIDFromCtx(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/plannings", nil)
			if tt.incoming != "" {
				req.Header[requestIDHeader] = []string{tt.incoming}
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			echoed := rec.Header().Get(requestIDHeader)
			require.NotEmpty(t, echoed)
			assert.Equal(t, echoed, inCtx, "context and response header must agree")

			if tt.keep {
				assert.Equal(t, tt.incoming, echoed)
				return
			}
			assert.NotEqual(t, tt.incoming, echoed)
			_, err := uuid.Parse(echoed)
			assert.NoError(t, err, "generated id should be a UUID")
		})
	}
}

func TestRequestID_GeneratesDistinctIDs(t *testing.T) {
	t.Parallel()

	h := RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	seen := map[string]bool{}
	for range 20 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
		id := rec.Header().Get(requestIDHeader)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
