package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func tagging(name string, trace *[]string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*trace = append(*trace, "->"+name)
			next.ServeHTTP(w, r)
			*trace = append(*trace, "<-"+name)
		})
	}
}

func TestChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		names []string
		want  []string
	}{
		{"no middleware", nil, []string{"slots"}},
		{"single", []string{"auth"}, []string{"->auth", "slots", "<-auth"}},
		{
			"first listed runs outermost",
			[]string{"request_id", "logger", "auth"},
			[]string{"->request_id", "->logger", "->auth", "slots", "<-auth", "<-logger", "<-request_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var trace []string
			mws := make([]Middleware, 0, len(tt.names))
			for _, n := range tt.names {
				mws = append(mws, tagging(n, &trace))
			}
			final := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				trace = append(trace, "slots")
				w.WriteHeader(http.StatusAccepted)
			})

			rec := httptest.NewRecorder()
			Chain(mws...)(final).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/slots", nil))

			assert.Equal(t, http.StatusAccepted, rec.Code)
			assert.Equal(t, tt.want, trace)
		})
	}
}

func TestChain_ShortCircuit(t *testing.T) {
	t.Parallel()

	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
	}
	final := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler behind a denying middleware must not run")
	})

	rec := httptest.NewRecorder()
	Chain(RequestID, deny)(final).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/plannings/x", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader), "outer middleware still ran")
}
