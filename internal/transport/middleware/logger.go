package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/pkg/ctxutil"
)

type identityKey struct{}

// loggedIdentity is filled by Auth so Logger can report the caller even
// though Auth runs further down the chain.
type loggedIdentity struct {
	userID uuid.UUID
	role   string
}

func recordIdentity(ctx context.Context, userID uuid.UUID, role string) {
	if id, ok := ctx.Value(identityKey{}).(*loggedIdentity); ok {
		id.userID = userID
		id.role = role
	}
}

// Logger emits one "http.request" record per request. 4xx answers are
// logged at WARN and 5xx at ERROR; the caller identity is filled in by Auth.
func Logger(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			id := &loggedIdentity{}

			next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))

			if id.userID == uuid.Nil {
				id.userID, _ = ctxutil.UserIDFromCtx(r.Context())
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
			}
			if id.userID != uuid.Nil {
				attrs = append(attrs, slog.String("user_id", id.userID.String()))
			}
			if id.role != "" {
				attrs = append(attrs, slog.String("role", id.role))
			}

			level := slog.LevelInfo
			switch {
			case sw.status >= 500:
				level = slog.LevelError
			case sw.status >= 400:
				level = slog.LevelWarn
			}
			logger.LogAttrs(r.Context(), level, "http.request", attrs...)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the response status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
