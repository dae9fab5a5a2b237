package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/pkg/ctxutil"
)

type permissionChecker interface {
	Allowed(role domain.UserRole, object, action string) (bool, error)
}

// Authorizer builds per-route permission guards.
type Authorizer struct {
	checker permissionChecker
	log     *slog.Logger
}

// NewAuthorizer creates an Authorizer backed by checker.
func NewAuthorizer(checker permissionChecker, logger *slog.Logger) *Authorizer {
	return &Authorizer{checker: checker, log: logger.With("component", "authz")}
}

// Require allows the request through only if the caller's role may perform
// action on object. Anonymous callers get 401, other refusals 403.
func (a *Authorizer) Require(object, action string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if _, ok := ctxutil.UserIDFromCtx(ctx); !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			role := domain.UserRole(ctxutil.UserRoleFromCtx(ctx))
			allowed, err := a.checker.Allowed(role, object, action)
			if err != nil {
				a.log.ErrorContext(ctx, "permission check failed", slog.String("error", err.Error()))
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !allowed {
				a.log.WarnContext(ctx, "permission denied",
					slog.String("role", role.String()),
					slog.String("object", object),
					slog.String("action", action))
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
