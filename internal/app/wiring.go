package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mla/planning-backend/internal/adapter/postgres"
	activityrepo "github.com/mla/planning-backend/internal/adapter/postgres/activity"
	assignmentrepo "github.com/mla/planning-backend/internal/adapter/postgres/assignment"
	auditrepo "github.com/mla/planning-backend/internal/adapter/postgres/audit"
	memberrepo "github.com/mla/planning-backend/internal/adapter/postgres/member"
	planningrepo "github.com/mla/planning-backend/internal/adapter/postgres/planning"
	slotrepo "github.com/mla/planning-backend/internal/adapter/postgres/slot"
	userrepo "github.com/mla/planning-backend/internal/adapter/postgres/user"
	"github.com/mla/planning-backend/internal/auth"
	"github.com/mla/planning-backend/internal/config"
	"github.com/mla/planning-backend/internal/metrics"
	"github.com/mla/planning-backend/internal/service/assignment"
	authsvc "github.com/mla/planning-backend/internal/service/auth"
	"github.com/mla/planning-backend/internal/service/planning"
	"github.com/mla/planning-backend/internal/service/slot"
	"github.com/mla/planning-backend/internal/transport/middleware"
	"github.com/mla/planning-backend/internal/transport/rest"
)

// Services groups the application services shared by the HTTP server and
// the CLI.
type Services struct {
	Planning   *planning.Service
	Slot       *slot.Service
	Assignment *assignment.Service
	Auth       *authsvc.Service
}

// NewServices builds the PostgreSQL repositories and the services on top of them.
func NewServices(pool *pgxpool.Pool, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *Services {
	txm := postgres.NewTxManager(pool)

	activities := activityrepo.New(pool)
	plannings := planningrepo.New(pool)
	slots := slotrepo.New(pool)
	assignments := assignmentrepo.New(pool)
	members := memberrepo.New(pool)
	users := userrepo.New(pool)
	audit := auditrepo.New(pool)

	jwt := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	assignmentSvc := assignment.NewService(logger, assignments, slots, plannings, members, audit, txm)
	slotSvc := slot.NewService(logger, slots, plannings, assignmentSvc, audit, txm, cfg.Planning.DefaultRequiredHeadcount)

	hook := planning.NewNotifyHook(logger, assignments, m.PlanningsPublished)

	return &Services{
		Planning:   planning.NewService(logger, activities, plannings, slots, assignments, slotSvc, audit, txm, hook),
		Slot:       slotSvc,
		Assignment: assignmentSvc,
		Auth:       authsvc.NewService(logger, users, audit, txm, jwt, cfg.Auth.BcryptCost),
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// NewHandler assembles the router and the middleware chain:
// RequestID, Recovery, Metrics, Logger, CORS, RateLimit, Auth.
func NewHandler(cfg *config.Config, logger *slog.Logger, svc *Services, db pinger, m *metrics.Metrics) (http.Handler, error) {
	enforcer, err := auth.NewEnforcer()
	if err != nil {
		return nil, fmt.Errorf("rbac enforcer: %w", err)
	}

	deps := rest.RouterDeps{
		Planning:   rest.NewPlanningHandler(svc.Planning, m, logger),
		Slot:       rest.NewSlotHandler(svc.Slot, m, logger),
		Assignment: rest.NewAssignmentHandler(svc.Assignment, m, logger),
		Auth:       rest.NewAuthHandler(svc.Auth, logger),
		Health:     rest.NewHealthHandler(BuildVersion(), rest.DatabaseProbe(db)),
		Authorizer: middleware.NewAuthorizer(enforcer, logger),
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = m.Handler()
		deps.MetricsPath = cfg.Metrics.Path
	}

	mws := []middleware.Middleware{
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Metrics(m),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	}

	if cfg.RateLimit.Enabled {
		rl := middleware.NewRateLimiter(cfg.RateLimit.TrustForwardHeader)
		global, err := rl.Limit("global", cfg.RateLimit.Rate)
		if err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		mws = append(mws, global)

		if cfg.RateLimit.LoginRate != "" {
			deps.LoginLimit, err = rl.Limit("login", cfg.RateLimit.LoginRate)
			if err != nil {
				return nil, fmt.Errorf("login rate limit: %w", err)
			}
		}
	}

	mws = append(mws, middleware.Auth(svc.Auth))

	return middleware.Chain(mws...)(rest.NewRouter(deps)), nil
}
