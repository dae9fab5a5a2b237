// Package testhelper provides a migrated PostgreSQL for integration tests
// together with seed helpers for the planning tables.
package testhelper

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	postgres "github.com/mla/planning-backend/internal/adapter/postgres"
	"github.com/mla/planning-backend/internal/config"
)

// DSNEnv points the tests at an existing database instead of a container.
// Migrations are still applied to it.
const DSNEnv = "PLANNING_TEST_DSN"

const (
	image        = "postgres:17-alpine"
	dbUser       = "planning"
	dbPassword   = "planning"
	dbName       = "planning_test"
	bootDeadline = 2 * time.Minute
)

var (
	bootOnce sync.Once
	bootDSN  string
	bootErr  error
)

// SetupTestDB returns a pool on the shared test database. The database is
// created and migrated once per test binary; each pool is closed on cleanup.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv(DSNEnv) == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
	}
	bootOnce.Do(func() { bootDSN, bootErr = boot() })
	if bootErr != nil {
		t.Fatalf("testhelper: %v", bootErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, config.DatabaseConfig{DSN: bootDSN, MaxConns: 8})
	if err != nil {
		t.Fatalf("testhelper: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func boot() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), bootDeadline)
	defer cancel()

	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		var err error
		if dsn, err = startContainer(ctx); err != nil {
			return "", err
		}
	}

	m, err := postgres.NewMigrator(ctx, dsn)
	if err != nil {
		return "", err
	}
	defer m.Close()

	if _, err := m.Up(ctx); err != nil {
		return "", fmt.Errorf("migrate test database: %w", err)
	}
	return dsn, nil
}

// startContainer is never terminated explicitly; the reaper removes it when
// the test process exits.
func startContainer(ctx context.Context) (string, error) {
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     dbUser,
				"POSTGRES_PASSWORD": dbPassword,
				"POSTGRES_DB":       dbName,
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start %s: %w", image, err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve container host: %w", err)
	}
	port, err := c.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("resolve postgres port: %w", err)
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, host, port.Port(), dbName), nil
}
