package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/testdb")
	t.Setenv("AUTH_JWT_SECRET", "this-is-a-very-long-jwt-secret-for-testing-32+")
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: "5s"
  write_timeout: "15s"
  idle_timeout: "30s"
  shutdown_timeout: "5s"

database:
  dsn: "postgres://u:p@localhost:5432/testdb"
  max_conns: 10
  min_conns: 2

auth:
  jwt_secret: "this-is-a-very-long-jwt-secret-for-testing-32+"
  jwt_issuer: "mla-test"
  access_token_ttl: "30m"

log:
  level: "debug"
  format: "text"

rate_limit:
  enabled: true
  rate: "20-S"
  trust_forward_header: true

metrics:
  enabled: true
  path: "/internal/metrics"

planning:
  default_required_headcount: 3
`

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Server
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server.read_timeout = %v, want %v", cfg.Server.ReadTimeout, 5*time.Second)
	}

	// Database
	if cfg.Database.MaxConns != 10 {
		t.Errorf("database.max_conns = %d, want 10", cfg.Database.MaxConns)
	}

	// Auth
	if cfg.Auth.JWTIssuer != "mla-test" {
		t.Errorf("auth.jwt_issuer = %q, want %q", cfg.Auth.JWTIssuer, "mla-test")
	}
	if cfg.Auth.AccessTokenTTL != 30*time.Minute {
		t.Errorf("auth.access_token_ttl = %v, want 30m", cfg.Auth.AccessTokenTTL)
	}

	// Log
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v, want debug/text", cfg.Log)
	}

	// Rate limit
	if cfg.RateLimit.Rate != "20-S" {
		t.Errorf("rate_limit.rate = %q, want %q", cfg.RateLimit.Rate, "20-S")
	}
	if !cfg.RateLimit.TrustForwardHeader {
		t.Error("rate_limit.trust_forward_header should be true")
	}

	// Metrics
	if cfg.Metrics.Path != "/internal/metrics" {
		t.Errorf("metrics.path = %q", cfg.Metrics.Path)
	}

	// Planning
	if cfg.Planning.DefaultRequiredHeadcount != 3 {
		t.Errorf("planning.default_required_headcount = %d, want 3", cfg.Planning.DefaultRequiredHeadcount)
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("PLANNING_DEFAULT_REQUIRED_HEADCOUNT", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("server.port = %d, want 7070 (ENV override)", cfg.Server.Port)
	}
	if cfg.Planning.DefaultRequiredHeadcount != 4 {
		t.Errorf("planning.default_required_headcount = %d, want 4 (ENV override)", cfg.Planning.DefaultRequiredHeadcount)
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	dir := t.TempDir()
	orig, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })

	t.Setenv("CONFIG_PATH", "")
	validEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080 (default)", cfg.Server.Port)
	}
	if cfg.Auth.JWTIssuer != "planning-backend" {
		t.Errorf("auth.jwt_issuer = %q, want default", cfg.Auth.JWTIssuer)
	}
	if cfg.Auth.AccessTokenTTL != time.Hour {
		t.Errorf("auth.access_token_ttl = %v, want 1h", cfg.Auth.AccessTokenTTL)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Rate != "100-M" {
		t.Errorf("rate_limit = %+v, want enabled 100-M", cfg.RateLimit)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Errorf("metrics = %+v, want enabled /metrics", cfg.Metrics)
	}
	if cfg.Planning.DefaultRequiredHeadcount != 2 {
		t.Errorf("planning.default_required_headcount = %d, want 2", cfg.Planning.DefaultRequiredHeadcount)
	}
	if !strings.Contains(cfg.CORS.AllowedMethods, "PATCH") {
		t.Errorf("cors.allowed_methods = %q, want PATCH included", cfg.CORS.AllowedMethods)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for non-existent explicit CONFIG_PATH")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "{{invalid yaml")
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	orig, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })

	t.Setenv("CONFIG_PATH", "")
	validEnv(t)

	const key = "PLANNING_DEFAULT_REQUIRED_HEADCOUNT"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	dotenv := key + "=6\nSERVER_PORT=1111\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("SERVER_PORT", "9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Planning.DefaultRequiredHeadcount != 6 {
		t.Errorf("planning.default_required_headcount = %d, want 6 (from .env)", cfg.Planning.DefaultRequiredHeadcount)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d, want 9999 (.env must not override ENV)", cfg.Server.Port)
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	t.Parallel()

	if err := loadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("missing .env should be ignored, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Validate
// ---------------------------------------------------------------------------

func validConfig() Config {
	return Config{
		Server:    ServerConfig{Port: 8080},
		Database:  DatabaseConfig{DSN: "postgres://localhost/db"},
		Auth:      AuthConfig{JWTSecret: "this-is-a-very-long-jwt-secret-for-testing-32+", AccessTokenTTL: time.Hour},
		Log:       LogConfig{Level: "info", Format: "json"},
		RateLimit: RateLimitConfig{Enabled: true, Rate: "100-M", LoginRate: "10-M"},
		Metrics:   MetricsConfig{Enabled: true, Path: "/metrics"},
		Planning:  PlanningConfig{DefaultRequiredHeadcount: 2},
	}
}

func TestValidate_OK(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantSub string
	}{
		{"short jwt secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "jwt_secret"},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"zero headcount", func(c *Config) { c.Planning.DefaultRequiredHeadcount = 0 }, "default_required_headcount"},
		{"empty rate", func(c *Config) { c.RateLimit.Rate = "" }, "rate"},
		{"unparseable rate", func(c *Config) { c.RateLimit.Rate = "lots" }, "rate"},
		{"unparseable login rate", func(c *Config) { c.RateLimit.LoginRate = "10-Y" }, "login_rate"},
		{"metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestValidate_RateLimitDisabledSkipsRate(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.RateLimit = RateLimitConfig{Enabled: false, Rate: "garbage"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MetricsDisabledSkipsPath(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Metrics = MetricsConfig{Enabled: false}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
