package config

import (
	"fmt"
	"strings"

	"github.com/ulule/limiter/v3"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got %d)", c.Server.Port)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error (got %q)", c.Log.Level)
	}

	if c.Planning.DefaultRequiredHeadcount < 1 {
		return fmt.Errorf("planning.default_required_headcount must be >= 1 (got %d)", c.Planning.DefaultRequiredHeadcount)
	}

	if err := c.RateLimit.validate(); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with / (got %q)", c.Metrics.Path)
	}

	return nil
}

func (r RateLimitConfig) validate() error {
	if !r.Enabled {
		return nil
	}
	if r.Rate == "" {
		return fmt.Errorf("rate is required when rate limiting is enabled")
	}
	if _, err := limiter.NewRateFromFormatted(r.Rate); err != nil {
		return fmt.Errorf("rate %q: %w", r.Rate, err)
	}
	if r.LoginRate != "" {
		if _, err := limiter.NewRateFromFormatted(r.LoginRate); err != nil {
			return fmt.Errorf("login_rate %q: %w", r.LoginRate, err)
		}
	}
	return nil
}
