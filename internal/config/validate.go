package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// JWT secrets
	if len(c.JWT.AccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 characters")
	}
	if len(c.JWT.RefreshSecret) < 32 {
		errs = append(errs, "JWT_REFRESH_SECRET must be at least 32 characters")
	}
	if c.JWT.AccessSecret != "" && c.JWT.RefreshSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, "JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}

	// Quota sanity
	if c.Quota.FreeDaily < 1 {
		errs = append(errs, "QUOTA_FREE_DAILY must be positive")
	}
	if c.Quota.FreeMonthly < c.Quota.FreeDaily {
		errs = append(errs, "QUOTA_FREE_MONTHLY must be at least QUOTA_FREE_DAILY")
	}

	// Bootstrap admin: both or neither
	if (c.Admin.BootstrapEmail == "") != (c.Admin.BootstrapPassword == "") {
		errs = append(errs, "ADMIN_BOOTSTRAP_EMAIL and ADMIN_BOOTSTRAP_PASSWORD must be set together")
	}
	if c.Admin.BootstrapPassword != "" && len(c.Admin.BootstrapPassword) < 8 {
		errs = append(errs, "ADMIN_BOOTSTRAP_PASSWORD must be at least 8 characters")
	}

	// External providers: warn only, the server can run without them
	if c.Stripe.SecretKey == "" {
		slog.Warn("STRIPE_SECRET_KEY is empty, billing endpoints will fail")
	}
	if c.OpenAI.APIKey == "" {
		slog.Warn("OPENAI_API_KEY is empty, copy generation will fail")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
