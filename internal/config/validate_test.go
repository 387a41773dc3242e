package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		DB: DBConfig{
			Host: "localhost", Port: 5432, User: "copysnap",
			Password: "secret", Name: "copysnap", SSLMode: "disable", MaxConns: 25,
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		JWT: JWTConfig{
			AccessSecret:  "access-secret-that-is-at-least-32-chars!",
			RefreshSecret: "refresh-secret-that-is-at-least-32-chr!",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
		},
		Quota: QuotaConfig{FreeDaily: 10, FreeMonthly: 50, ProDaily: 999, ProMonthly: 9999, MaxPerMinute: 5},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_JWTAccessSecretTooShort(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.AccessSecret = "short"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "JWT_ACCESS_SECRET") {
		t.Fatalf("expected JWT_ACCESS_SECRET error, got: %v", err)
	}
}

func TestValidate_JWTSecretsMustDiffer(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.AccessSecret = "the-same-secret-that-is-at-least-32-chars!"
	cfg.JWT.RefreshSecret = "the-same-secret-that-is-at-least-32-chars!"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("expected 'must differ' error, got: %v", err)
	}
}

func TestValidate_DBPasswordRequired(t *testing.T) {
	cfg := validConfig()
	cfg.DB.Password = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DB_PASSWORD") {
		t.Fatalf("expected DB_PASSWORD error, got: %v", err)
	}
}

func TestValidate_PortOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 70000
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Fatalf("expected SERVER_PORT error, got: %v", err)
	}
}

func TestValidate_MonthlyBelowDaily(t *testing.T) {
	cfg := validConfig()
	cfg.Quota.FreeDaily = 10
	cfg.Quota.FreeMonthly = 5
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "QUOTA_FREE_MONTHLY") {
		t.Fatalf("expected QUOTA_FREE_MONTHLY error, got: %v", err)
	}
}

func TestValidate_BootstrapAdminPair(t *testing.T) {
	cfg := validConfig()
	cfg.Admin.BootstrapEmail = "ops@copysnap.ai"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "ADMIN_BOOTSTRAP") {
		t.Fatalf("expected ADMIN_BOOTSTRAP pairing error, got: %v", err)
	}

	cfg.Admin.BootstrapPassword = "short"
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "at least 8 characters") {
		t.Fatalf("expected bootstrap password length error, got: %v", err)
	}
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.AccessSecret = "short"
	cfg.DB.Password = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "JWT_ACCESS_SECRET") || !strings.Contains(err.Error(), "DB_PASSWORD") {
		t.Fatalf("expected both errors collected, got: %v", err)
	}
}
