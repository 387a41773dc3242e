package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	NATS   NATSConfig
	JWT    JWTConfig
	Stripe StripeConfig
	OpenAI OpenAIConfig
	Quota  QuotaConfig
	Admin  AdminConfig
	CORS   CORSConfig
	Log    LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxConns       int32
	MigrationsPath string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	URL string
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type StripeConfig struct {
	SecretKey         string
	WebhookSecret     string
	PriceIDProMonthly string
	FrontendURL       string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// QuotaConfig holds generation ceilings per tier. The PRO values are the
// sentinel quotas shown on the pricing page; is_pro bypasses the limit
// predicate anyway.
type QuotaConfig struct {
	FreeDaily    int
	FreeMonthly  int
	ProDaily     int
	ProMonthly   int
	MaxPerMinute int
}

type AdminConfig struct {
	BootstrapEmail    string
	BootstrapPassword string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		DB: DBConfig{
			Host:           k.String("db.host"),
			Port:           k.Int("db.port"),
			User:           k.String("db.user"),
			Password:       k.String("db.password"),
			Name:           k.String("db.name"),
			SSLMode:        k.String("db.sslmode"),
			MaxConns:       int32(k.Int("db.max.conns")),
			MigrationsPath: k.String("db.migrations.path"),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		JWT: JWTConfig{
			AccessSecret:  k.String("jwt.access.secret"),
			RefreshSecret: k.String("jwt.refresh.secret"),
		},
		Stripe: StripeConfig{
			SecretKey:         k.String("stripe.secret.key"),
			WebhookSecret:     k.String("stripe.webhook.secret"),
			PriceIDProMonthly: k.String("stripe.price.pro.monthly"),
			FrontendURL:       k.String("stripe.frontend.url"),
		},
		OpenAI: OpenAIConfig{
			APIKey: k.String("openai.api.key"),
			Model:  k.String("openai.model"),
		},
		Quota: QuotaConfig{
			FreeDaily:    k.Int("quota.free.daily"),
			FreeMonthly:  k.Int("quota.free.monthly"),
			ProDaily:     k.Int("quota.pro.daily"),
			ProMonthly:   k.Int("quota.pro.monthly"),
			MaxPerMinute: k.Int("quota.max.per.minute"),
		},
		Admin: AdminConfig{
			BootstrapEmail:    k.String("admin.bootstrap.email"),
			BootstrapPassword: k.String("admin.bootstrap.password"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	if origins := k.String("cors.allowed.origins"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, o)
			}
		}
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "copysnap"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "copysnap"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://localhost:4222"
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.Quota.FreeDaily == 0 {
		cfg.Quota.FreeDaily = 10
	}
	if cfg.Quota.FreeMonthly == 0 {
		cfg.Quota.FreeMonthly = 50
	}
	if cfg.Quota.ProDaily == 0 {
		cfg.Quota.ProDaily = 999
	}
	if cfg.Quota.ProMonthly == 0 {
		cfg.Quota.ProMonthly = 9999
	}
	if cfg.Quota.MaxPerMinute == 0 {
		cfg.Quota.MaxPerMinute = 5
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "debug"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	accessExpStr := k.String("jwt.access.expiry")
	if accessExpStr == "" {
		accessExpStr = "15m"
	}
	cfg.JWT.AccessExpiry, err = time.ParseDuration(accessExpStr)
	if err != nil {
		return nil, fmt.Errorf("parsing jwt access expiry: %w", err)
	}

	refreshExpStr := k.String("jwt.refresh.expiry")
	if refreshExpStr == "" {
		refreshExpStr = "168h"
	}
	cfg.JWT.RefreshExpiry, err = time.ParseDuration(refreshExpStr)
	if err != nil {
		return nil, fmt.Errorf("parsing jwt refresh expiry: %w", err)
	}

	timeoutStr := k.String("openai.timeout")
	if timeoutStr == "" {
		timeoutStr = "60s"
	}
	cfg.OpenAI.Timeout, err = time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("parsing openai timeout: %w", err)
	}

	return cfg, nil
}
