package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/DreadX3/copy-snap-magic-words/internal/admins"
	"github.com/DreadX3/copy-snap-magic-words/internal/api"
	"github.com/DreadX3/copy-snap-magic-words/internal/audit"
	"github.com/DreadX3/copy-snap-magic-words/internal/auth"
	"github.com/DreadX3/copy-snap-magic-words/internal/billing"
	"github.com/DreadX3/copy-snap-magic-words/internal/config"
	"github.com/DreadX3/copy-snap-magic-words/internal/copygen"
	"github.com/DreadX3/copy-snap-magic-words/internal/database"
	"github.com/DreadX3/copy-snap-magic-words/internal/events"
	"github.com/DreadX3/copy-snap-magic-words/internal/history"
	mw "github.com/DreadX3/copy-snap-magic-words/internal/middleware"
	iredis "github.com/DreadX3/copy-snap-magic-words/internal/redis"
	"github.com/DreadX3/copy-snap-magic-words/internal/server"
	"github.com/DreadX3/copy-snap-magic-words/internal/usage"
	"github.com/DreadX3/copy-snap-magic-words/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	ctx := context.Background()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.DB.MigrationsPath != "" {
		if err := database.RunMigrations(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
			slog.Error("running migrations", "error", err)
			os.Exit(1)
		}
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS JetStream audit pipeline. Optional: the API runs without it.
	var (
		eventsClient *events.Client
		publisher    *events.Publisher
	)
	if cfg.NATS.URL != "" {
		eventsClient, err = events.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to NATS", "error", err)
			os.Exit(1)
		}
		defer eventsClient.Close()
		publisher = events.NewPublisher(eventsClient.JetStream())
	}

	// Auth
	jwtManager := auth.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	authSvc := auth.NewService(jwtManager, redisClient)
	userRepo := users.NewRepository(pool)
	userSvc := users.NewService(userRepo)
	authHandler := auth.NewHandler(authSvc, userSvc)

	// Usage quotas
	usageRepo := usage.NewRepository(pool)
	usageLimiter := usage.NewRateLimiter(redisClient)
	usageSvc := usage.NewService(usageRepo, usageLimiter, cfg.Quota)
	usageHandler := usage.NewHandler(usageSvc, userSvc, cfg.Quota)

	// History and favorites
	historyRepo := history.NewRepository(pool)
	historySvc := history.NewService(historyRepo, redisClient)
	historyHandler := history.NewHandler(historySvc, userSvc)

	// Copy generation
	var llm copygen.LLM
	if cfg.OpenAI.APIKey != "" {
		llm = copygen.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	} else {
		slog.Warn("no OpenAI API key configured, generation endpoint will fail")
	}
	copygenSvc := copygen.NewService(
		llm,
		copygen.NewImageFetcher(),
		usageSvc,
		userSvc,
		historySvc,
		publisher,
		cfg.Quota,
		cfg.OpenAI.Timeout,
	)
	copygenHandler := copygen.NewHandler(copygenSvc)

	// Billing
	var provider billing.Provider
	if cfg.Stripe.SecretKey != "" {
		provider = billing.NewStripeProvider(cfg.Stripe)
	} else {
		slog.Warn("no Stripe secret key configured, billing endpoints will fail")
	}
	billingSvc := billing.NewService(provider, userSvc, usageRepo, publisher, cfg.Quota)
	billingHandler := billing.NewHandler(billingSvc, userSvc, cfg.Stripe)

	// Admin panel + audit trail
	auditRepo := audit.NewRepository(pool)
	adminSvc := admins.NewService(admins.NewRepository(pool), userSvc, publisher, cfg.Admin)
	adminHandler := admins.NewHandler(adminSvc, auditRepo)
	profileHandler := users.NewHandler(userSvc, adminSvc)

	if eventsClient != nil {
		consumer := audit.NewConsumer(auditRepo, events.NewConsumerManager(eventsClient.JetStream()))
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("audit consumer stopped", "error", err)
			}
		}()
	}

	// Router
	authLimiter := mw.NewRateLimiter(redisClient, 10, 60)
	router := api.NewRouter(pool, eventsClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthRateLimiter:    authLimiter.Middleware,
	}, api.HandlerSet{
		Register: authHandler.Register,
		Login:    authHandler.Login,
		Refresh:  authHandler.Refresh,
		Logout:   authHandler.Logout,

		Me:              profileHandler.Me,
		CompleteProfile: profileHandler.CompleteProfile,

		UsageStatus: usageHandler.Status,
		Generate:    copygenHandler.Generate,

		History:        historyHandler.List,
		Favorites:      historyHandler.Favorites,
		ToggleFavorite: historyHandler.ToggleFavorite,

		CheckSubscription: billingHandler.CheckSubscription,
		Checkout:          billingHandler.Checkout,
		BillingPortal:     billingHandler.Portal,
		StripeWebhook:     billingHandler.Webhook,

		ListAdmins:    adminHandler.List,
		AddAdmin:      adminHandler.Add,
		RemoveAdmin:   adminHandler.Remove,
		ListAuditLogs: adminHandler.Audit,
		ResetUsers:    adminHandler.Reset,

		AuthMiddleware:       auth.Middleware(authSvc),
		AdminMiddleware:      adminSvc.RequireAdmin,
		SuperAdminMiddleware: adminSvc.RequireSuperAdmin,
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
