//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/DreadX3/copy-snap-magic-words/internal/admins"
	"github.com/DreadX3/copy-snap-magic-words/internal/api"
	"github.com/DreadX3/copy-snap-magic-words/internal/audit"
	"github.com/DreadX3/copy-snap-magic-words/internal/auth"
	"github.com/DreadX3/copy-snap-magic-words/internal/config"
	"github.com/DreadX3/copy-snap-magic-words/internal/copygen"
	"github.com/DreadX3/copy-snap-magic-words/internal/history"
	"github.com/DreadX3/copy-snap-magic-words/internal/usage"
	"github.com/DreadX3/copy-snap-magic-words/internal/users"
)

// Small quotas so limit behavior is testable without hundreds of calls.
var testQuota = config.QuotaConfig{
	FreeDaily:    3,
	FreeMonthly:  5,
	ProDaily:     999,
	ProMonthly:   9999,
	MaxPerMinute: 100,
}

// stubLLM returns a canned three-paragraph answer.
type stubLLM struct{}

func (stubLLM) GenerateCopy(_ context.Context, _, _ string) (string, error) {
	return "First copy variation.\n\nSecond copy variation.\n\nThird copy variation.", nil
}

// stubFetcher skips the real image download.
type stubFetcher struct{}

func (stubFetcher) FetchDataURL(_ context.Context, _ string) (string, error) {
	return "data:image/jpeg;base64,dGVzdA==", nil
}

type TestEnv struct {
	Pool        *pgxpool.Pool
	RedisClient *redis.Client
	Server      *httptest.Server
	UserSvc     *users.Service
	AdminSvc    *admins.Service
}

var testEnv *TestEnv

func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	if testEnv != nil {
		return testEnv
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "copysnap_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() { pgContainer.Terminate(ctx) })

	pgHost, _ := pgContainer.Host(ctx)
	pgPort, _ := pgContainer.MappedPort(ctx, "5432")

	// Start Redis container
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting redis container: %v", err)
	}
	t.Cleanup(func() { redisContainer.Terminate(ctx) })

	redisHost, _ := redisContainer.Host(ctx)
	redisPort, _ := redisContainer.MappedPort(ctx, "6379")

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://test:test@%s:%s/copysnap_test?sslmode=disable", pgHost, pgPort.Port())
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connecting to postgres: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	// Run migrations
	m, err := migrate.New(fmt.Sprintf("file://%s", getMigrationsPath()), dsn)
	if err != nil {
		t.Fatalf("creating migrator: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("running migrations: %v", err)
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port()),
	})
	t.Cleanup(func() { redisClient.Close() })

	// Services
	jwtManager := auth.NewJWTManager("test-access-secret-32-chars-long!!", "test-refresh-secret-32-chars-long!!", 15*time.Minute, 7*24*time.Hour)
	authSvc := auth.NewService(jwtManager, redisClient)
	userRepo := users.NewRepository(pool)
	userSvc := users.NewService(userRepo)
	authHandler := auth.NewHandler(authSvc, userSvc)

	usageRepo := usage.NewRepository(pool)
	usageSvc := usage.NewService(usageRepo, usage.NewRateLimiter(redisClient), testQuota)
	usageHandler := usage.NewHandler(usageSvc, userSvc, testQuota)

	historyRepo := history.NewRepository(pool)
	historySvc := history.NewService(historyRepo, redisClient)
	historyHandler := history.NewHandler(historySvc, userSvc)

	copygenSvc := copygen.NewService(stubLLM{}, stubFetcher{}, usageSvc, userSvc, historySvc, nil, testQuota, 10*time.Second)
	copygenHandler := copygen.NewHandler(copygenSvc)

	auditRepo := audit.NewRepository(pool)
	adminSvc := admins.NewService(admins.NewRepository(pool), userSvc, nil, config.AdminConfig{
		BootstrapEmail:    "root@copysnap.test",
		BootstrapPassword: "bootstrap-password",
	})
	adminHandler := admins.NewHandler(adminSvc, auditRepo)
	profileHandler := users.NewHandler(userSvc, adminSvc)

	router := api.NewRouter(pool, nil, api.RouterConfig{}, api.HandlerSet{
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

		ListAdmins:    adminHandler.List,
		AddAdmin:      adminHandler.Add,
		RemoveAdmin:   adminHandler.Remove,
		ListAuditLogs: adminHandler.Audit,
		ResetUsers:    adminHandler.Reset,

		AuthMiddleware:       auth.Middleware(authSvc),
		AdminMiddleware:      adminSvc.RequireAdmin,
		SuperAdminMiddleware: adminSvc.RequireSuperAdmin,
	})

	server := httptest.NewServer(router)
	t.Cleanup(func() { server.Close() })

	testEnv = &TestEnv{
		Pool:        pool,
		RedisClient: redisClient,
		Server:      server,
		UserSvc:     userSvc,
		AdminSvc:    adminSvc,
	}

	return testEnv
}

func getMigrationsPath() string {
	paths := []string{
		"../../migrations",
		"../../../migrations",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	log.Fatal("migrations directory not found")
	return ""
}

// Helper functions

func RegisterUser(t *testing.T, env *TestEnv, email, password string) map[string]any {
	t.Helper()
	body := map[string]string{"email": email, "password": password}
	resp := DoRequest(t, env, "POST", "/api/v1/auth/register", body, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register failed: status %d", resp.StatusCode)
	}
	return ParseResponse(t, resp)
}

func LoginUser(t *testing.T, env *TestEnv, email, password string) string {
	t.Helper()
	body := map[string]string{"email": email, "password": password}
	resp := DoRequest(t, env, "POST", "/api/v1/auth/login", body, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: status %d", resp.StatusCode)
	}
	result := ParseResponse(t, resp)
	data := result["data"].(map[string]any)
	tokens := data["tokens"].(map[string]any)
	return tokens["access_token"].(string)
}

// MakeSuperAdmin grants super admin rights directly in the database.
func MakeSuperAdmin(t *testing.T, env *TestEnv, email string) {
	t.Helper()
	profile, err := env.UserSvc.GetByEmail(context.Background(), email)
	if err != nil || profile == nil {
		t.Fatalf("looking up %s: %v", email, err)
	}
	_, err = env.Pool.Exec(context.Background(),
		`INSERT INTO admin_users (user_id, is_super_admin, created_at) VALUES ($1, TRUE, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET is_super_admin = TRUE`,
		profile.ID)
	if err != nil {
		t.Fatalf("granting super admin: %v", err)
	}
}

func DoRequest(t *testing.T, env *TestEnv, method, path string, body any, token string) *http.Response {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, env.Server.URL+path, bodyReader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("doing request: %v", err)
	}
	return resp
}

func ParseResponse(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	return result
}

// uniqueEmail avoids collisions between tests sharing one database.
func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@copysnap.test", strings.ToLower(prefix), time.Now().UnixNano())
}
