package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRateLimiter(t *testing.T, maxReqs, windowSec int) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	return NewRateLimiter(client, maxReqs, windowSec), s
}

func doRequest(t *testing.T, rl *RateLimiter, ip string) int {
	t.Helper()
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl, _ := setupRateLimiter(t, 5, 60)

	for i := 0; i < 5; i++ {
		code := doRequest(t, rl, "10.0.0.1")
		assert.Equal(t, http.StatusOK, code, "request %d should pass", i+1)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl, _ := setupRateLimiter(t, 3, 60)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, doRequest(t, rl, "10.0.0.2"))
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(t, rl, "10.0.0.2"))
}

func TestRateLimiter_DifferentIPsIndependent(t *testing.T) {
	rl, _ := setupRateLimiter(t, 2, 60)

	require.Equal(t, http.StatusOK, doRequest(t, rl, "10.0.0.3"))
	require.Equal(t, http.StatusOK, doRequest(t, rl, "10.0.0.3"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(t, rl, "10.0.0.3"))

	assert.Equal(t, http.StatusOK, doRequest(t, rl, "10.0.0.4"))
}

func TestRateLimiter_FailsOpenOnRedisError(t *testing.T) {
	rl, s := setupRateLimiter(t, 1, 60)
	s.Close()

	assert.Equal(t, http.StatusOK, doRequest(t, rl, "10.0.0.5"))
}

func TestClientIP_XForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}
