package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a per-IP sliding window over a Redis sorted set. It
// fronts the credential endpoints, where a false allow costs one extra
// bcrypt comparison and a false deny locks a user out, so Redis
// failures let requests through.
type RateLimiter struct {
	client    redis.Cmdable
	maxReqs   int
	windowSec int
}

func NewRateLimiter(client redis.Cmdable, maxReqs, windowSec int) *RateLimiter {
	return &RateLimiter{client: client, maxReqs: maxReqs, windowSec: windowSec}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		allowed, err := rl.allow(r.Context(), "ratelimit:auth:"+ip)
		if err != nil {
			slog.Warn("rate limiter unavailable, allowing request", "error", err, "ip", ip)
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(rl.windowSec))
			http.Error(w, `{"error":"too many requests"}`, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow trims expired entries, counts what remains, and records the
// current request in one pipeline round trip. The count excludes the
// request being recorded, so exactly maxReqs requests pass per window.
func (rl *RateLimiter) allow(ctx context.Context, key string) (bool, error) {
	window := time.Duration(rl.windowSec) * time.Second
	now := time.Now()
	cutoff := strconv.FormatInt(now.Add(-window).UnixMilli(), 10)

	pipe := rl.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", cutoff)
	count := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: strconv.FormatInt(now.UnixNano(), 36),
	})
	pipe.Expire(ctx, key, window+time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return count.Val() < int64(rl.maxReqs), nil
}

// clientIP trusts proxy headers when present, falling back to the
// socket peer address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
