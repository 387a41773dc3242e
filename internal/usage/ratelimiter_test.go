package usage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiter(t *testing.T) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRateLimiter(client), mr
}

func TestRateLimiter_UnderLimit(t *testing.T) {
	rl, _ := setupLimiter(t)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		allowed, err := rl.CheckAndIncrement(ctx, userID, 5)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}
}

func TestRateLimiter_AtLimit(t *testing.T) {
	rl, _ := setupLimiter(t)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		allowed, err := rl.CheckAndIncrement(ctx, userID, 5)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, err := rl.CheckAndIncrement(ctx, userID, 5)
	require.NoError(t, err)
	assert.False(t, allowed, "sixth request within the window is denied")
}

func TestRateLimiter_DifferentUsersIndependent(t *testing.T) {
	rl, _ := setupLimiter(t)
	ctx := context.Background()
	first := uuid.New()
	second := uuid.New()

	for i := 0; i < 5; i++ {
		allowed, err := rl.CheckAndIncrement(ctx, first, 5)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, err := rl.CheckAndIncrement(ctx, second, 5)
	require.NoError(t, err)
	assert.True(t, allowed, "another user has a fresh window")
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	rl, mr := setupLimiter(t)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		allowed, err := rl.CheckAndIncrement(ctx, userID, 5)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, err := rl.CheckAndIncrement(ctx, userID, 5)
	require.NoError(t, err)
	require.False(t, allowed)

	// Age the existing entries past the window by rewriting their scores.
	key := rateLimitKeyPrefix + userID.String()
	old := float64(time.Now().Add(-2 * windowDuration).UnixMilli())
	members, err := mr.ZMembers(key)
	require.NoError(t, err)
	for _, m := range members {
		mr.ZAdd(key, old, m)
	}

	allowed, err = rl.CheckAndIncrement(ctx, userID, 5)
	require.NoError(t, err)
	assert.True(t, allowed, "expired entries no longer count")
}

func TestRateLimiter_GetMinuteUsage(t *testing.T) {
	rl, _ := setupLimiter(t)
	ctx := context.Background()
	userID := uuid.New()

	count, err := rl.GetMinuteUsage(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	for i := 0; i < 3; i++ {
		_, err := rl.CheckAndIncrement(ctx, userID, 5)
		require.NoError(t, err)
	}

	count, err = rl.GetMinuteUsage(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
