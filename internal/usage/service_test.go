package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DreadX3/copy-snap-magic-words/internal/config"
)

func testQuotaConfig() config.QuotaConfig {
	return config.QuotaConfig{
		FreeDaily:    10,
		FreeMonthly:  50,
		ProDaily:     999,
		ProMonthly:   9999,
		MaxPerMinute: 5,
	}
}

// fakeRepository keeps a single usage row in memory and applies the same
// conditional-increment semantics as the SQL implementation.
type fakeRepository struct {
	rows         map[uuid.UUID]*Usage
	saveCalls    int
	consumeCalls int
	refundCalls  int
	getErr       error
	consumeErr   error
	now          func() time.Time
}

func newFakeRepository(now func() time.Time) *fakeRepository {
	return &fakeRepository{rows: make(map[uuid.UUID]*Usage), now: now}
}

func (f *fakeRepository) GetOrCreate(_ context.Context, userID uuid.UUID) (*Usage, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.rows[userID]; ok {
		cp := *u
		return &cp, nil
	}
	n := f.now()
	u := &Usage{
		UserID:         userID,
		LastUsageDay:   n.Day(),
		LastUsageMonth: int(n.Month()),
		LastUsageYear:  n.Year(),
		UpdatedAt:      n,
	}
	f.rows[userID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeRepository) SaveRollover(_ context.Context, u *Usage) error {
	f.saveCalls++
	cp := *u
	f.rows[u.UserID] = &cp
	return nil
}

func (f *fakeRepository) TryConsume(_ context.Context, userID uuid.UUID, limits Limits) (bool, error) {
	f.consumeCalls++
	if f.consumeErr != nil {
		return false, f.consumeErr
	}
	u, ok := f.rows[userID]
	if !ok {
		return false, nil
	}
	if !limits.Unlimited && (u.UsedToday >= limits.Daily || u.UsedMonth >= limits.Monthly) {
		return false, nil
	}
	u.UsedToday++
	u.UsedMonth++
	return true, nil
}

func (f *fakeRepository) Refund(_ context.Context, userID uuid.UUID) error {
	f.refundCalls++
	if u, ok := f.rows[userID]; ok {
		if u.UsedToday > 0 {
			u.UsedToday--
		}
		if u.UsedMonth > 0 {
			u.UsedMonth--
		}
	}
	return nil
}

func newTestService(repo Repository) *Service {
	// No rate limiter wired; Consume skips the minute check.
	return NewService(repo, nil, testQuotaConfig())
}

func TestService_Consume_UnderLimit(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepository(func() time.Time { return now })
	svc := newTestService(repo)
	svc.now = func() time.Time { return now }
	userID := uuid.New()
	limits := LimitsForTier(testQuotaConfig(), false)

	for i := 0; i < 10; i++ {
		require.NoError(t, svc.Consume(ctx, userID, limits))
	}

	assert.Equal(t, 10, repo.rows[userID].UsedToday)
	assert.Equal(t, 10, repo.rows[userID].UsedMonth)
}

func TestService_Consume_DailyLimitReached(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepository(func() time.Time { return now })
	svc := newTestService(repo)
	svc.now = func() time.Time { return now }
	userID := uuid.New()
	limits := LimitsForTier(testQuotaConfig(), false)

	_, err := repo.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	repo.rows[userID].UsedToday = 10
	repo.rows[userID].UsedMonth = 10

	err = svc.Consume(ctx, userID, limits)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDailyLimit)
	assert.Equal(t, 10, repo.rows[userID].UsedToday, "counter unchanged on denial")
}

func TestService_Consume_MonthlyLimitReached(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepository(func() time.Time { return now })
	svc := newTestService(repo)
	svc.now = func() time.Time { return now }
	userID := uuid.New()
	limits := LimitsForTier(testQuotaConfig(), false)

	_, err := repo.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	repo.rows[userID].UsedToday = 3
	repo.rows[userID].UsedMonth = 50

	err = svc.Consume(ctx, userID, limits)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMonthlyLimit)
}

func TestService_Consume_ProBypassesLimits(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepository(func() time.Time { return now })
	svc := newTestService(repo)
	svc.now = func() time.Time { return now }
	userID := uuid.New()
	limits := LimitsForTier(testQuotaConfig(), true)

	_, err := repo.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	repo.rows[userID].UsedToday = 5000
	repo.rows[userID].UsedMonth = 50000

	require.NoError(t, svc.Consume(ctx, userID, limits))
	assert.Equal(t, 5001, repo.rows[userID].UsedToday)
}

func TestService_Consume_RolloverResetsDailyCounter(t *testing.T) {
	ctx := context.Background()
	yesterday := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepository(func() time.Time { return yesterday })
	svc := newTestService(repo)
	userID := uuid.New()
	limits := LimitsForTier(testQuotaConfig(), false)

	// Exhaust yesterday's daily quota
	_, err := repo.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	repo.rows[userID].UsedToday = 10
	repo.rows[userID].UsedMonth = 10

	// The clock moves to the next day: daily resets, monthly keeps counting
	svc.now = func() time.Time { return yesterday.Add(24 * time.Hour) }
	require.NoError(t, svc.Consume(ctx, userID, limits))

	assert.Equal(t, 1, repo.rows[userID].UsedToday)
	assert.Equal(t, 11, repo.rows[userID].UsedMonth)
	assert.Equal(t, 1, repo.saveCalls, "rollover persisted once")
}

func TestService_Consume_RepositoryError(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository(time.Now)
	repo.getErr = errors.New("connection refused")
	svc := newTestService(repo)

	err := svc.Consume(ctx, uuid.New(), LimitsForTier(testQuotaConfig(), false))
	require.Error(t, err)
	assert.Equal(t, 0, repo.consumeCalls, "no consume attempt after fetch failure")
}

func TestService_Refund(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepository(func() time.Time { return now })
	svc := newTestService(repo)
	svc.now = func() time.Time { return now }
	userID := uuid.New()
	limits := LimitsForTier(testQuotaConfig(), false)

	require.NoError(t, svc.Consume(ctx, userID, limits))
	svc.Refund(ctx, userID)

	assert.Equal(t, 0, repo.rows[userID].UsedToday)
	assert.Equal(t, 0, repo.rows[userID].UsedMonth)
}

func TestService_Status(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepository(func() time.Time { return now })
	svc := newTestService(repo)
	svc.now = func() time.Time { return now }
	userID := uuid.New()
	limits := LimitsForTier(testQuotaConfig(), false)

	require.NoError(t, svc.Consume(ctx, userID, limits))
	require.NoError(t, svc.Consume(ctx, userID, limits))

	status, err := svc.Status(ctx, userID, limits)
	require.NoError(t, err)
	assert.Equal(t, 2, status.UsedToday)
	assert.Equal(t, 10, status.DailyQuota)
	assert.Equal(t, 2, status.UsedMonth)
	assert.Equal(t, 50, status.MonthlyQuota)
	assert.False(t, status.Unlimited)
	assert.Equal(t, 5, status.MinuteLimit)
}
