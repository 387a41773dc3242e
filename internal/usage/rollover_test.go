package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func usageAt(t time.Time, usedToday, usedMonth int) *Usage {
	return &Usage{
		UsedToday:      usedToday,
		UsedMonth:      usedMonth,
		LastUsageDay:   t.Day(),
		LastUsageMonth: int(t.Month()),
		LastUsageYear:  t.Year(),
	}
}

func TestRollover_SameDay(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	u := usageAt(now, 3, 20)

	changed := rollover(u, now.Add(2*time.Hour))

	assert.False(t, changed)
	assert.Equal(t, 3, u.UsedToday)
	assert.Equal(t, 20, u.UsedMonth)
}

func TestRollover_NextDaySameMonth(t *testing.T) {
	last := time.Date(2026, time.March, 15, 23, 0, 0, 0, time.UTC)
	u := usageAt(last, 10, 30)

	now := time.Date(2026, time.March, 16, 0, 5, 0, 0, time.UTC)
	changed := rollover(u, now)

	assert.True(t, changed)
	assert.Equal(t, 0, u.UsedToday)
	assert.Equal(t, 30, u.UsedMonth, "monthly counter survives a day change")
	assert.Equal(t, 16, u.LastUsageDay)
}

func TestRollover_NewMonth(t *testing.T) {
	last := time.Date(2026, time.March, 31, 23, 0, 0, 0, time.UTC)
	u := usageAt(last, 7, 50)

	now := time.Date(2026, time.April, 1, 0, 1, 0, 0, time.UTC)
	changed := rollover(u, now)

	assert.True(t, changed)
	assert.Equal(t, 0, u.UsedToday)
	assert.Equal(t, 0, u.UsedMonth)
	assert.Equal(t, 1, u.LastUsageDay)
	assert.Equal(t, 4, u.LastUsageMonth)
}

func TestRollover_NewYear(t *testing.T) {
	last := time.Date(2026, time.December, 31, 23, 59, 0, 0, time.UTC)
	u := usageAt(last, 2, 12)

	now := time.Date(2027, time.January, 1, 0, 0, 1, 0, time.UTC)
	changed := rollover(u, now)

	assert.True(t, changed)
	assert.Equal(t, 0, u.UsedToday)
	assert.Equal(t, 0, u.UsedMonth)
	assert.Equal(t, 2027, u.LastUsageYear)
}

func TestRollover_SameDayNumberDifferentMonth(t *testing.T) {
	// March 15 -> April 15: the day number matches but both counters
	// are stale and must reset.
	last := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	u := usageAt(last, 5, 40)

	now := time.Date(2026, time.April, 15, 12, 0, 0, 0, time.UTC)
	changed := rollover(u, now)

	assert.True(t, changed)
	assert.Equal(t, 0, u.UsedToday)
	assert.Equal(t, 0, u.UsedMonth)
}

func TestRollover_Idempotent(t *testing.T) {
	last := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	u := usageAt(last, 5, 40)

	now := time.Date(2026, time.March, 16, 9, 0, 0, 0, time.UTC)
	assert.True(t, rollover(u, now))
	assert.False(t, rollover(u, now), "second application is a no-op")
}

func TestLimitsForTier(t *testing.T) {
	cfg := testQuotaConfig()

	free := LimitsForTier(cfg, false)
	assert.Equal(t, 10, free.Daily)
	assert.Equal(t, 50, free.Monthly)
	assert.False(t, free.Unlimited)

	pro := LimitsForTier(cfg, true)
	assert.Equal(t, 999, pro.Daily)
	assert.Equal(t, 9999, pro.Monthly)
	assert.True(t, pro.Unlimited)
}
