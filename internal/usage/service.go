package usage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/DreadX3/copy-snap-magic-words/internal/config"
	"github.com/DreadX3/copy-snap-magic-words/internal/metrics"
)

var (
	// ErrDailyLimit means used_today reached the daily quota.
	ErrDailyLimit = errors.New("daily generation limit reached")
	// ErrMonthlyLimit means used_month reached the monthly quota.
	ErrMonthlyLimit = errors.New("monthly generation limit reached")
	// ErrRateLimited means the per-minute burst limit was hit.
	ErrRateLimited = errors.New("too many generation requests per minute")
)

// Service tracks per-user generation counters: a Redis sliding window for
// bursts and PostgreSQL day/month counters with calendar rollover.
type Service struct {
	repo    Repository
	limiter *RateLimiter
	cfg     config.QuotaConfig
	now     func() time.Time
}

func NewService(repo Repository, limiter *RateLimiter, cfg config.QuotaConfig) *Service {
	return &Service{
		repo:    repo,
		limiter: limiter,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Consume gates one generation: rate limit, calendar rollover, then an
// atomic increment against the tier ceilings. On denial the returned
// error names the specific exceeded limit.
func (s *Service) Consume(ctx context.Context, userID uuid.UUID, limits Limits) error {
	if s.limiter != nil {
		allowed, err := s.limiter.CheckAndIncrement(ctx, userID, s.cfg.MaxPerMinute)
		if err != nil {
			// Fail open on Redis errors to not block the user
			slog.Warn("usage: rate limiter check failed, allowing request", "error", err)
		} else if !allowed {
			metrics.QuotaDenialsTotal.WithLabelValues("minute").Inc()
			return ErrRateLimited
		}
	}

	u, err := s.rolledOver(ctx, userID)
	if err != nil {
		return err
	}

	consumed, err := s.repo.TryConsume(ctx, userID, limits)
	if err != nil {
		return err
	}
	if consumed {
		return nil
	}

	// Diagnose which ceiling blocked the increment
	if u.UsedToday >= limits.Daily {
		metrics.QuotaDenialsTotal.WithLabelValues("daily").Inc()
		return fmt.Errorf("%w: %d/%d used", ErrDailyLimit, u.UsedToday, limits.Daily)
	}
	metrics.QuotaDenialsTotal.WithLabelValues("monthly").Inc()
	return fmt.Errorf("%w: %d/%d used", ErrMonthlyLimit, u.UsedMonth, limits.Monthly)
}

// Refund returns one generation to the user after a failed provider call.
func (s *Service) Refund(ctx context.Context, userID uuid.UUID) {
	if err := s.repo.Refund(ctx, userID); err != nil {
		slog.Warn("usage: refund failed", "error", err, "user_id", userID)
	}
}

// Status returns the user's current counters and ceilings for display.
func (s *Service) Status(ctx context.Context, userID uuid.UUID, limits Limits) (*QuotaStatus, error) {
	u, err := s.rolledOver(ctx, userID)
	if err != nil {
		return nil, err
	}

	minuteUsage := 0
	if s.limiter != nil {
		minuteUsage, err = s.limiter.GetMinuteUsage(ctx, userID)
		if err != nil {
			slog.Warn("usage: failed to get minute usage", "error", err)
			minuteUsage = 0
		}
	}

	return &QuotaStatus{
		UsedToday:    u.UsedToday,
		DailyQuota:   limits.Daily,
		UsedMonth:    u.UsedMonth,
		MonthlyQuota: limits.Monthly,
		Unlimited:    limits.Unlimited,
		UsedMinute:   minuteUsage,
		MinuteLimit:  s.cfg.MaxPerMinute,
	}, nil
}

// rolledOver fetches the usage row and applies the calendar reset before
// any read or check. The reset is idempotent, so a concurrent duplicate
// write is harmless.
func (s *Service) rolledOver(ctx context.Context, userID uuid.UUID) (*Usage, error) {
	u, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if rollover(u, s.now()) {
		if err := s.repo.SaveRollover(ctx, u); err != nil {
			return nil, err
		}
	}
	return u, nil
}
