package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*Usage, error)
	SaveRollover(ctx context.Context, u *Usage) error
	TryConsume(ctx context.Context, userID uuid.UUID, limits Limits) (bool, error)
	Refund(ctx context.Context, userID uuid.UUID) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// GetOrCreate returns the user's usage row, creating a zeroed one with
// current calendar markers if it doesn't exist.
func (r *postgresRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*Usage, error) {
	now := time.Now()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_usage (user_id, used_today, used_month, last_usage_day, last_usage_month, last_usage_year, updated_at)
		 VALUES ($1, 0, 0, $2, $3, $4, NOW())
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, now.Day(), int(now.Month()), now.Year())
	if err != nil {
		return nil, fmt.Errorf("ensuring usage row: %w", err)
	}

	var u Usage
	err = r.pool.QueryRow(ctx,
		`SELECT user_id, used_today, used_month, last_usage_day, last_usage_month, last_usage_year, updated_at
		 FROM user_usage WHERE user_id = $1`, userID,
	).Scan(&u.UserID, &u.UsedToday, &u.UsedMonth, &u.LastUsageDay, &u.LastUsageMonth, &u.LastUsageYear, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("fetching usage row: %w", err)
	}
	return &u, nil
}

// SaveRollover persists counters and calendar markers after a reset.
func (r *postgresRepository) SaveRollover(ctx context.Context, u *Usage) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE user_usage
		 SET used_today = $2,
		     used_month = $3,
		     last_usage_day = $4,
		     last_usage_month = $5,
		     last_usage_year = $6,
		     updated_at = NOW()
		 WHERE user_id = $1`,
		u.UserID, u.UsedToday, u.UsedMonth, u.LastUsageDay, u.LastUsageMonth, u.LastUsageYear)
	if err != nil {
		return fmt.Errorf("saving rollover: %w", err)
	}
	return nil
}

// TryConsume increments both counters in a single conditional UPDATE.
// The predicate runs server-side, so two concurrent requests cannot both
// pass the check and overshoot the ceiling.
func (r *postgresRepository) TryConsume(ctx context.Context, userID uuid.UUID, limits Limits) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE user_usage
		 SET used_today = used_today + 1,
		     used_month = used_month + 1,
		     updated_at = NOW()
		 WHERE user_id = $1 AND ($2 OR (used_today < $3 AND used_month < $4))`,
		userID, limits.Unlimited, limits.Daily, limits.Monthly)
	if err != nil {
		return false, fmt.Errorf("consuming quota: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Refund undoes one consumed generation after a failed provider call.
func (r *postgresRepository) Refund(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE user_usage
		 SET used_today = GREATEST(used_today - 1, 0),
		     used_month = GREATEST(used_month - 1, 0),
		     updated_at = NOW()
		 WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("refunding quota: %w", err)
	}
	return nil
}
