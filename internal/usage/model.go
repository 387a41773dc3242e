package usage

import (
	"time"

	"github.com/google/uuid"

	"github.com/DreadX3/copy-snap-magic-words/internal/config"
)

// Usage matches the user_usage table schema. The last_usage_* columns
// are calendar markers for the rollover check, not timestamps.
type Usage struct {
	UserID         uuid.UUID `json:"user_id"`
	UsedToday      int       `json:"used_today"`
	UsedMonth      int       `json:"used_month"`
	LastUsageDay   int       `json:"last_usage_day"`
	LastUsageMonth int       `json:"last_usage_month"`
	LastUsageYear  int       `json:"last_usage_year"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Limits are the generation ceilings for one user, derived from the
// subscription tier. Unlimited short-circuits the quota predicate for PRO.
type Limits struct {
	Daily     int
	Monthly   int
	Unlimited bool
}

// LimitsForTier maps a tier onto concrete ceilings.
func LimitsForTier(cfg config.QuotaConfig, isPro bool) Limits {
	if isPro {
		return Limits{Daily: cfg.ProDaily, Monthly: cfg.ProMonthly, Unlimited: true}
	}
	return Limits{Daily: cfg.FreeDaily, Monthly: cfg.FreeMonthly}
}

// QuotaStatus is the API response showing current usage and ceilings.
type QuotaStatus struct {
	UsedToday    int  `json:"used_today"`
	DailyQuota   int  `json:"daily_quota"`
	UsedMonth    int  `json:"used_month"`
	MonthlyQuota int  `json:"monthly_quota"`
	Unlimited    bool `json:"unlimited"`
	UsedMinute   int  `json:"used_minute"`
	MinuteLimit  int  `json:"minute_limit"`
}
