package usage

import "time"

// rollover resets stale counters in place when the calendar markers no
// longer match now. The daily counter resets whenever the date changed;
// the monthly counter resets only when month or year changed. Returns
// true if anything was modified.
func rollover(u *Usage, now time.Time) bool {
	day, month, year := now.Day(), int(now.Month()), now.Year()

	dayChanged := u.LastUsageDay != day || u.LastUsageMonth != month || u.LastUsageYear != year
	monthChanged := u.LastUsageMonth != month || u.LastUsageYear != year

	if !dayChanged && !monthChanged {
		return false
	}

	if dayChanged {
		u.UsedToday = 0
	}
	if monthChanged {
		u.UsedMonth = 0
	}

	u.LastUsageDay = day
	u.LastUsageMonth = month
	u.LastUsageYear = year
	return true
}
