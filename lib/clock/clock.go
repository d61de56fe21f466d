package clock

import (
	"time"
)

func Now() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}

// DaysBetween full days elapsed from `from` to `to`; negative if `to` is earlier
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// MonthsHeld number of full 30-day months elapsed since `from`.
// Used for holding-period penalty tiers, so exactly 180 days counts as 6 months.
func MonthsHeld(from, to time.Time) int {
	days := DaysBetween(from, to)
	if days < 0 {
		return 0
	}
	return days / 30
}

// InWindow reports whether t falls inside [end-days, end], both ends inclusive.
func InWindow(t, end time.Time, days int) bool {
	start := end.AddDate(0, 0, -days)
	return !t.Before(start) && !t.After(end)
}
