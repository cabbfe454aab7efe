package alerts

import (
	"fmt"
	"time"
)

// InQuietHours reports whether now falls inside the quiet-hours window.
//
// Both bounds are inclusive. When StartTime is later than EndTime the window
// wraps midnight and suppresses now >= start OR now <= end. A disabled window
// or an unparsable bound never suppresses.
func InQuietHours(q QuietHours, now time.Time) bool {
	if !q.Enabled {
		return false
	}
	start, err := parseClock(q.StartTime)
	if err != nil {
		return false
	}
	end, err := parseClock(q.EndTime)
	if err != nil {
		return false
	}

	cur := now.Hour()*60 + now.Minute()
	if start > end {
		return cur >= start || cur <= end
	}
	return cur >= start && cur <= end
}

// parseClock converts "HH:mm" to minutes past midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parsing clock %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
