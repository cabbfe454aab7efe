package alerts

import "time"

// Thresholds are the inclusive upper bounds, in days, of each severity tier.
type Thresholds struct {
	Reminder int
	Warning  int
	Critical int
}

// Classify maps days until expiration to a severity. The second return value
// is false when the item is far enough out that no alert is warranted.
//
//	d < 0                    -> Expired
//	0 <= d <= Critical       -> Critical
//	Critical < d <= Warning  -> Warning
//	Warning < d <= Reminder  -> Reminder
//	d > Reminder             -> none
func Classify(days int, th Thresholds) (Severity, bool) {
	switch {
	case days < 0:
		return SeverityExpired, true
	case days <= th.Critical:
		return SeverityCritical, true
	case days <= th.Warning:
		return SeverityWarning, true
	case days <= th.Reminder:
		return SeverityReminder, true
	default:
		return "", false
	}
}

// DaysUntil returns the number of calendar days from now to expiration.
//
// The expiration is treated as a civil date (its own year, month and day),
// and now is reduced to its civil date in its own location. Two instants two
// hours apart on either side of midnight are therefore one day apart.
func DaysUntil(expiration, now time.Time) int {
	return int(CivilDate(expiration).Sub(CivilDate(now)) / (24 * time.Hour))
}

// CivilDate returns t's calendar date in t's own location as UTC midnight.
// Expiration dates are held in this form so they compare equal after a
// round trip through storage.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// sameDay reports whether a and b fall on the same calendar day in loc.
func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
