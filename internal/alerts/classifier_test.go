package alerts

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	th := Thresholds{Reminder: 7, Warning: 3, Critical: 1}

	tests := []struct {
		name   string
		days   int
		want   Severity
		wantOK bool
	}{
		{name: "long overdue", days: -30, want: SeverityExpired, wantOK: true},
		{name: "yesterday", days: -1, want: SeverityExpired, wantOK: true},
		{name: "today", days: 0, want: SeverityCritical, wantOK: true},
		{name: "critical bound", days: 1, want: SeverityCritical, wantOK: true},
		{name: "just past critical", days: 2, want: SeverityWarning, wantOK: true},
		{name: "warning bound", days: 3, want: SeverityWarning, wantOK: true},
		{name: "just past warning", days: 4, want: SeverityReminder, wantOK: true},
		{name: "reminder bound", days: 7, want: SeverityReminder, wantOK: true},
		{name: "too far out", days: 8, wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Classify(tc.days, th)
			if ok != tc.wantOK || got != tc.want {
				t.Errorf("Classify(%d) = %q, %v; want %q, %v", tc.days, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestClassify_AnyThresholds(t *testing.T) {
	for c := 0; c <= 3; c++ {
		for w := c; w <= 6; w++ {
			for r := w; r <= 10; r++ {
				th := Thresholds{Reminder: r, Warning: w, Critical: c}
				for d := -5; d <= 15; d++ {
					got, ok := Classify(d, th)
					var want Severity
					wantOK := true
					switch {
					case d < 0:
						want = SeverityExpired
					case d <= c:
						want = SeverityCritical
					case d <= w:
						want = SeverityWarning
					case d <= r:
						want = SeverityReminder
					default:
						wantOK = false
					}
					if got != want || ok != wantOK {
						t.Fatalf("Classify(%d, %+v) = %q, %v; want %q, %v", d, th, got, ok, want, wantOK)
					}
				}
			}
		}
	}
}

func TestSeverity_Priority(t *testing.T) {
	tests := []struct {
		sev  Severity
		want Priority
	}{
		{SeverityExpired, PriorityHigh},
		{SeverityCritical, PriorityHigh},
		{SeverityWarning, PriorityMedium},
		{SeverityReminder, PriorityLow},
	}
	for _, tc := range tests {
		if got := tc.sev.Priority(); got != tc.want {
			t.Errorf("%s.Priority() = %s, want %s", tc.sev, got, tc.want)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)

	tests := []struct {
		name string
		exp  time.Time
		now  time.Time
		want int
	}{
		{
			name: "same day",
			exp:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			now:  time.Date(2026, 3, 10, 23, 59, 0, 0, loc),
			want: 0,
		},
		{
			name: "two hours apart across midnight is one day",
			exp:  time.Date(2026, 3, 11, 1, 0, 0, 0, loc),
			now:  time.Date(2026, 3, 10, 23, 0, 0, 0, loc),
			want: 1,
		},
		{
			name: "five days ago",
			exp:  time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
			now:  time.Date(2026, 3, 10, 8, 0, 0, 0, loc),
			want: -5,
		},
		{
			name: "across a month boundary",
			exp:  time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
			now:  time.Date(2026, 3, 30, 12, 0, 0, 0, loc),
			want: 3,
		},
		{
			name: "across a leap day",
			exp:  time.Date(2028, 3, 1, 0, 0, 0, 0, time.UTC),
			now:  time.Date(2028, 2, 28, 12, 0, 0, 0, time.UTC),
			want: 2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DaysUntil(tc.exp, tc.now); got != tc.want {
				t.Errorf("DaysUntil() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCivilDate(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
	}{
		{name: "utc midnight", in: time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)},
		{name: "west of utc", in: time.Date(2026, 6, 3, 0, 0, 0, 0, time.FixedZone("EST", -5*3600))},
		{name: "east of utc late evening", in: time.Date(2026, 6, 3, 23, 30, 0, 0, time.FixedZone("AEST", 10*3600))},
	}
	want := time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CivilDate(tc.in); got != want {
				t.Errorf("CivilDate(%v) = %v, want %v", tc.in, got, want)
			}
		})
	}
}
