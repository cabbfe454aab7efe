package alerts

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 6, 1, hour, minute, 0, 0, time.Local)
}

func TestInQuietHours(t *testing.T) {
	overnight := QuietHours{Enabled: true, StartTime: "22:00", EndTime: "08:00"}
	daytime := QuietHours{Enabled: true, StartTime: "13:00", EndTime: "14:30"}

	tests := []struct {
		name string
		q    QuietHours
		now  time.Time
		want bool
	}{
		{name: "wrap late evening", q: overnight, now: at(23, 0), want: true},
		{name: "wrap early morning", q: overnight, now: at(5, 0), want: true},
		{name: "wrap midday", q: overnight, now: at(12, 0), want: false},
		{name: "wrap start inclusive", q: overnight, now: at(22, 0), want: true},
		{name: "wrap end inclusive", q: overnight, now: at(8, 0), want: true},
		{name: "wrap just after end", q: overnight, now: at(8, 1), want: false},
		{name: "plain window inside", q: daytime, now: at(13, 45), want: true},
		{name: "plain window before", q: daytime, now: at(12, 59), want: false},
		{name: "plain window after", q: daytime, now: at(14, 31), want: false},
		{name: "disabled", q: QuietHours{StartTime: "00:00", EndTime: "23:59"}, now: at(12, 0), want: false},
		{name: "malformed start", q: QuietHours{Enabled: true, StartTime: "late", EndTime: "08:00"}, now: at(23, 0), want: false},
		{name: "malformed end", q: QuietHours{Enabled: true, StartTime: "22:00", EndTime: "25:00"}, now: at(23, 0), want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := InQuietHours(tc.q, tc.now); got != tc.want {
				t.Errorf("InQuietHours(%+v, %s) = %v, want %v", tc.q, tc.now.Format("15:04"), got, tc.want)
			}
		})
	}
}
