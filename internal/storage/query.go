package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nixlim/pantry-alerts/internal/alerts"
)

// DailyActivity counts history actions on one local calendar day.
type DailyActivity struct {
	Date         string `db:"date"`
	Sent         int    `db:"sent"`
	Acknowledged int    `db:"acknowledged"`
	Snoozed      int    `db:"snoozed"`
	Dismissed    int    `db:"dismissed"`
}

// ActivityReporter is implemented by stores that can summarize history by day.
type ActivityReporter interface {
	DailyActivity(ctx context.Context, days int) ([]DailyActivity, error)
}

// DailyActivity returns per-day action counts for the last days days,
// newest first. Days without activity are omitted.
func (s *SQLiteStore) DailyActivity(ctx context.Context, days int) ([]DailyActivity, error) {
	cutoff := formatTime(startOfDay(time.Now()).AddDate(0, 0, -(days - 1)))

	var out []DailyActivity
	err := s.db.SelectContext(ctx, &out, `
		SELECT
			date(timestamp, 'localtime') AS date,
			SUM(CASE WHEN action = 'sent' THEN 1 ELSE 0 END) AS sent,
			SUM(CASE WHEN action = 'acknowledged' THEN 1 ELSE 0 END) AS acknowledged,
			SUM(CASE WHEN action = 'snoozed' THEN 1 ELSE 0 END) AS snoozed,
			SUM(CASE WHEN action = 'dismissed' THEN 1 ELSE 0 END) AS dismissed
		FROM alert_history
		WHERE timestamp >= ?
		GROUP BY date(timestamp, 'localtime')
		ORDER BY date DESC
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying daily activity: %w", err)
	}
	return out, nil
}

// DailyActivity computes the same summary as the SQLite store.
func (m *MemoryStore) DailyActivity(ctx context.Context, days int) ([]DailyActivity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := startOfDay(time.Now()).AddDate(0, 0, -(days - 1))
	byDate := make(map[string]*DailyActivity)
	for _, h := range m.history {
		if h.Timestamp.Before(cutoff) {
			continue
		}
		date := h.Timestamp.Local().Format(dateLayout)
		d, ok := byDate[date]
		if !ok {
			d = &DailyActivity{Date: date}
			byDate[date] = d
		}
		switch h.Action {
		case alerts.ActionSent:
			d.Sent++
		case alerts.ActionAcknowledged:
			d.Acknowledged++
		case alerts.ActionSnoozed:
			d.Snoozed++
		case alerts.ActionDismissed:
			d.Dismissed++
		}
	}

	out := make([]DailyActivity, 0, len(byDate))
	for _, d := range byDate {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func startOfDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}
