package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/nixlim/pantry-alerts/internal/alerts"
)

// activityDays is how many days of per-day activity the stats view shows.
const activityDays = 7

func (m Model) renderStats() string {
	var sb strings.Builder

	sb.WriteString(m.renderHeader("↑/↓:Scroll  Tab:Alerts  q:Quit "))
	sb.WriteByte('\n')

	var allLines []string
	if m.engine != nil {
		allLines = append(allLines, m.renderCountsSection(m.engine.Stats())...)
		allLines = append(allLines, "")
		allLines = append(allLines, m.renderPreferencesSection(m.engine.Preferences())...)
		allLines = append(allLines, "")
	}
	allLines = append(allLines, m.renderActivitySection()...)

	start, end := visibleRange(m.statsScrollPos, len(allLines), m.height-3)
	for i := start; i < end; i++ {
		sb.WriteString(allLines[i])
		sb.WriteByte('\n')
	}

	return sb.String()
}

func (m Model) renderCountsSection(s alerts.Stats) []string {
	lines := []string{panelTitleStyle.Render("  Alerts")}
	lines = append(lines,
		fmt.Sprintf("  Active: %d   Snoozed: %d   Acknowledged: %d   Dismissed: %d",
			s.Active, s.Snoozed, s.Acknowledged, s.Dismissed),
	)
	var parts []string
	for _, sev := range alerts.Severities {
		parts = append(parts, severityStyle(sev).Render(fmt.Sprintf("%s: %d", sev, s.BySeverity(sev))))
	}
	lines = append(lines, "  "+strings.Join(parts, "   "))
	return lines
}

func (m Model) renderPreferencesSection(p alerts.Preferences) []string {
	lines := []string{panelTitleStyle.Render("  Preferences")}

	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	lines = append(lines,
		fmt.Sprintf("  Alerts: %s   Push: %s   Email: %s",
			onOff(p.Enabled), onOff(p.PushNotificationsEnabled), onOff(p.EmailNotificationsEnabled)),
		fmt.Sprintf("  Thresholds (days): reminder %d, warning %d, critical %d",
			p.ReminderDays, p.WarningDays, p.CriticalDays),
		fmt.Sprintf("  Max per day: %d   Snooze: %s", p.MaxAlertsPerDay, formatHours(p.SnoozeDefaultHours)),
	)
	if p.QuietHours.Enabled {
		lines = append(lines, fmt.Sprintf("  Quiet hours: %s to %s", p.QuietHours.StartTime, p.QuietHours.EndTime))
	} else {
		lines = append(lines, "  Quiet hours: off")
	}
	return lines
}

func (m Model) renderActivitySection() []string {
	lines := []string{panelTitleStyle.Render(fmt.Sprintf("  Last %d days", activityDays))}
	if m.activity == nil {
		return append(lines, dimStyle.Render("  No activity data available"))
	}

	days, err := m.activity.DailyActivity(context.Background(), activityDays)
	if err != nil {
		return append(lines, dimStyle.Render("  Activity unavailable: "+err.Error()))
	}
	if len(days) == 0 {
		return append(lines, dimStyle.Render("  No activity in this period"))
	}

	lines = append(lines,
		fmt.Sprintf("  %-12s %6s %6s %8s %10s", "Date", "Sent", "Acked", "Snoozed", "Dismissed"),
		dimStyle.Render("  "+strings.Repeat("─", 46)),
	)
	for _, d := range days {
		lines = append(lines, fmt.Sprintf("  %-12s %6d %6d %8d %10d",
			d.Date, d.Sent, d.Acknowledged, d.Snoozed, d.Dismissed))
	}
	return lines
}
