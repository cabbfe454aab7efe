package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/nixlim/pantry-alerts/internal/alerts"
)

// renderAlerts renders the active alert list with the cursor row
// highlighted and a status line at the bottom.
func (m Model) renderAlerts() string {
	var sb strings.Builder

	sb.WriteString(m.renderHeader("a:Ack s:Snooze d:Dismiss r:Check  Tab:History  q:Quit "))
	sb.WriteByte('\n')

	active := m.getActiveAlerts()
	sb.WriteString(panelTitleStyle.Render(fmt.Sprintf("  Active alerts (%d)", len(active))))
	sb.WriteByte('\n')

	if len(active) == 0 {
		sb.WriteByte('\n')
		sb.WriteString(dimStyle.Render("  Nothing is about to expire"))
		sb.WriteByte('\n')
		sb.WriteString(m.renderStatusLine())
		return sb.String()
	}

	header := fmt.Sprintf("  %-9s %-24s %-12s %-14s %s", "Severity", "Item", "Category", "Expires", "Status")
	sb.WriteString(dimStyle.Render(header))
	sb.WriteByte('\n')
	sb.WriteString(dimStyle.Render("  " + strings.Repeat("─", 72)))
	sb.WriteByte('\n')

	start, end := visibleRange(m.alertCursor, len(active), m.height-6)
	for i := start; i < end; i++ {
		a := active[i]
		line := formatAlertRow(a)
		if i == m.alertCursor {
			line = selectedStyle.Render(stripAnsi(line))
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	sb.WriteString(m.renderStatusLine())
	return sb.String()
}

func formatAlertRow(a alerts.Alert) string {
	sev := severityStyle(a.Severity).Render(fmt.Sprintf("%-9s", strings.ToUpper(string(a.Severity))))
	return fmt.Sprintf("  %s %-24s %-12s %-14s %s",
		sev,
		truncate(a.ItemName, 24),
		truncate(a.Category, 12),
		alerts.RelativeDays(a.DaysUntilExpiration),
		alertStatus(a),
	)
}

func alertStatus(a alerts.Alert) string {
	var parts []string
	if a.NotificationSent {
		parts = append(parts, "notified")
	}
	if a.Acknowledged {
		parts = append(parts, "ack")
	}
	if len(parts) == 0 {
		return "new"
	}
	return strings.Join(parts, ", ")
}

func (m Model) renderStatusLine() string {
	var parts []string
	if m.statusMessage != "" {
		parts = append(parts, m.statusMessage)
	}
	if m.checker != nil {
		if at, _ := m.checker.LastCheck(); !at.IsZero() {
			parts = append(parts, "last check "+at.Format(time.Kitchen))
		}
	}
	if m.engine != nil {
		if n := m.engine.PendingWrites(); n > 0 {
			parts = append(parts, fmt.Sprintf("%d writes pending", n))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "\n" + statusBarStyle.Render("  "+strings.Join(parts, " · "))
}
