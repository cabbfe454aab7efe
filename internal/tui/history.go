package tui

import (
	"fmt"
	"strings"

	"github.com/nixlim/pantry-alerts/internal/alerts"
)

// historyLimit bounds how many entries the history view pulls per render.
const historyLimit = 500

func (m Model) renderHistory() string {
	var sb strings.Builder

	sb.WriteString(m.renderHeader("↑/↓:Scroll  Tab:Stats  q:Quit "))
	sb.WriteByte('\n')

	var entries []alerts.HistoryEntry
	if m.engine != nil {
		entries = m.engine.History(historyLimit)
	}

	if len(entries) == 0 {
		sb.WriteByte('\n')
		sb.WriteString(dimStyle.Render("  No alert history yet"))
		sb.WriteByte('\n')
		if !m.isPersistent {
			sb.WriteString(dimStyle.Render("  persistence is disabled; history is lost on exit"))
			sb.WriteByte('\n')
		}
		return sb.String()
	}

	sb.WriteByte('\n')
	sb.WriteString(fmt.Sprintf("  %-16s %-13s %-24s %s", "When", "Action", "Item", "Details"))
	sb.WriteByte('\n')
	sb.WriteString(dimStyle.Render("  " + strings.Repeat("─", 72)))
	sb.WriteByte('\n')

	start, end := visibleRange(m.historyScrollPos, len(entries), m.height-5)
	for i := start; i < end; i++ {
		sb.WriteString(m.formatHistoryRow(entries[i]))
		sb.WriteByte('\n')
	}

	return sb.String()
}

func (m Model) formatHistoryRow(h alerts.HistoryEntry) string {
	item := h.AlertID
	action := string(h.Action)
	if a, ok := m.engine.Alert(h.AlertID); ok {
		item = a.ItemName
		action = severityStyle(a.Severity).Render(fmt.Sprintf("%-13s", action))
	} else {
		action = fmt.Sprintf("%-13s", action)
	}
	return fmt.Sprintf("  %-16s %s %-24s %s",
		h.Timestamp.Local().Format("2006-01-02 15:04"),
		action,
		truncate(item, 24),
		dimStyle.Render(truncate(h.Details, 40)),
	)
}
