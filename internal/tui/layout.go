package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/pantry-alerts/internal/alerts"
)

const appTitle = " pantry-alerts"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("69"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	expiredStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	criticalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	reminderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))
)

func severityStyle(s alerts.Severity) lipgloss.Style {
	switch s {
	case alerts.SeverityExpired:
		return expiredStyle
	case alerts.SeverityCritical:
		return criticalStyle
	case alerts.SeverityWarning:
		return warningStyle
	default:
		return reminderStyle
	}
}

// renderHeader draws the full-width title bar with the view label on the
// left and help text on the right.
func (m Model) renderHeader(help string) string {
	viewLabel := " [" + m.view.String() + "]"
	indicators := m.headerIndicators()
	padding := m.width - lipgloss.Width(appTitle) - lipgloss.Width(viewLabel) - lipgloss.Width(indicators) - lipgloss.Width(help)
	if padding < 0 {
		padding = 0
	}
	return headerStyle.Width(m.width).Render(
		appTitle + viewLabel + indicators + strings.Repeat(" ", padding) + help)
}

// visibleRange returns the [start, end) window of n rows starting near pos
// that fits in height rows.
func visibleRange(pos, n, height int) (int, int) {
	if height < 1 {
		height = 1
	}
	start := pos
	if start > n-height {
		start = n - height
	}
	if start < 0 {
		start = 0
	}
	end := start + height
	if end > n {
		end = n
	}
	return start, end
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripAnsi(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}
