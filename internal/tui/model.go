package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/pantry-alerts/internal/alerts"
	"github.com/nixlim/pantry-alerts/internal/config"
	"github.com/nixlim/pantry-alerts/internal/storage"
)

type ViewState int

const (
	ViewAlerts ViewState = iota
	ViewHistory
	ViewStats
)

func (v ViewState) String() string {
	switch v {
	case ViewHistory:
		return "History"
	case ViewStats:
		return "Stats"
	default:
		return "Alerts"
	}
}

type tickMsg time.Time

// checkDoneMsg carries the outcome of an on-demand check.
type checkDoneMsg struct {
	result alerts.CheckResult
	err    error
}

// ShowAlertMsg asks the console to bring an alert into view, typically
// after its desktop notification was clicked. Tag is the notification tag.
type ShowAlertMsg struct {
	Tag string
}

// AlertService is the engine surface the console reads and acts on.
type AlertService interface {
	ActiveAlerts() []alerts.Alert
	Alert(id string) (alerts.Alert, bool)
	History(limit int) []alerts.HistoryEntry
	Stats() alerts.Stats
	Preferences() alerts.Preferences
	Acknowledge(ctx context.Context, id string) bool
	Snooze(ctx context.Context, id string) bool
	Dismiss(ctx context.Context, id string) bool
	Degraded() bool
	PendingWrites() int
}

// Checker runs reconciliation passes on demand.
type Checker interface {
	CheckNow(ctx context.Context) (alerts.CheckResult, error)
	LastCheck() (time.Time, alerts.CheckResult)
}

type Model struct {
	view     ViewState
	width    int
	height   int
	keys     KeyMap
	quitting bool

	cfg config.Config

	engine   AlertService
	checker  Checker
	activity storage.ActivityReporter

	alertCursor      int
	historyScrollPos int
	statsScrollPos   int

	statusMessage string
	checking      bool

	isPersistent bool

	refreshRate time.Duration

	onShutdown func()
}

func NewModel(cfg config.Config, opts ...ModelOption) Model {
	m := Model{
		view:        ViewAlerts,
		keys:        DefaultKeyMap(),
		cfg:         cfg,
		refreshRate: time.Duration(cfg.Display.RefreshRateMS) * time.Millisecond,
	}
	if m.refreshRate <= 0 {
		m.refreshRate = time.Second
	}

	for _, opt := range opts {
		opt(&m)
	}

	return m
}

type ModelOption func(*Model)

func WithAlertService(e AlertService) ModelOption {
	return func(m *Model) { m.engine = e }
}

func WithChecker(c Checker) ModelOption {
	return func(m *Model) { m.checker = c }
}

// WithActivityReporter enables the per-day table on the stats view.
func WithActivityReporter(a storage.ActivityReporter) ModelOption {
	return func(m *Model) { m.activity = a }
}

func WithStartView(v ViewState) ModelOption {
	return func(m *Model) { m.view = v }
}

func WithOnShutdown(fn func()) ModelOption {
	return func(m *Model) { m.onShutdown = fn }
}

func WithPersistenceFlag(isPersistent bool) ModelOption {
	return func(m *Model) { m.isPersistent = isPersistent }
}

func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) checkCmd() tea.Cmd {
	checker := m.checker
	return func() tea.Msg {
		res, err := checker.CheckNow(context.Background())
		return checkDoneMsg{result: res, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.clampCursor()
		return m, m.tickCmd()

	case checkDoneMsg:
		m.checking = false
		if msg.err != nil {
			m.statusMessage = "Check failed: " + msg.err.Error()
		} else {
			m.statusMessage = summarizeCheck(msg.result)
		}
		m.clampCursor()
		return m, nil

	case ShowAlertMsg:
		m.view = ViewAlerts
		for i, a := range m.getActiveAlerts() {
			if alerts.NotificationTag(a.ID) == msg.Tag {
				m.alertCursor = i
				break
			}
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.onShutdown != nil {
			m.onShutdown()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Tab):
		m.view = (m.view + 1) % 3
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.checker == nil || m.checking {
			return m, nil
		}
		m.checking = true
		m.statusMessage = "Checking inventory..."
		return m, m.checkCmd()
	}

	switch m.view {
	case ViewAlerts:
		return m.handleAlertsKey(msg)
	case ViewHistory:
		return m.handleHistoryKey(msg)
	case ViewStats:
		return m.handleStatsKey(msg)
	}

	return m, nil
}

func (m Model) handleAlertsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	active := m.getActiveAlerts()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.alertCursor > 0 {
			m.alertCursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.alertCursor < len(active)-1 {
			m.alertCursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Acknowledge):
		if a, ok := m.selectedAlert(active); ok {
			if m.engine.Acknowledge(context.Background(), a.ID) {
				m.statusMessage = "Acknowledged " + a.ItemName
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Snooze):
		if a, ok := m.selectedAlert(active); ok {
			if m.engine.Snooze(context.Background(), a.ID) {
				hours := m.engine.Preferences().SnoozeDefaultHours
				m.statusMessage = fmt.Sprintf("Snoozed %s for %s", a.ItemName, formatHours(hours))
			}
			m.clampCursor()
		}
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		if a, ok := m.selectedAlert(active); ok {
			if m.engine.Dismiss(context.Background(), a.ID) {
				m.statusMessage = "Dismissed " + a.ItemName
			}
			m.clampCursor()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.historyScrollPos > 0 {
			m.historyScrollPos--
		}
	case key.Matches(msg, m.keys.Down):
		m.historyScrollPos++
	}
	return m, nil
}

func (m Model) handleStatsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.statsScrollPos > 0 {
			m.statsScrollPos--
		}
	case key.Matches(msg, m.keys.Down):
		m.statsScrollPos++
	}
	return m, nil
}

func (m Model) getActiveAlerts() []alerts.Alert {
	if m.engine == nil {
		return nil
	}
	return m.engine.ActiveAlerts()
}

func (m Model) selectedAlert(active []alerts.Alert) (alerts.Alert, bool) {
	if m.engine == nil || m.alertCursor < 0 || m.alertCursor >= len(active) {
		return alerts.Alert{}, false
	}
	return active[m.alertCursor], true
}

// clampCursor keeps the cursor on a row after the list shrinks.
func (m *Model) clampCursor() {
	n := len(m.getActiveAlerts())
	if m.alertCursor >= n {
		m.alertCursor = n - 1
	}
	if m.alertCursor < 0 {
		m.alertCursor = 0
	}
}

func summarizeCheck(res alerts.CheckResult) string {
	msg := fmt.Sprintf("Check done: %d new, %d updated", len(res.Created), res.Updated)
	if res.Dispatch.Sent > 0 {
		msg += fmt.Sprintf(", %d notified", res.Dispatch.Sent)
	}
	if res.Dispatch.Suppressed != alerts.SuppressNone && res.Dispatch.Suppressed != alerts.SuppressEmptyBatch {
		msg += " (notifications suppressed: " + strings.ReplaceAll(string(res.Dispatch.Suppressed), "_", " ") + ")"
	}
	return msg
}

func formatHours(h float64) string {
	if h == float64(int(h)) {
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", int(h))
	}
	return fmt.Sprintf("%.1f hours", h)
}

func (m Model) headerIndicators() string {
	var parts []string
	if !m.isPersistent {
		parts = append(parts, "[No persistence]")
	}
	if m.engine != nil && m.engine.Degraded() {
		parts = append(parts, "[Degraded]")
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + dimStyle.Render(strings.Join(parts, " "))
}

func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var output string
	switch m.view {
	case ViewAlerts:
		output = m.renderAlerts()
	case ViewHistory:
		output = m.renderHistory()
	case ViewStats:
		output = m.renderStats()
	}

	if m.height > 0 {
		lines := strings.Split(output, "\n")
		if len(lines) > m.height {
			lines = lines[:m.height]
			output = strings.Join(lines, "\n")
		}
	}

	return output
}
