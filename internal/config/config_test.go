package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigParser_Defaults(t *testing.T) {
	result, err := LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("expected no error for missing config file, got: %v", err)
	}

	cfg := result.Config

	if cfg.Storage.DBPath != "~/.local/share/pantry-alerts/alerts.db" {
		t.Errorf("default db_path: got %s", cfg.Storage.DBPath)
	}
	if cfg.Storage.RetentionDays != 30 {
		t.Errorf("default retention_days: want 30, got %d", cfg.Storage.RetentionDays)
	}
	if cfg.Checks.IntervalMinutes != 60 {
		t.Errorf("default interval_minutes: want 60, got %d", cfg.Checks.IntervalMinutes)
	}
	if cfg.Checks.CleanupIntervalHours != 24 {
		t.Errorf("default cleanup_interval_hours: want 24, got %d", cfg.Checks.CleanupIntervalHours)
	}
	if !cfg.Notifications.SystemNotify {
		t.Error("default system_notify: want true, got false")
	}
	if cfg.Notifications.TimeoutSeconds != 5 {
		t.Errorf("default timeout_seconds: want 5, got %d", cfg.Notifications.TimeoutSeconds)
	}
	if cfg.Notifications.AppName != "pantry-alerts" {
		t.Errorf("default app_name: want pantry-alerts, got %s", cfg.Notifications.AppName)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default level: want info, got %s", cfg.Logging.Level)
	}
	if cfg.Display.RefreshRateMS != 1000 {
		t.Errorf("default refresh_rate_ms: want 1000, got %d", cfg.Display.RefreshRateMS)
	}

	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings for missing file, got %v", result.Warnings)
	}
}

func TestConfigParser_PartialConfig(t *testing.T) {
	tomlData := `
[checks]
interval_minutes = 15

[notifications]
system_notify = false
`
	result, err := LoadFromString(tomlData)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := result.Config

	if cfg.Checks.IntervalMinutes != 15 {
		t.Errorf("interval_minutes: want 15, got %d", cfg.Checks.IntervalMinutes)
	}
	if cfg.Notifications.SystemNotify {
		t.Error("system_notify: want false, got true")
	}

	if cfg.Checks.CleanupIntervalHours != 24 {
		t.Errorf("cleanup_interval_hours default should be preserved: want 24, got %d", cfg.Checks.CleanupIntervalHours)
	}
	if cfg.Notifications.TimeoutSeconds != 5 {
		t.Errorf("timeout_seconds default should be preserved: want 5, got %d", cfg.Notifications.TimeoutSeconds)
	}
	if cfg.Storage.RetentionDays != 30 {
		t.Errorf("retention_days default should be preserved: want 30, got %d", cfg.Storage.RetentionDays)
	}
}

func TestConfigParser_EmptyDBPathMeansInMemory(t *testing.T) {
	result, err := LoadFromString(`
[storage]
db_path = ""
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Config.Storage.DBPath != "" {
		t.Errorf("db_path: want empty, got %q", result.Config.Storage.DBPath)
	}
}

func TestConfigParser_LevelIsCaseInsensitive(t *testing.T) {
	result, err := LoadFromString(`
[logging]
level = "DEBUG"
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Config.Logging.Level != "debug" {
		t.Errorf("level: want debug, got %s", result.Config.Logging.Level)
	}
}

func TestConfigParser_InvalidValue(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{
			name: "zero retention_days",
			toml: `[storage]
retention_days = 0`,
		},
		{
			name: "negative interval_minutes",
			toml: `[checks]
interval_minutes = -5`,
		},
		{
			name: "zero cleanup_interval_hours",
			toml: `[checks]
cleanup_interval_hours = 0`,
		},
		{
			name: "zero timeout_seconds",
			toml: `[notifications]
timeout_seconds = 0`,
		},
		{
			name: "blank app_name",
			toml: `[notifications]
app_name = "  "`,
		},
		{
			name: "unknown log level",
			toml: `[logging]
level = "verbose"`,
		},
		{
			name: "zero refresh_rate_ms",
			toml: `[display]
refresh_rate_ms = 0`,
		},
		{
			name: "negative max_alerts_per_day",
			toml: `[preferences]
max_alerts_per_day = -1`,
		},
		{
			name: "zero snooze_default_hours",
			toml: `[preferences]
snooze_default_hours = 0.0`,
		},
		{
			name: "malformed quiet_start",
			toml: `[preferences]
quiet_start = "10pm"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromString(tt.toml)
			if err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestConfigParser_Preferences(t *testing.T) {
	result, err := LoadFromString(`
[preferences]
quiet_hours = true
quiet_start = "23:00"
warning_days = 5
snooze_default_hours = 1.5
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("preferences must be a known section, got warnings %v", result.Warnings)
	}

	p := result.Config.Preferences
	if p.QuietHours == nil || !*p.QuietHours {
		t.Errorf("quiet_hours: want true, got %v", p.QuietHours)
	}
	if p.QuietStart == nil || *p.QuietStart != "23:00" {
		t.Errorf("quiet_start: want 23:00, got %v", p.QuietStart)
	}
	if p.WarningDays == nil || *p.WarningDays != 5 {
		t.Errorf("warning_days: want 5, got %v", p.WarningDays)
	}
	if p.SnoozeDefaultHours == nil || *p.SnoozeDefaultHours != 1.5 {
		t.Errorf("snooze_default_hours: want 1.5, got %v", p.SnoozeDefaultHours)
	}
	if p.QuietEnd != nil || p.Enabled != nil || p.MaxAlertsPerDay != nil {
		t.Errorf("absent keys must stay nil, got %+v", p)
	}
}

func TestConfigParser_NoPreferencesSection(t *testing.T) {
	result, err := LoadFromString("[checks]\ninterval_minutes = 5\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Config.Preferences.IsZero() {
		t.Errorf("preferences: want zero, got %+v", result.Config.Preferences)
	}
}

func TestConfigParser_AggregatesErrors(t *testing.T) {
	_, err := LoadFromString(`
[checks]
interval_minutes = 0
cleanup_interval_hours = 0
`)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	msg := err.Error()
	if !strings.Contains(msg, "interval_minutes") || !strings.Contains(msg, "cleanup_interval_hours") {
		t.Errorf("expected both errors in message, got %q", msg)
	}
}

func TestConfigParser_UnknownKey(t *testing.T) {
	tomlData := `
[checks]
interval_minutes = 30

[mysterious_section]
foo = "bar"
`
	result, err := LoadFromString(tomlData)
	if err != nil {
		t.Fatalf("unknown keys should not cause errors, got: %v", err)
	}

	found := false
	for _, w := range result.Warnings {
		if w == `unknown config key: "mysterious_section"` {
			found = true
		}
	}
	if !found {
		t.Errorf("expected warning for mysterious_section, got %v", result.Warnings)
	}
	if result.Config.Checks.IntervalMinutes != 30 {
		t.Errorf("known keys should still apply, got %d", result.Config.Checks.IntervalMinutes)
	}
}

func TestConfigParser_MalformedTOML(t *testing.T) {
	_, err := LoadFromString("[checks\ninterval_minutes = ")
	if err == nil {
		t.Error("expected parse error, got nil")
	}
}

func TestConfigParser_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
[storage]
db_path = "/tmp/pantry/alerts.db"
retention_days = 90

[inventory]
path = "/tmp/pantry/inventory.json"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	result, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if result.Config.Storage.DBPath != "/tmp/pantry/alerts.db" {
		t.Errorf("db_path: got %s", result.Config.Storage.DBPath)
	}
	if result.Config.Storage.RetentionDays != 90 {
		t.Errorf("retention_days: want 90, got %d", result.Config.Storage.RetentionDays)
	}
	if result.Config.Inventory.Path != "/tmp/pantry/inventory.json" {
		t.Errorf("inventory path: got %s", result.Config.Inventory.Path)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := ExpandHome("~/data/alerts.db"); got != filepath.Join(home, "data", "alerts.db") {
		t.Errorf("ExpandHome: got %s", got)
	}
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path changed: %s", got)
	}
	if got := ExpandHome("~user/x"); got != "~user/x" {
		t.Errorf("~user form should be left alone, got %s", got)
	}
}
