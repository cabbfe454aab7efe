package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Storage       StorageConfig
	Checks        ChecksConfig
	Inventory     InventoryConfig
	Notifications NotificationConfig
	Logging       LoggingConfig
	Display       DisplayConfig
	Preferences   PreferencesConfig
}

type StorageConfig struct {
	DBPath        string `toml:"db_path"`
	RetentionDays int    `toml:"retention_days"`
}

type ChecksConfig struct {
	IntervalMinutes      int `toml:"interval_minutes"`
	CleanupIntervalHours int `toml:"cleanup_interval_hours"`
}

type InventoryConfig struct {
	Path string `toml:"path"`
}

type NotificationConfig struct {
	SystemNotify   bool   `toml:"system_notify"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	AppName        string `toml:"app_name"`
}

type LoggingConfig struct {
	Dir   string `toml:"dir"`
	Level string `toml:"level"`
}

type DisplayConfig struct {
	RefreshRateMS int `toml:"refresh_rate_ms"`
}

// PreferencesConfig seeds the stored alert preferences. A nil field means the
// key was absent and the stored value is kept.
type PreferencesConfig struct {
	Enabled            *bool    `toml:"enabled"`
	PushNotifications  *bool    `toml:"push_notifications"`
	EmailNotifications *bool    `toml:"email_notifications"`
	ReminderDays       *int     `toml:"reminder_days"`
	WarningDays        *int     `toml:"warning_days"`
	CriticalDays       *int     `toml:"critical_days"`
	MaxAlertsPerDay    *int     `toml:"max_alerts_per_day"`
	SnoozeDefaultHours *float64 `toml:"snooze_default_hours"`
	QuietHours         *bool    `toml:"quiet_hours"`
	QuietStart         *string  `toml:"quiet_start"`
	QuietEnd           *string  `toml:"quiet_end"`
}

// IsZero reports whether no preference key was set.
func (p PreferencesConfig) IsZero() bool {
	return p == PreferencesConfig{}
}

type LoadResult struct {
	Config   Config
	Warnings []string
}

var knownTopLevel = map[string]bool{
	"storage":       true,
	"checks":        true,
	"inventory":     true,
	"notifications": true,
	"logging":       true,
	"display":       true,
	"preferences":   true,
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pantry-alerts", "config.toml")
}

// DefaultPath returns the config file location used by Load.
func DefaultPath() string {
	return defaultConfigPath()
}

func Load() (*LoadResult, error) {
	return LoadFrom(defaultConfigPath())
}

// LoadFrom reads the config at path. A missing file yields the defaults.
func LoadFrom(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &LoadResult{Config: DefaultConfig()}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	result, err := parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return result, nil
}

func LoadFromString(data string) (*LoadResult, error) {
	if data == "" {
		return &LoadResult{Config: DefaultConfig()}, nil
	}
	result, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return result, nil
}

func parse(data string) (*LoadResult, error) {
	result := &LoadResult{Config: DefaultConfig()}

	var raw map[string]any
	if _, err := toml.Decode(data, &raw); err != nil {
		return nil, err
	}

	for key := range raw {
		if !knownTopLevel[key] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("unknown config key: %q", key))
		}
	}

	var tf tomlFile
	if _, err := toml.Decode(data, &tf); err != nil {
		return nil, err
	}

	mergeFromRaw(&result.Config, &tf, raw)

	if err := validate(&result.Config); err != nil {
		return nil, err
	}
	return result, nil
}

type tomlFile struct {
	Storage       *StorageConfig      `toml:"storage"`
	Checks        *ChecksConfig       `toml:"checks"`
	Inventory     *InventoryConfig    `toml:"inventory"`
	Notifications *NotificationConfig `toml:"notifications"`
	Logging       *LoggingConfig      `toml:"logging"`
	Display       *DisplayConfig      `toml:"display"`
	Preferences   *PreferencesConfig  `toml:"preferences"`
}

// mergeFromRaw copies only the keys present in the file, so omitted keys
// keep their defaults even when the zero value would be valid.
func mergeFromRaw(cfg *Config, tf *tomlFile, raw map[string]any) {
	if tf.Storage != nil {
		if section, ok := rawSection(raw, "storage"); ok {
			if _, exists := section["db_path"]; exists {
				cfg.Storage.DBPath = tf.Storage.DBPath
			}
			if _, exists := section["retention_days"]; exists {
				cfg.Storage.RetentionDays = tf.Storage.RetentionDays
			}
		}
	}
	if tf.Checks != nil {
		if section, ok := rawSection(raw, "checks"); ok {
			if _, exists := section["interval_minutes"]; exists {
				cfg.Checks.IntervalMinutes = tf.Checks.IntervalMinutes
			}
			if _, exists := section["cleanup_interval_hours"]; exists {
				cfg.Checks.CleanupIntervalHours = tf.Checks.CleanupIntervalHours
			}
		}
	}
	if tf.Inventory != nil {
		if section, ok := rawSection(raw, "inventory"); ok {
			if _, exists := section["path"]; exists {
				cfg.Inventory.Path = tf.Inventory.Path
			}
		}
	}
	if tf.Notifications != nil {
		if section, ok := rawSection(raw, "notifications"); ok {
			if _, exists := section["system_notify"]; exists {
				cfg.Notifications.SystemNotify = tf.Notifications.SystemNotify
			}
			if _, exists := section["timeout_seconds"]; exists {
				cfg.Notifications.TimeoutSeconds = tf.Notifications.TimeoutSeconds
			}
			if _, exists := section["app_name"]; exists {
				cfg.Notifications.AppName = tf.Notifications.AppName
			}
		}
	}
	if tf.Logging != nil {
		if section, ok := rawSection(raw, "logging"); ok {
			if _, exists := section["dir"]; exists {
				cfg.Logging.Dir = tf.Logging.Dir
			}
			if _, exists := section["level"]; exists {
				cfg.Logging.Level = strings.ToLower(tf.Logging.Level)
			}
		}
	}
	if tf.Display != nil {
		if section, ok := rawSection(raw, "display"); ok {
			if _, exists := section["refresh_rate_ms"]; exists {
				cfg.Display.RefreshRateMS = tf.Display.RefreshRateMS
			}
		}
	}
	// Preference fields are pointers, so absent keys already decode to nil.
	if tf.Preferences != nil {
		cfg.Preferences = *tf.Preferences
	}
}

func rawSection(raw map[string]any, key string) (map[string]any, bool) {
	v, ok := raw[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

func validate(cfg *Config) error {
	var errs []string

	if cfg.Storage.RetentionDays <= 0 {
		errs = append(errs, fmt.Sprintf("storage retention_days must be positive, got %d", cfg.Storage.RetentionDays))
	}

	if cfg.Checks.IntervalMinutes < 1 {
		errs = append(errs, fmt.Sprintf("checks interval_minutes must be positive, got %d", cfg.Checks.IntervalMinutes))
	}
	if cfg.Checks.CleanupIntervalHours < 1 {
		errs = append(errs, fmt.Sprintf("checks cleanup_interval_hours must be positive, got %d", cfg.Checks.CleanupIntervalHours))
	}

	if cfg.Notifications.TimeoutSeconds < 1 {
		errs = append(errs, fmt.Sprintf("notifications timeout_seconds must be positive, got %d", cfg.Notifications.TimeoutSeconds))
	}
	if strings.TrimSpace(cfg.Notifications.AppName) == "" {
		errs = append(errs, "notifications app_name must not be empty")
	}

	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging level must be one of debug, info, warn, error, got %q", cfg.Logging.Level))
	}

	if cfg.Display.RefreshRateMS < 1 {
		errs = append(errs, fmt.Sprintf("refresh_rate_ms must be positive, got %d", cfg.Display.RefreshRateMS))
	}

	prefs := cfg.Preferences
	if prefs.MaxAlertsPerDay != nil && *prefs.MaxAlertsPerDay < 0 {
		errs = append(errs, fmt.Sprintf("preferences max_alerts_per_day must not be negative, got %d", *prefs.MaxAlertsPerDay))
	}
	if prefs.SnoozeDefaultHours != nil && *prefs.SnoozeDefaultHours <= 0 {
		errs = append(errs, fmt.Sprintf("preferences snooze_default_hours must be positive, got %g", *prefs.SnoozeDefaultHours))
	}
	quiet := []struct {
		key   string
		value *string
	}{
		{"quiet_start", prefs.QuietStart},
		{"quiet_end", prefs.QuietEnd},
	}
	for _, q := range quiet {
		if q.value == nil {
			continue
		}
		if _, err := time.Parse("15:04", *q.value); err != nil {
			errs = append(errs, fmt.Sprintf("preferences %s must be HH:MM, got %q", q.key, *q.value))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation error: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
