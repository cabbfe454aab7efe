package config

// DefaultConfig returns the configuration used when no file exists and the
// base that file values are merged over.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			DBPath:        "~/.local/share/pantry-alerts/alerts.db",
			RetentionDays: 30,
		},
		Checks: ChecksConfig{
			IntervalMinutes:      60,
			CleanupIntervalHours: 24,
		},
		Inventory: InventoryConfig{
			Path: "~/.config/pantry-alerts/inventory.json",
		},
		Notifications: NotificationConfig{
			SystemNotify:   true,
			TimeoutSeconds: 5,
			AppName:        "pantry-alerts",
		},
		Logging: LoggingConfig{
			Dir:   "~/.local/state/pantry-alerts",
			Level: "info",
		},
		Display: DisplayConfig{
			RefreshRateMS: 1000,
		},
	}
}
