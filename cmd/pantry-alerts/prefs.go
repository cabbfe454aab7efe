package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/nixlim/pantry-alerts/internal/alerts"
	"github.com/nixlim/pantry-alerts/internal/config"
)

// preferencesUpdate converts the [preferences] config section into an
// engine update. Keys absent from the file stay nil.
func preferencesUpdate(p config.PreferencesConfig) alerts.PreferencesUpdate {
	return alerts.PreferencesUpdate{
		Enabled:                   p.Enabled,
		PushNotificationsEnabled:  p.PushNotifications,
		EmailNotificationsEnabled: p.EmailNotifications,
		ReminderDays:              p.ReminderDays,
		WarningDays:               p.WarningDays,
		CriticalDays:              p.CriticalDays,
		QuietHoursEnabled:         p.QuietHours,
		QuietHoursStart:           p.QuietStart,
		QuietHoursEnd:             p.QuietEnd,
		MaxAlertsPerDay:           p.MaxAlertsPerDay,
		SnoozeDefaultHours:        p.SnoozeDefaultHours,
	}
}

// seedPreferences applies configured preference keys over the stored ones.
// Nothing is written when the config names no preferences.
func seedPreferences(ctx context.Context, engine *alerts.Engine, p config.PreferencesConfig, logger *zap.Logger) {
	if p.IsZero() {
		return
	}
	prefs, err := engine.UpdatePreferences(ctx, preferencesUpdate(p))
	if err != nil {
		logger.Warn("preferences_seed_not_persisted", zap.Error(err))
	}
	logger.Info("preferences_seeded_from_config",
		zap.Bool("enabled", prefs.Enabled),
		zap.Bool("quiet_hours", prefs.QuietHours.Enabled),
		zap.Int("max_alerts_per_day", prefs.MaxAlertsPerDay),
	)
}
