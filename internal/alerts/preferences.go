package alerts

// QuietHours is a daily local-time window during which nothing is sent.
// StartTime and EndTime are 24-hour "HH:mm" strings.
type QuietHours struct {
	Enabled   bool   `json:"enabled"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Preferences holds the user-tunable alerting parameters.
//
// The classifier expects CriticalDays < WarningDays < ReminderDays. The
// ordering is not enforced; a non-monotonic ordering yields degenerate
// classification rather than an error.
type Preferences struct {
	Enabled                   bool       `json:"enabled"`
	PushNotificationsEnabled  bool       `json:"pushNotifications"`
	EmailNotificationsEnabled bool       `json:"emailNotifications"`
	ReminderDays              int        `json:"reminderDays"`
	WarningDays               int        `json:"warningDays"`
	CriticalDays              int        `json:"criticalDays"`
	QuietHours                QuietHours `json:"quietHours"`
	MaxAlertsPerDay           int        `json:"maxAlertsPerDay"`
	SnoozeDefaultHours        float64    `json:"snoozeDefaultHours"`
}

// DefaultPreferences returns the values used when nothing has been stored.
func DefaultPreferences() Preferences {
	return Preferences{
		Enabled:                   true,
		PushNotificationsEnabled:  true,
		EmailNotificationsEnabled: false,
		ReminderDays:              7,
		WarningDays:               3,
		CriticalDays:              1,
		QuietHours: QuietHours{
			Enabled:   false,
			StartTime: "22:00",
			EndTime:   "08:00",
		},
		MaxAlertsPerDay:    10,
		SnoozeDefaultHours: 24,
	}
}

// Thresholds returns the classifier thresholds carried by p.
func (p Preferences) Thresholds() Thresholds {
	return Thresholds{
		Reminder: p.ReminderDays,
		Warning:  p.WarningDays,
		Critical: p.CriticalDays,
	}
}

// PreferencesUpdate is a partial preferences change. Nil fields are left as is.
type PreferencesUpdate struct {
	Enabled                   *bool
	PushNotificationsEnabled  *bool
	EmailNotificationsEnabled *bool
	ReminderDays              *int
	WarningDays               *int
	CriticalDays              *int
	QuietHoursEnabled         *bool
	QuietHoursStart           *string
	QuietHoursEnd             *string
	MaxAlertsPerDay           *int
	SnoozeDefaultHours        *float64
}

// Merge returns p with every non-nil field of u applied.
func (p Preferences) Merge(u PreferencesUpdate) Preferences {
	if u.Enabled != nil {
		p.Enabled = *u.Enabled
	}
	if u.PushNotificationsEnabled != nil {
		p.PushNotificationsEnabled = *u.PushNotificationsEnabled
	}
	if u.EmailNotificationsEnabled != nil {
		p.EmailNotificationsEnabled = *u.EmailNotificationsEnabled
	}
	if u.ReminderDays != nil {
		p.ReminderDays = *u.ReminderDays
	}
	if u.WarningDays != nil {
		p.WarningDays = *u.WarningDays
	}
	if u.CriticalDays != nil {
		p.CriticalDays = *u.CriticalDays
	}
	if u.QuietHoursEnabled != nil {
		p.QuietHours.Enabled = *u.QuietHoursEnabled
	}
	if u.QuietHoursStart != nil {
		p.QuietHours.StartTime = *u.QuietHoursStart
	}
	if u.QuietHoursEnd != nil {
		p.QuietHours.EndTime = *u.QuietHoursEnd
	}
	if u.MaxAlertsPerDay != nil {
		p.MaxAlertsPerDay = *u.MaxAlertsPerDay
	}
	if u.SnoozeDefaultHours != nil {
		p.SnoozeDefaultHours = *u.SnoozeDefaultHours
	}
	return p
}
