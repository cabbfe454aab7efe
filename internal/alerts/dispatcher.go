package alerts

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultDispatchTimeout bounds a single platform Show call.
const DefaultDispatchTimeout = 5 * time.Second

// SuppressReason explains why a whole dispatch batch was not sent.
type SuppressReason string

// Batch suppression reasons. SuppressNone means the gates passed.
const (
	SuppressNone         SuppressReason = ""
	SuppressEmptyBatch   SuppressReason = "empty_batch"
	SuppressPushDisabled SuppressReason = "push_disabled"
	SuppressUnavailable  SuppressReason = "notifier_unavailable"
	SuppressQuietHours   SuppressReason = "quiet_hours"
	SuppressDailyCap     SuppressReason = "daily_cap"
	SuppressPermission   SuppressReason = "permission_denied"
)

// DispatchResult summarizes one dispatch batch.
type DispatchResult struct {
	Sent       int
	Failed     int
	Suppressed SuppressReason
}

// Dispatcher applies the batch gates and talks to the platform notifier.
// It holds no alert state; the engine records the outcome of each send.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher. A nil notifier makes every batch
// suppressed as unavailable.
func NewDispatcher(notifier Notifier, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{notifier: notifier, timeout: timeout, logger: logger}
}

// Gate evaluates the batch-level gates once. sentToday is the number of
// sends already recorded on now's calendar day. The cap is all-or-nothing:
// a batch is either entirely allowed or entirely suppressed.
func (d *Dispatcher) Gate(ctx context.Context, prefs Preferences, now time.Time, sentToday int) SuppressReason {
	if !prefs.PushNotificationsEnabled {
		return SuppressPushDisabled
	}
	if d.notifier == nil || !d.notifier.Available() {
		return SuppressUnavailable
	}
	if InQuietHours(prefs.QuietHours, now) {
		return SuppressQuietHours
	}
	if sentToday >= prefs.MaxAlertsPerDay {
		return SuppressDailyCap
	}

	perm := d.notifier.Permission()
	if perm == PermissionUndetermined {
		var err error
		perm, err = d.notifier.RequestPermission(ctx)
		if err != nil {
			d.logger.Warn("notification_permission_request_failed", zap.Error(err))
			return SuppressPermission
		}
	}
	if perm != PermissionGranted {
		return SuppressPermission
	}
	return SuppressNone
}

// Send shows the notification for a. It returns the title that was shown.
func (d *Dispatcher) Send(ctx context.Context, a Alert) (string, error) {
	title, body := FormatNotification(a)

	showCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.notifier.Show(showCtx, Notification{
		Title:              title,
		Body:               body,
		Tag:                NotificationTag(a.ID),
		RequireInteraction: a.Priority() == PriorityHigh,
	})
	return title, err
}
