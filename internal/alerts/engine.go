package alerts

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRetentionDays is used by Cleanup when no positive window is given.
const DefaultRetentionDays = 30

// Engine owns the in-memory alert set and history. It reconciles inventory
// snapshots into alerts, dispatches notifications for new ones, and exposes
// the lifecycle operations. All methods are safe for concurrent use; a single
// mutex serializes reconciliation, dispatch and lifecycle changes.
//
// The in-memory copy is authoritative. Writes that fail are queued and
// retried on the next reconciliation pass or the next write.
type Engine struct {
	mu sync.Mutex

	store      Store
	dispatcher *Dispatcher

	prefs   Preferences
	alerts  map[string]*Alert
	active  map[activeKey]string
	history []HistoryEntry

	pending    []WriteOp
	prefsDirty bool
	degraded   bool
	loadFailed bool

	now             func() time.Time
	newID           func() string
	logger          *zap.Logger
	dispatchTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithIDGenerator overrides how alert and history ids are generated.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithDispatchTimeout bounds each platform notification call.
func WithDispatchTimeout(d time.Duration) Option {
	return func(e *Engine) { e.dispatchTimeout = d }
}

// NewEngine builds an engine and loads preferences, alerts and history from
// store before returning. A nil store keeps everything in memory. If loading
// fails the engine starts from what it could read and reports Degraded.
func NewEngine(ctx context.Context, store Store, notifier Notifier, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		prefs:  DefaultPreferences(),
		alerts: make(map[string]*Alert),
		active: make(map[activeKey]string),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.dispatcher = NewDispatcher(notifier, e.dispatchTimeout, e.logger)

	if store != nil {
		e.load(ctx)
	}
	return e
}

func (e *Engine) load(ctx context.Context) {
	prefs, err := e.store.LoadPreferences(ctx)
	switch {
	case err != nil:
		e.logger.Warn("preferences_load_failed", zap.Error(err))
		e.loadFailed = true
	case prefs != nil:
		e.prefs = *prefs
	}

	loaded, err := e.store.LoadAlerts(ctx)
	if err != nil {
		e.logger.Warn("alerts_load_failed", zap.Error(err))
		e.loadFailed = true
	}
	sort.SliceStable(loaded, func(i, j int) bool {
		return loaded[i].CreatedAt.Before(loaded[j].CreatedAt)
	})
	for i := range loaded {
		a := loaded[i].clone()
		e.alerts[a.ID] = &a
		if a.Dismissed() {
			continue
		}
		if prev, ok := e.active[a.activeKey()]; ok {
			e.logger.Warn("duplicate_active_alert",
				zap.String("alert_id", a.ID),
				zap.String("kept_alert_id", prev),
				zap.String("item_id", a.ItemID),
				zap.String("severity", string(a.Severity)),
			)
			continue
		}
		e.active[a.activeKey()] = a.ID
	}

	history, err := e.store.LoadHistory(ctx)
	if err != nil {
		e.logger.Warn("history_load_failed", zap.Error(err))
		e.loadFailed = true
	}
	sort.Slice(history, func(i, j int) bool {
		if !history[i].Timestamp.Equal(history[j].Timestamp) {
			return history[i].Timestamp.Before(history[j].Timestamp)
		}
		return history[i].ID < history[j].ID
	})
	e.history = history

	e.logger.Info("engine_loaded",
		zap.Int("alerts", len(e.alerts)),
		zap.Int("history", len(e.history)),
		zap.Bool("load_failed", e.loadFailed),
	)
}

// CheckResult summarizes one reconciliation pass.
type CheckResult struct {
	// Created holds copies of the alerts created in this pass.
	Created []Alert
	// Updated counts existing alerts whose remaining days changed.
	Updated int
	// Snoozed counts snapshots skipped because their alert is snoozed.
	Snoozed int
	// Ignored counts snapshots with no expiration or too far out to alert.
	Ignored  int
	Dispatch DispatchResult
}

// CheckExpirations reconciles snapshots against the alert set and dispatches
// notifications for any alerts it creates. Reconciliation and dispatch run as
// one step under the engine lock.
func (e *Engine) CheckExpirations(ctx context.Context, snapshots []InventorySnapshot) CheckResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	var res CheckResult
	e.flushPending(ctx)

	if !e.prefs.Enabled {
		res.Ignored = len(snapshots)
		res.Dispatch.Suppressed = SuppressEmptyBatch
		return res
	}

	now := e.now()
	th := e.prefs.Thresholds()
	var ops []WriteOp

	for _, snap := range snapshots {
		if snap.ExpirationDate == nil {
			res.Ignored++
			continue
		}
		expiration := CivilDate(*snap.ExpirationDate)
		days := DaysUntil(expiration, now)
		sev, ok := Classify(days, th)
		if !ok {
			res.Ignored++
			continue
		}

		key := activeKey{itemID: snap.ItemID, severity: sev}
		if id, found := e.active[key]; found {
			a := e.alerts[id]
			if a.SnoozedAt(now) {
				res.Snoozed++
				continue
			}
			if a.DaysUntilExpiration != days || !a.ExpirationDate.Equal(expiration) {
				a.DaysUntilExpiration = days
				a.ExpirationDate = expiration
				ops = append(ops, upsertOp(a))
				res.Updated++
			}
			continue
		}

		a := &Alert{
			ID:                  e.newID(),
			ItemID:              snap.ItemID,
			ItemName:            snap.Name,
			Category:            snap.Category,
			ExpirationDate:      expiration,
			DaysUntilExpiration: days,
			Severity:            sev,
			CreatedAt:           now,
		}
		e.alerts[a.ID] = a
		e.active[key] = a.ID
		ops = append(ops, upsertOp(a))
		res.Created = append(res.Created, a.clone())

		e.logger.Info("alert_created",
			zap.String("alert_id", a.ID),
			zap.String("item_id", a.ItemID),
			zap.String("severity", string(a.Severity)),
			zap.Int("days_until_expiration", days),
		)
	}

	e.persist(ctx, ops)
	res.Dispatch = e.dispatchLocked(ctx, res.Created)

	// Created reflects the post-dispatch state.
	for i := range res.Created {
		if a, ok := e.alerts[res.Created[i].ID]; ok {
			res.Created[i] = a.clone()
		}
	}
	return res
}

// Dispatch sends notifications for alerts subject to the batch gates.
// Alerts that are unknown, dismissed or already notified are skipped.
func (e *Engine) Dispatch(ctx context.Context, batch []Alert) DispatchResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatchLocked(ctx, batch)
}

func (e *Engine) dispatchLocked(ctx context.Context, batch []Alert) DispatchResult {
	var res DispatchResult
	if len(batch) == 0 {
		res.Suppressed = SuppressEmptyBatch
		return res
	}

	now := e.now()
	res.Suppressed = e.dispatcher.Gate(ctx, e.prefs, now, e.sentOn(now))
	if res.Suppressed != SuppressNone {
		e.logger.Info("dispatch_suppressed",
			zap.String("reason", string(res.Suppressed)),
			zap.Int("batch", len(batch)),
		)
		return res
	}

	var ops []WriteOp
	for _, b := range batch {
		a, ok := e.alerts[b.ID]
		if !ok || a.Dismissed() || a.NotificationSent {
			continue
		}
		title, err := e.dispatcher.Send(ctx, *a)
		if err != nil {
			res.Failed++
			e.logger.Warn("notification_failed", zap.String("alert_id", a.ID), zap.Error(err))
			continue
		}
		a.NotificationSent = true
		ops = append(ops, upsertOp(a))
		ops = append(ops, e.record(a.ID, ActionSent, title, e.now()))
		res.Sent++
	}
	e.persist(ctx, ops)
	return res
}

// sentOn counts Sent history entries on now's calendar day.
func (e *Engine) sentOn(now time.Time) int {
	n := 0
	for _, h := range e.history {
		if h.Action == ActionSent && sameDay(h.Timestamp, now, now.Location()) {
			n++
		}
	}
	return n
}

// Acknowledge marks an alert as seen and lifts any snooze. It returns false
// if the id is unknown or the alert is dismissed.
func (e *Engine) Acknowledge(ctx context.Context, id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.mutable(id)
	if !ok {
		return false
	}
	a.Acknowledged = true
	a.SnoozedUntil = nil
	e.persist(ctx, []WriteOp{upsertOp(a), e.record(id, ActionAcknowledged, "", e.now())})
	return true
}

// Snooze suppresses an alert for the preferred default duration.
func (e *Engine) Snooze(ctx context.Context, id string) bool {
	return e.SnoozeFor(ctx, id, 0)
}

// SnoozeFor suppresses an alert for hours, which may be fractional.
// A non-positive value falls back to the preferred default duration.
func (e *Engine) SnoozeFor(ctx context.Context, id string, hours float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.mutable(id)
	if !ok {
		return false
	}
	if hours <= 0 {
		hours = e.prefs.SnoozeDefaultHours
	}
	now := e.now()
	until := now.Add(time.Duration(hours * float64(time.Hour)))
	a.SnoozedUntil = &until

	details := "snoozed for " + strconv.FormatFloat(hours, 'f', -1, 64) + " hours"
	e.persist(ctx, []WriteOp{upsertOp(a), e.record(id, ActionSnoozed, details, now)})
	return true
}

// Dismiss permanently retires an alert. A later pass that still classifies
// the item creates a fresh alert with a new id.
func (e *Engine) Dismiss(ctx context.Context, id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.mutable(id)
	if !ok {
		return false
	}
	now := e.now()
	a.DismissedAt = &now
	delete(e.active, a.activeKey())
	e.persist(ctx, []WriteOp{upsertOp(a), e.record(id, ActionDismissed, "", now)})
	return true
}

// mutable returns the alert for id if it exists and is not dismissed.
func (e *Engine) mutable(id string) (*Alert, bool) {
	a, ok := e.alerts[id]
	if !ok || a.Dismissed() {
		e.logger.Debug("lifecycle_noop", zap.String("alert_id", id), zap.Bool("known", ok))
		return nil, false
	}
	return a, true
}

// Alert returns a copy of the alert with the given id.
func (e *Engine) Alert(id string) (Alert, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.alerts[id]
	if !ok {
		return Alert{}, false
	}
	return a.clone(), true
}

// ActiveAlerts returns alerts that are neither dismissed nor currently
// snoozed, most urgent first: priority descending, then remaining days
// ascending.
func (e *Engine) ActiveAlerts() []Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	out := make([]Alert, 0, len(e.active))
	for _, a := range e.alerts {
		if a.Dismissed() || a.SnoozedAt(now) {
			continue
		}
		out = append(out, a.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := priorityRank(out[i].Priority()), priorityRank(out[j].Priority())
		if pi != pj {
			return pi > pj
		}
		if out[i].DaysUntilExpiration != out[j].DaysUntilExpiration {
			return out[i].DaysUntilExpiration < out[j].DaysUntilExpiration
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// History returns history entries newest first, ties broken by id.
// limit <= 0 returns all.
func (e *Engine) History(limit int) []HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]HistoryEntry, len(e.history))
	copy(out, e.history)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Stats aggregates counts over the retained alert set. Active includes
// snoozed alerts; Snoozed is the subset of those still suppressed.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	var s Stats
	for _, a := range e.alerts {
		if a.Acknowledged {
			s.Acknowledged++
		}
		if a.Dismissed() {
			s.Dismissed++
			continue
		}
		s.Active++
		if a.SnoozedAt(now) {
			s.Snoozed++
		}
		switch a.Severity {
		case SeverityExpired:
			s.Expired++
		case SeverityCritical:
			s.Critical++
		case SeverityWarning:
			s.Warning++
		case SeverityReminder:
			s.Reminder++
		}
	}
	return s
}

// Preferences returns the current preferences.
func (e *Engine) Preferences() Preferences {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prefs
}

// UpdatePreferences merges u into the current preferences and persists the
// result. The change takes effect in memory even if persisting fails; the
// save is retried on the next pass.
func (e *Engine) UpdatePreferences(ctx context.Context, u PreferencesUpdate) (Preferences, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.prefs = e.prefs.Merge(u)
	e.prefsDirty = true
	if err := e.flushPreferences(ctx); err != nil {
		return e.prefs, fmt.Errorf("saving preferences: %w", err)
	}
	return e.prefs, nil
}

// CleanupResult reports what a retention sweep removed.
type CleanupResult struct {
	AlertsRemoved  int
	HistoryRemoved int
}

// Cleanup drops alerts dismissed before the retention cutoff and history
// entries older than it. daysToKeep <= 0 uses DefaultRetentionDays.
func (e *Engine) Cleanup(ctx context.Context, daysToKeep int) CleanupResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if daysToKeep <= 0 {
		daysToKeep = DefaultRetentionDays
	}
	cutoff := e.now().AddDate(0, 0, -daysToKeep)

	var res CleanupResult
	var ops []WriteOp
	for id, a := range e.alerts {
		if a.DismissedAt != nil && a.DismissedAt.Before(cutoff) {
			delete(e.alerts, id)
			ops = append(ops, WriteOp{Kind: OpDeleteAlert, ID: id})
			res.AlertsRemoved++
		}
	}

	kept := e.history[:0]
	for _, h := range e.history {
		if h.Timestamp.Before(cutoff) {
			ops = append(ops, WriteOp{Kind: OpDeleteHistory, ID: h.ID})
			res.HistoryRemoved++
			continue
		}
		kept = append(kept, h)
	}
	e.history = kept

	e.persist(ctx, ops)
	e.logger.Info("retention_sweep",
		zap.Int("days_to_keep", daysToKeep),
		zap.Int("alerts_removed", res.AlertsRemoved),
		zap.Int("history_removed", res.HistoryRemoved),
	)
	return res
}

// Degraded reports whether the engine failed to load its state or is
// holding writes the store has not accepted yet.
func (e *Engine) Degraded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.degraded || e.loadFailed
}

// PendingWrites returns the number of queued write operations.
func (e *Engine) PendingWrites() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// record appends a history entry in memory and returns the op that persists it.
func (e *Engine) record(alertID string, action Action, details string, at time.Time) WriteOp {
	h := HistoryEntry{
		ID:        e.newID(),
		AlertID:   alertID,
		Action:    action,
		Timestamp: at,
		Details:   details,
	}
	e.history = append(e.history, h)
	return WriteOp{Kind: OpAppendHistory, Entry: &h}
}

func upsertOp(a *Alert) WriteOp {
	c := a.clone()
	return WriteOp{Kind: OpUpsertAlert, Alert: &c}
}

// persist queues ops and tries to flush the queue.
func (e *Engine) persist(ctx context.Context, ops []WriteOp) {
	if e.store == nil {
		return
	}
	e.pending = append(e.pending, ops...)
	e.flushPending(ctx)
}

// flushPending writes queued ops in one transaction and retries a pending
// preferences save. On failure the queue is kept for the next attempt.
func (e *Engine) flushPending(ctx context.Context) {
	if e.store == nil {
		return
	}
	if e.prefsDirty {
		_ = e.flushPreferences(ctx)
	}
	if len(e.pending) == 0 {
		return
	}
	if err := e.store.Apply(ctx, e.pending); err != nil {
		e.degraded = true
		e.logger.Warn("store_write_failed",
			zap.Int("pending_ops", len(e.pending)),
			zap.Error(err),
		)
		return
	}
	e.pending = nil
	e.degraded = e.prefsDirty
}

func (e *Engine) flushPreferences(ctx context.Context) error {
	if e.store == nil {
		e.prefsDirty = false
		return nil
	}
	if err := e.store.SavePreferences(ctx, e.prefs); err != nil {
		e.degraded = true
		e.logger.Warn("preferences_save_failed", zap.Error(err))
		return err
	}
	e.prefsDirty = false
	e.degraded = len(e.pending) > 0
	return nil
}
