package alerts

import (
	"context"
	"time"
)

// Severity is the expiration tier of an alert.
type Severity string

// Alert severity constants, from least to most urgent.
const (
	SeverityReminder Severity = "reminder"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
	SeverityExpired  Severity = "expired"
)

// Severities lists every severity from most to least urgent.
var Severities = []Severity{SeverityExpired, SeverityCritical, SeverityWarning, SeverityReminder}

// Priority is derived from Severity and never stored on its own.
type Priority string

// Alert priority constants.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priority maps a severity to its fixed priority tier.
func (s Severity) Priority() Priority {
	switch s {
	case SeverityExpired, SeverityCritical:
		return PriorityHigh
	case SeverityWarning:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityReminder, SeverityWarning, SeverityCritical, SeverityExpired:
		return true
	}
	return false
}

func priorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// Action is the kind of event recorded in the alert history.
type Action string

// History action constants.
const (
	ActionSent         Action = "sent"
	ActionAcknowledged Action = "acknowledged"
	ActionSnoozed      Action = "snoozed"
	ActionDismissed    Action = "dismissed"
)

// InventorySnapshot is one perishable item as reported by the inventory.
// A nil ExpirationDate means the item has no known expiration and is ignored.
type InventorySnapshot struct {
	ItemID         string
	Name           string
	Category       string
	ExpirationDate *time.Time
}

// Alert is one (item, severity) expiration condition that needs attention.
type Alert struct {
	ID                  string
	ItemID              string
	ItemName            string
	Category            string
	ExpirationDate      time.Time
	DaysUntilExpiration int
	Severity            Severity
	CreatedAt           time.Time
	Acknowledged        bool
	NotificationSent    bool
	SnoozedUntil        *time.Time
	DismissedAt         *time.Time
}

// Priority returns the priority derived from the alert's severity.
func (a Alert) Priority() Priority {
	return a.Severity.Priority()
}

// Dismissed reports whether the alert has reached its terminal state.
func (a Alert) Dismissed() bool {
	return a.DismissedAt != nil
}

// SnoozedAt reports whether the alert is suppressed by a snooze at now.
func (a Alert) SnoozedAt(now time.Time) bool {
	return a.SnoozedUntil != nil && a.SnoozedUntil.After(now)
}

// clone returns a deep copy so callers never share pointers with engine state.
func (a Alert) clone() Alert {
	if a.SnoozedUntil != nil {
		t := *a.SnoozedUntil
		a.SnoozedUntil = &t
	}
	if a.DismissedAt != nil {
		t := *a.DismissedAt
		a.DismissedAt = &t
	}
	return a
}

// activeKey is the deduplication key for non-dismissed alerts.
type activeKey struct {
	itemID   string
	severity Severity
}

func (a Alert) activeKey() activeKey {
	return activeKey{itemID: a.ItemID, severity: a.Severity}
}

// HistoryEntry is an append-only record of something that happened to an alert.
type HistoryEntry struct {
	ID        string
	AlertID   string
	Action    Action
	Timestamp time.Time
	Details   string
}

// Stats aggregates counts over the retained alert set.
type Stats struct {
	Active       int
	Acknowledged int
	Snoozed      int
	Dismissed    int
	Expired      int
	Critical     int
	Warning      int
	Reminder     int
}

// BySeverity returns the active count for the given severity.
func (s Stats) BySeverity(sev Severity) int {
	switch sev {
	case SeverityExpired:
		return s.Expired
	case SeverityCritical:
		return s.Critical
	case SeverityWarning:
		return s.Warning
	case SeverityReminder:
		return s.Reminder
	}
	return 0
}

// OpKind identifies a persistence operation.
type OpKind string

// Write operation kinds.
const (
	OpUpsertAlert   OpKind = "upsertAlert"
	OpAppendHistory OpKind = "appendHistory"
	OpDeleteAlert   OpKind = "deleteAlert"
	OpDeleteHistory OpKind = "deleteHistory"
)

// WriteOp is a single mutation queued for the alert store. Exactly one of
// Alert, Entry or ID is set, depending on Kind.
type WriteOp struct {
	Kind  OpKind
	Alert *Alert
	Entry *HistoryEntry
	ID    string
}

// AlertStore persists alerts and their history.
type AlertStore interface {
	// LoadAlerts returns every stored alert, dismissed ones included.
	LoadAlerts(ctx context.Context) ([]Alert, error)

	// LoadHistory returns every stored history entry.
	LoadHistory(ctx context.Context) ([]HistoryEntry, error)

	// Apply writes ops atomically. Either all ops are applied or none.
	Apply(ctx context.Context, ops []WriteOp) error
}

// PreferenceStore persists the single preferences blob.
type PreferenceStore interface {
	// LoadPreferences returns nil, nil when nothing has been stored yet.
	LoadPreferences(ctx context.Context) (*Preferences, error)

	SavePreferences(ctx context.Context, p Preferences) error
}

// Store is the full persistence contract the engine depends on.
type Store interface {
	AlertStore
	PreferenceStore
}
