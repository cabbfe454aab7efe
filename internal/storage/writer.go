package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nixlim/pantry-alerts/internal/alerts"
)

const dateLayout = "2006-01-02"

// timeLayout keeps every fractional digit so stored timestamps sort
// lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// alertRow is the alerts table layout.
type alertRow struct {
	ID                  string         `db:"id"`
	ItemID              string         `db:"item_id"`
	ItemName            string         `db:"item_name"`
	Category            string         `db:"category"`
	ExpirationDate      string         `db:"expiration_date"`
	DaysUntilExpiration int            `db:"days_until_expiration"`
	Severity            string         `db:"severity"`
	CreatedAt           string         `db:"created_at"`
	Acknowledged        int            `db:"acknowledged"`
	NotificationSent    int            `db:"notification_sent"`
	SnoozedUntil        sql.NullString `db:"snoozed_until"`
	DismissedAt         sql.NullString `db:"dismissed_at"`
}

// historyRow is the alert_history table layout.
type historyRow struct {
	ID        string `db:"id"`
	AlertID   string `db:"alert_id"`
	Action    string `db:"action"`
	Timestamp string `db:"timestamp"`
	Details   string `db:"details"`
}

func toAlertRow(a *alerts.Alert) alertRow {
	return alertRow{
		ID:                  a.ID,
		ItemID:              a.ItemID,
		ItemName:            a.ItemName,
		Category:            a.Category,
		ExpirationDate:      a.ExpirationDate.Format(dateLayout),
		DaysUntilExpiration: a.DaysUntilExpiration,
		Severity:            string(a.Severity),
		CreatedAt:           formatTime(a.CreatedAt),
		Acknowledged:        boolToInt(a.Acknowledged),
		NotificationSent:    boolToInt(a.NotificationSent),
		SnoozedUntil:        nullTime(a.SnoozedUntil),
		DismissedAt:         nullTime(a.DismissedAt),
	}
}

func (r alertRow) toAlert() (alerts.Alert, error) {
	exp, err := time.Parse(dateLayout, r.ExpirationDate)
	if err != nil {
		return alerts.Alert{}, fmt.Errorf("parsing expiration_date of alert %s: %w", r.ID, err)
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return alerts.Alert{}, fmt.Errorf("parsing created_at of alert %s: %w", r.ID, err)
	}
	snoozed, err := parseNullTime(r.SnoozedUntil)
	if err != nil {
		return alerts.Alert{}, fmt.Errorf("parsing snoozed_until of alert %s: %w", r.ID, err)
	}
	dismissed, err := parseNullTime(r.DismissedAt)
	if err != nil {
		return alerts.Alert{}, fmt.Errorf("parsing dismissed_at of alert %s: %w", r.ID, err)
	}

	return alerts.Alert{
		ID:                  r.ID,
		ItemID:              r.ItemID,
		ItemName:            r.ItemName,
		Category:            r.Category,
		ExpirationDate:      exp,
		DaysUntilExpiration: r.DaysUntilExpiration,
		Severity:            alerts.Severity(r.Severity),
		CreatedAt:           created,
		Acknowledged:        r.Acknowledged != 0,
		NotificationSent:    r.NotificationSent != 0,
		SnoozedUntil:        snoozed,
		DismissedAt:         dismissed,
	}, nil
}

func toHistoryRow(h *alerts.HistoryEntry) historyRow {
	return historyRow{
		ID:        h.ID,
		AlertID:   h.AlertID,
		Action:    string(h.Action),
		Timestamp: formatTime(h.Timestamp),
		Details:   h.Details,
	}
}

func (r historyRow) toEntry() (alerts.HistoryEntry, error) {
	ts, err := parseTime(r.Timestamp)
	if err != nil {
		return alerts.HistoryEntry{}, fmt.Errorf("parsing timestamp of history %s: %w", r.ID, err)
	}
	return alerts.HistoryEntry{
		ID:        r.ID,
		AlertID:   r.AlertID,
		Action:    alerts.Action(r.Action),
		Timestamp: ts,
		Details:   r.Details,
	}, nil
}

func (s *SQLiteStore) executeOp(ctx context.Context, tx *sqlx.Tx, op alerts.WriteOp) error {
	switch op.Kind {
	case alerts.OpUpsertAlert:
		return s.writeAlert(ctx, tx, toAlertRow(op.Alert))
	case alerts.OpAppendHistory:
		return s.writeHistory(ctx, tx, toHistoryRow(op.Entry))
	case alerts.OpDeleteAlert:
		_, err := tx.ExecContext(ctx, "DELETE FROM alerts WHERE id = ?", op.ID)
		return err
	case alerts.OpDeleteHistory:
		_, err := tx.ExecContext(ctx, "DELETE FROM alert_history WHERE id = ?", op.ID)
		return err
	default:
		return fmt.Errorf("unknown op kind: %s", op.Kind)
	}
}

func (s *SQLiteStore) writeAlert(ctx context.Context, tx *sqlx.Tx, row alertRow) error {
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO alerts (id, item_id, item_name, category, expiration_date,
			days_until_expiration, severity, created_at, acknowledged,
			notification_sent, snoozed_until, dismissed_at)
		VALUES (:id, :item_id, :item_name, :category, :expiration_date,
			:days_until_expiration, :severity, :created_at, :acknowledged,
			:notification_sent, :snoozed_until, :dismissed_at)
		ON CONFLICT(id) DO UPDATE SET
			item_name=excluded.item_name,
			category=excluded.category,
			expiration_date=excluded.expiration_date,
			days_until_expiration=excluded.days_until_expiration,
			severity=excluded.severity,
			acknowledged=excluded.acknowledged,
			notification_sent=excluded.notification_sent,
			snoozed_until=excluded.snoozed_until,
			dismissed_at=excluded.dismissed_at
	`, row)
	return err
}

// writeHistory ignores duplicate ids so a retried batch cannot double-append.
func (s *SQLiteStore) writeHistory(ctx context.Context, tx *sqlx.Tx, row historyRow) error {
	_, err := tx.NamedExecContext(ctx, `
		INSERT OR IGNORE INTO alert_history (id, alert_id, action, timestamp, details)
		VALUES (:id, :alert_id, :action, :timestamp, :details)
	`, row)
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
