package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/nixlim/pantry-alerts/internal/alerts"
)

// preferencesKey is the well-known row holding the preferences blob.
const preferencesKey = "alert_preferences"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("store closed")

// SQLiteStore persists alerts, history and preferences in SQLite.
// Every Apply call is a single transaction.
type SQLiteStore struct {
	db     *sqlx.DB
	logger *zap.Logger
	closed atomic.Bool
}

func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

// LoadAlerts returns every stored alert, oldest first. Rows that cannot be
// decoded are logged and skipped.
func (s *SQLiteStore) LoadAlerts(ctx context.Context) ([]alerts.Alert, error) {
	var rows []alertRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM alerts ORDER BY created_at, id"); err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}

	out := make([]alerts.Alert, 0, len(rows))
	for _, r := range rows {
		a, err := r.toAlert()
		if err != nil {
			s.logger.Warn("alert_row_skipped", zap.String("alert_id", r.ID), zap.Error(err))
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// LoadHistory returns every stored history entry, oldest first.
func (s *SQLiteStore) LoadHistory(ctx context.Context) ([]alerts.HistoryEntry, error) {
	var rows []historyRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM alert_history ORDER BY timestamp, id"); err != nil {
		return nil, fmt.Errorf("querying alert history: %w", err)
	}

	out := make([]alerts.HistoryEntry, 0, len(rows))
	for _, r := range rows {
		h, err := r.toEntry()
		if err != nil {
			s.logger.Warn("history_row_skipped", zap.String("history_id", r.ID), zap.Error(err))
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

// Apply writes ops in one transaction. Any failing op rolls back the batch.
func (s *SQLiteStore) Apply(ctx context.Context, ops []alerts.WriteOp) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if len(ops) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, op := range ops {
		if err := s.executeOp(ctx, tx, op); err != nil {
			return fmt.Errorf("executing %s op: %w", op.Kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// LoadPreferences returns the stored preferences, or nil if none were saved.
// Fields missing from the stored blob keep their default values.
func (s *SQLiteStore) LoadPreferences(ctx context.Context) (*alerts.Preferences, error) {
	value, err := s.preferenceValue(ctx, preferencesKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	prefs := alerts.DefaultPreferences()
	if err := json.Unmarshal([]byte(value), &prefs); err != nil {
		return nil, fmt.Errorf("decoding preferences: %w", err)
	}
	return &prefs, nil
}

func (s *SQLiteStore) preferenceValue(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM preferences WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading preference %s: %w", key, err)
	}
	return value, nil
}

// SavePreferences replaces the stored preferences blob.
func (s *SQLiteStore) SavePreferences(ctx context.Context, p alerts.Preferences) error {
	if s.closed.Load() {
		return ErrClosed
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
	`, preferencesKey, string(data), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	return nil
}

// Close closes the database. Later writes return ErrClosed.
func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
