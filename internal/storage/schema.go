package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const currentSchemaVersion = 1

func OpenDB(dbPath string) (*sqlx.DB, error) {
	parentDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		return nil, fmt.Errorf("creating parent directories: %w", err)
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection keeps pragmas and transactions on one handle.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrateSchema(db, dbPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func migrateSchema(db *sqlx.DB, dbPath string) error {
	var tableName string
	err := db.Get(&tableName, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'")

	var currentVersion int
	if errors.Is(err, sql.ErrNoRows) {
		currentVersion = 0
	} else if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	} else {
		err = db.Get(&currentVersion, "SELECT version FROM schema_version LIMIT 1")
		if errors.Is(err, sql.ErrNoRows) {
			currentVersion = 0
		} else if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	if currentVersion > currentSchemaVersion {
		return fmt.Errorf(
			"database schema version %d is newer than this pantry-alerts version supports (max: %d); upgrade pantry-alerts or delete %s to start fresh",
			currentVersion, currentSchemaVersion, dbPath,
		)
	}

	if currentVersion < currentSchemaVersion {
		if err := applyMigrations(db, currentVersion); err != nil {
			return fmt.Errorf("applying migrations: %w", err)
		}
	}

	return nil
}

func applyMigrations(db *sqlx.DB, fromVersion int) error {
	if fromVersion == 0 {
		if err := migrateV0ToV1(db); err != nil {
			return fmt.Errorf("migration v0→v1: %w", err)
		}
	}

	return nil
}

var v1Statements = []struct {
	name string
	sql  string
}{
	{"schema_version table", `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)`},
	{"schema version", "INSERT INTO schema_version (version) VALUES (1)"},
	{"alerts table", `
		CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			item_id TEXT NOT NULL,
			item_name TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			expiration_date TEXT NOT NULL,
			days_until_expiration INTEGER NOT NULL,
			severity TEXT NOT NULL,
			created_at TEXT NOT NULL,
			acknowledged INTEGER NOT NULL DEFAULT 0,
			notification_sent INTEGER NOT NULL DEFAULT 0,
			snoozed_until TEXT,
			dismissed_at TEXT
		)`},
	{"alert_history table", `
		CREATE TABLE IF NOT EXISTS alert_history (
			id TEXT PRIMARY KEY,
			alert_id TEXT NOT NULL,
			action TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			details TEXT NOT NULL DEFAULT ''
		)`},
	{"preferences table", `
		CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`},
	{"idx_alerts_item", "CREATE INDEX IF NOT EXISTS idx_alerts_item ON alerts(item_id)"},
	{"idx_alerts_severity", "CREATE INDEX IF NOT EXISTS idx_alerts_severity ON alerts(severity)"},
	{"idx_alerts_created", "CREATE INDEX IF NOT EXISTS idx_alerts_created ON alerts(created_at)"},
	{"idx_history_alert", "CREATE INDEX IF NOT EXISTS idx_history_alert ON alert_history(alert_id)"},
	{"idx_history_ts", "CREATE INDEX IF NOT EXISTS idx_history_ts ON alert_history(timestamp)"},
}

func migrateV0ToV1(db *sqlx.DB) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range v1Statements {
		if _, err := tx.Exec(stmt.sql); err != nil {
			return fmt.Errorf("creating %s: %w", stmt.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
