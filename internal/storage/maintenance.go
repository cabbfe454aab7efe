package storage

import (
	"context"
	"fmt"
	"time"
)

// VacuumInterval is how often callers should compact the database file.
const VacuumInterval = 7 * 24 * time.Hour

// Vacuumer is implemented by stores that can reclaim free pages.
type Vacuumer interface {
	Vacuum(ctx context.Context) error
}

// Vacuum rebuilds the database file to reclaim space left by retention
// deletes.
func (s *SQLiteStore) Vacuum(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

// Counter is implemented by stores that can report their row totals.
type Counter interface {
	Counts(ctx context.Context) (alertCount, historyCount int, err error)
}

// Counts returns the number of stored alerts and history entries.
func (s *SQLiteStore) Counts(ctx context.Context) (alertCount, historyCount int, err error) {
	if err := s.db.GetContext(ctx, &alertCount, "SELECT COUNT(*) FROM alerts"); err != nil {
		return 0, 0, fmt.Errorf("counting alerts: %w", err)
	}
	if err := s.db.GetContext(ctx, &historyCount, "SELECT COUNT(*) FROM alert_history"); err != nil {
		return 0, 0, fmt.Errorf("counting history: %w", err)
	}
	return alertCount, historyCount, nil
}
