package storage

import (
	"go.uber.org/zap"

	"github.com/nixlim/pantry-alerts/internal/alerts"
	"github.com/nixlim/pantry-alerts/internal/config"
)

// Store is the persistence contract plus lifecycle.
type Store interface {
	alerts.Store
	Close() error
}

// NewStore opens the SQLite store at cfg.DBPath. An empty path selects the
// in-memory store. If SQLite cannot be opened the in-memory store is used
// and isPersistent is false; this is not an error.
func NewStore(cfg config.StorageConfig, logger *zap.Logger) (Store, bool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DBPath == "" {
		return NewMemoryStore(), false, nil
	}

	dbPath := config.ExpandHome(cfg.DBPath)

	store, err := NewSQLiteStore(dbPath, logger)
	if err != nil {
		logger.Warn("sqlite_unavailable_using_memory",
			zap.String("db_path", dbPath),
			zap.Error(err),
		)
		return NewMemoryStore(), false, nil
	}

	return store, true, nil
}
