package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/nixlim/pantry-alerts/internal/alerts"
)

// MemoryStore keeps alerts, history and preferences in process memory.
// It is the fallback when SQLite is unavailable and nothing survives a
// restart.
type MemoryStore struct {
	mu      sync.RWMutex
	alerts  map[string]alerts.Alert
	history map[string]alerts.HistoryEntry
	prefs   *alerts.Preferences
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		alerts:  make(map[string]alerts.Alert),
		history: make(map[string]alerts.HistoryEntry),
	}
}

func (m *MemoryStore) LoadAlerts(ctx context.Context) ([]alerts.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]alerts.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		out = append(out, copyAlert(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) LoadHistory(ctx context.Context) ([]alerts.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]alerts.HistoryEntry, 0, len(m.history))
	for _, h := range m.history {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Apply applies ops under one lock, so readers never see a partial batch.
func (m *MemoryStore) Apply(ctx context.Context, ops []alerts.WriteOp) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, op := range ops {
		switch op.Kind {
		case alerts.OpUpsertAlert:
			m.alerts[op.Alert.ID] = copyAlert(*op.Alert)
		case alerts.OpAppendHistory:
			if _, exists := m.history[op.Entry.ID]; !exists {
				m.history[op.Entry.ID] = *op.Entry
			}
		case alerts.OpDeleteAlert:
			delete(m.alerts, op.ID)
		case alerts.OpDeleteHistory:
			delete(m.history, op.ID)
		}
	}
	return nil
}

func (m *MemoryStore) LoadPreferences(ctx context.Context) (*alerts.Preferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.prefs == nil {
		return nil, nil
	}
	p := *m.prefs
	return &p, nil
}

func (m *MemoryStore) SavePreferences(ctx context.Context, p alerts.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = &p
	return nil
}

// Counts returns the number of held alerts and history entries.
func (m *MemoryStore) Counts(ctx context.Context) (alertCount, historyCount int, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.alerts), len(m.history), nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func copyAlert(a alerts.Alert) alerts.Alert {
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
