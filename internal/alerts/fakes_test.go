package alerts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var errStoreDown = errors.New("store down")

// fakeStore is an in-memory Store with failure injection.
type fakeStore struct {
	mu        sync.Mutex
	alerts    map[string]Alert
	history   map[string]HistoryEntry
	prefs     *Preferences
	failLoad  bool
	failSave  bool
	failApply bool
	applied   []WriteOp
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		alerts:  make(map[string]Alert),
		history: make(map[string]HistoryEntry),
	}
}

func (s *fakeStore) LoadAlerts(ctx context.Context) ([]Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad {
		return nil, errStoreDown
	}
	out := make([]Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, a.clone())
	}
	return out, nil
}

func (s *fakeStore) LoadHistory(ctx context.Context) ([]HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad {
		return nil, errStoreDown
	}
	out := make([]HistoryEntry, 0, len(s.history))
	for _, h := range s.history {
		out = append(out, h)
	}
	return out, nil
}

func (s *fakeStore) Apply(ctx context.Context, ops []WriteOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failApply {
		return errStoreDown
	}
	for _, op := range ops {
		switch op.Kind {
		case OpUpsertAlert:
			s.alerts[op.Alert.ID] = op.Alert.clone()
		case OpAppendHistory:
			s.history[op.Entry.ID] = *op.Entry
		case OpDeleteAlert:
			delete(s.alerts, op.ID)
		case OpDeleteHistory:
			delete(s.history, op.ID)
		}
	}
	s.applied = append(s.applied, ops...)
	return nil
}

func (s *fakeStore) LoadPreferences(ctx context.Context) (*Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad {
		return nil, errStoreDown
	}
	if s.prefs == nil {
		return nil, nil
	}
	p := *s.prefs
	return &p, nil
}

func (s *fakeStore) SavePreferences(ctx context.Context, p Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errStoreDown
	}
	s.prefs = &p
	return nil
}

func (s *fakeStore) countOps(kind OpKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, op := range s.applied {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// fakeNotifier records every notification it is asked to show.
type fakeNotifier struct {
	available  bool
	perm       Permission
	grantOnAsk Permission
	showErr    error
	requests   int
	shown      []Notification
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{available: true, perm: PermissionGranted}
}

func (n *fakeNotifier) Available() bool        { return n.available }
func (n *fakeNotifier) Permission() Permission { return n.perm }

func (n *fakeNotifier) RequestPermission(ctx context.Context) (Permission, error) {
	n.requests++
	n.perm = n.grantOnAsk
	return n.perm, nil
}

func (n *fakeNotifier) Show(ctx context.Context, notif Notification) error {
	if n.showErr != nil {
		return n.showErr
	}
	n.shown = append(n.shown, notif)
	return nil
}

// fakeClock is a settable time source.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 6, 1, 8, 0, 0, 0, time.Local)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// seqIDs returns a deterministic id generator.
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

// daysFrom returns the civil date offset days from now's date.
func daysFrom(now time.Time, days int) *time.Time {
	y, m, d := now.Date()
	t := time.Date(y, m, d+days, 0, 0, 0, 0, time.UTC)
	return &t
}

func snapshot(id, name string, exp *time.Time) InventorySnapshot {
	return InventorySnapshot{ItemID: id, Name: name, Category: "Fridge", ExpirationDate: exp}
}

func newTestEngine(store Store, notifier Notifier, clock *fakeClock) *Engine {
	return NewEngine(context.Background(), store, notifier,
		WithClock(clock.Now),
		WithIDGenerator(seqIDs()),
	)
}

func ptr[T any](v T) *T { return &v }
