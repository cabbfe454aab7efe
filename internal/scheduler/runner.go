// Package scheduler drives periodic expiration checks and retention cleanup.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nixlim/pantry-alerts/internal/alerts"
	"github.com/nixlim/pantry-alerts/internal/inventory"
	"github.com/nixlim/pantry-alerts/internal/storage"
)

// Engine is the part of *alerts.Engine the runner drives.
type Engine interface {
	CheckExpirations(ctx context.Context, snapshots []alerts.InventorySnapshot) alerts.CheckResult
	Cleanup(ctx context.Context, daysToKeep int) alerts.CleanupResult
}

// Options configures a Runner. Zero intervals disable the matching loop.
type Options struct {
	CheckInterval   time.Duration
	CleanupInterval time.Duration
	RetentionDays   int
	// Vacuumer, if set, is compacted at most once per storage.VacuumInterval
	// after a cleanup.
	Vacuumer storage.Vacuumer
	// OnCheck is called after every completed check pass.
	OnCheck func(alerts.CheckResult)
	Now     func() time.Time
}

// Runner runs checks on a ticker and on demand.
type Runner struct {
	logger *zap.Logger
	source inventory.Source
	engine Engine
	opts   Options

	mu         sync.Mutex
	lastCheck  time.Time
	lastResult alerts.CheckResult
	lastVacuum time.Time
}

func NewRunner(logger *zap.Logger, source inventory.Source, engine Engine, opts Options) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = alerts.DefaultRetentionDays
	}
	return &Runner{
		logger:     logger,
		source:     source,
		engine:     engine,
		opts:       opts,
		lastVacuum: opts.Now(),
	}
}

// Run does an immediate check and cleanup, then repeats each on its own
// ticker until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	_, _ = r.CheckNow(ctx)
	r.CleanupNow(ctx)

	var checkC, cleanupC <-chan time.Time
	if r.opts.CheckInterval > 0 {
		t := time.NewTicker(r.opts.CheckInterval)
		defer t.Stop()
		checkC = t.C
	} else {
		r.logger.Info("periodic_checks_disabled")
	}
	if r.opts.CleanupInterval > 0 {
		t := time.NewTicker(r.opts.CleanupInterval)
		defer t.Stop()
		cleanupC = t.C
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("scheduler_stopped")
			return nil
		case <-checkC:
			_, _ = r.CheckNow(ctx)
		case <-cleanupC:
			r.CleanupNow(ctx)
		}
	}
}

// CheckNow reads the inventory and runs one reconciliation pass. A source
// error skips the pass.
func (r *Runner) CheckNow(ctx context.Context) (alerts.CheckResult, error) {
	snaps, err := r.source.Snapshots(ctx)
	if err != nil {
		r.logger.Warn("inventory_read_failed", zap.Error(err))
		return alerts.CheckResult{}, fmt.Errorf("reading inventory: %w", err)
	}

	res := r.engine.CheckExpirations(ctx, snaps)

	r.mu.Lock()
	r.lastCheck = r.opts.Now()
	r.lastResult = res
	r.mu.Unlock()

	r.logger.Debug("check_completed",
		zap.Int("items", len(snaps)),
		zap.Int("created", len(res.Created)),
		zap.Int("updated", res.Updated),
		zap.Int("sent", res.Dispatch.Sent),
		zap.String("suppressed", string(res.Dispatch.Suppressed)),
	)

	if r.opts.OnCheck != nil {
		r.opts.OnCheck(res)
	}
	return res, nil
}

// CleanupNow purges old alerts and history, then vacuums if one is due.
func (r *Runner) CleanupNow(ctx context.Context) alerts.CleanupResult {
	res := r.engine.Cleanup(ctx, r.opts.RetentionDays)

	if r.opts.Vacuumer == nil {
		return res
	}
	now := r.opts.Now()
	r.mu.Lock()
	due := now.Sub(r.lastVacuum) >= storage.VacuumInterval
	r.mu.Unlock()
	if !due {
		return res
	}

	if err := r.opts.Vacuumer.Vacuum(ctx); err != nil {
		r.logger.Error("vacuum_failed", zap.Error(err))
		return res
	}
	r.mu.Lock()
	r.lastVacuum = now
	r.mu.Unlock()
	r.logger.Info("vacuum_completed")
	return res
}

// LastCheck returns when the last pass completed and what it did. The time
// is zero before the first pass.
func (r *Runner) LastCheck() (time.Time, alerts.CheckResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastCheck, r.lastResult
}
