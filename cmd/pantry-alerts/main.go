package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nixlim/pantry-alerts/internal/alerts"
	"github.com/nixlim/pantry-alerts/internal/config"
	"github.com/nixlim/pantry-alerts/internal/inventory"
	"github.com/nixlim/pantry-alerts/internal/logging"
	"github.com/nixlim/pantry-alerts/internal/scheduler"
	"github.com/nixlim/pantry-alerts/internal/storage"
	"github.com/nixlim/pantry-alerts/internal/tui"
)

func main() {
	configFlag := flag.String("config", "", "Path to the config file (default "+config.DefaultPath()+")")
	inventoryFlag := flag.String("inventory", "", "Path to the inventory JSON file (overrides config)")
	onceFlag := flag.Bool("once", false, "Run a single check, print a summary and exit")
	headlessFlag := flag.Bool("headless", false, "Run scheduled checks without the terminal console")
	initFlag := flag.Bool("init", false, "Create an example inventory file and exit")
	flag.Parse()

	path := *configFlag
	if path == "" {
		path = config.DefaultPath()
	}
	loadResult, err := config.LoadFrom(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pantry-alerts: config error: %v\n", err)
		os.Exit(1)
	}
	cfg := loadResult.Config

	for _, w := range loadResult.Warnings {
		fmt.Fprintf(os.Stderr, "pantry-alerts: config warning: %s\n", w)
	}

	if *inventoryFlag != "" {
		cfg.Inventory.Path = *inventoryFlag
	}

	if *initFlag {
		os.Exit(RunInit(cfg, os.Stdout, os.Stderr))
	}

	mode := modeConsole
	switch {
	case *onceFlag:
		mode = modeOnce
	case *headlessFlag:
		mode = modeHeadless
	}

	os.Exit(run(cfg, mode))
}

type runMode int

const (
	modeConsole runMode = iota
	modeHeadless
	modeOnce
)

// run wires the components and blocks until the selected mode finishes.
// It returns the process exit code.
func run(cfg config.Config, mode runMode) int {
	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pantry-alerts: logging error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	store, isPersistent, err := storage.NewStore(cfg.Storage, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pantry-alerts: storage error: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifOpts := alerts.NotifierOptions{
		Enabled: cfg.Notifications.SystemNotify,
		AppName: cfg.Notifications.AppName,
	}
	// Clicks are only routed while the console is up to receive them.
	var program atomic.Pointer[tea.Program]
	if mode == modeConsole {
		notifOpts.OnClick = func(tag string) {
			if p := program.Load(); p != nil {
				p.Send(tui.ShowAlertMsg{Tag: tag})
			}
		}
	}
	notifier := alerts.NewPlatformNotifier(notifOpts, logger)
	if c, ok := notifier.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	engine := alerts.NewEngine(ctx, store, notifier,
		alerts.WithLogger(logger),
		alerts.WithDispatchTimeout(time.Duration(cfg.Notifications.TimeoutSeconds)*time.Second),
	)

	seedPreferences(ctx, engine, cfg.Preferences, logger)

	source := inventory.NewFileSource(config.ExpandHome(cfg.Inventory.Path), logger)

	opts := scheduler.Options{
		CheckInterval:   time.Duration(cfg.Checks.IntervalMinutes) * time.Minute,
		CleanupInterval: time.Duration(cfg.Checks.CleanupIntervalHours) * time.Hour,
		RetentionDays:   cfg.Storage.RetentionDays,
	}
	if v, ok := store.(storage.Vacuumer); ok {
		opts.Vacuumer = v
	}
	runner := scheduler.NewRunner(logger, source, engine, opts)

	logger.Info("pantry_alerts_starting",
		zap.Bool("persistent", isPersistent),
		zap.String("inventory", source.Path()),
		zap.Bool("notifier_available", notifier.Available()),
	)

	switch mode {
	case modeOnce:
		res, err := runner.CheckNow(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pantry-alerts: %v\n", err)
			return 1
		}
		printSummary(os.Stdout, res, engine.ActiveAlerts())
		if c, ok := store.(storage.Counter); ok {
			if err := printStoreCounts(ctx, os.Stdout, c, isPersistent); err != nil {
				logger.Warn("store_counts_failed", zap.Error(err))
			}
		}
		return 0

	case modeHeadless:
		if err := runner.Run(ctx); err != nil {
			logger.Error("scheduler_failed", zap.Error(err))
			return 1
		}
		return 0
	}

	if err := runConsole(ctx, cfg, runner, engine, store, isPersistent, &program); err != nil {
		fmt.Fprintf(os.Stderr, "pantry-alerts: %v\n", err)
		return 1
	}
	return 0
}

// runConsole runs the scheduler alongside the terminal UI. Quitting the UI
// or receiving a signal stops both.
func runConsole(ctx context.Context, cfg config.Config, runner *scheduler.Runner, engine *alerts.Engine, store storage.Store, isPersistent bool, program *atomic.Pointer[tea.Program]) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	modelOpts := []tui.ModelOption{
		tui.WithAlertService(engine),
		tui.WithChecker(runner),
		tui.WithPersistenceFlag(isPersistent),
		tui.WithOnShutdown(cancel),
	}
	if a, ok := store.(storage.ActivityReporter); ok {
		modelOpts = append(modelOpts, tui.WithActivityReporter(a))
	}

	p := tea.NewProgram(tui.NewModel(cfg, modelOpts...), tea.WithAltScreen())
	program.Store(p)
	defer program.Store(nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runner.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		p.Quit()
		return nil
	})
	return g.Wait()
}

func printSummary(w io.Writer, res alerts.CheckResult, active []alerts.Alert) {
	fmt.Fprintf(w, "Checked inventory: %d new, %d updated, %d snoozed, %d ignored\n",
		len(res.Created), res.Updated, res.Snoozed, res.Ignored)
	switch {
	case res.Dispatch.Sent > 0 || res.Dispatch.Failed > 0:
		fmt.Fprintf(w, "Notifications: %d sent, %d failed\n", res.Dispatch.Sent, res.Dispatch.Failed)
	case res.Dispatch.Suppressed != alerts.SuppressNone && res.Dispatch.Suppressed != alerts.SuppressEmptyBatch:
		fmt.Fprintf(w, "Notifications suppressed: %s\n", res.Dispatch.Suppressed)
	}

	if len(active) == 0 {
		fmt.Fprintln(w, "No active alerts.")
		return
	}
	fmt.Fprintf(w, "\nActive alerts (%d):\n", len(active))
	for _, a := range active {
		_, body := alerts.FormatNotification(a)
		fmt.Fprintf(w, "  %-9s %s\n", a.Severity, body)
	}
}

func printStoreCounts(ctx context.Context, w io.Writer, c storage.Counter, isPersistent bool) error {
	alertCount, historyCount, err := c.Counts(ctx)
	if err != nil {
		return err
	}
	where := "on disk"
	if !isPersistent {
		where = "in memory"
	}
	fmt.Fprintf(w, "\nStored %s: %d alerts, %d history entries\n", where, alertCount, historyCount)
	return nil
}
