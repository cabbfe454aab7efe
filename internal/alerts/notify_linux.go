//go:build linux

package alerts

import (
	"bufio"
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// notifySendBinary is a variable so tests can point it at a missing binary.
var notifySendBinary = "notify-send"

// NotifySendNotifier sends Linux desktop notifications via notify-send.
type NotifySendNotifier struct {
	enabled bool
	appName string
	onClick ClickHandler
	logger  *zap.Logger

	// lifetime bounds notify-send processes waiting for a click.
	lifetime context.Context
	stop     context.CancelFunc
	mu       sync.Mutex
	closed   bool
	waiters  sync.WaitGroup
}

// NewNotifySendNotifier creates a new Linux notification sender.
// If opts.Enabled is false the notifier reports itself unavailable.
func NewNotifySendNotifier(opts NotifierOptions, logger *zap.Logger) *NotifySendNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	appName := opts.AppName
	if appName == "" {
		appName = "pantry-alerts"
	}
	lifetime, stop := context.WithCancel(context.Background())
	return &NotifySendNotifier{
		enabled:  opts.Enabled,
		appName:  appName,
		onClick:  opts.OnClick,
		logger:   logger,
		lifetime: lifetime,
		stop:     stop,
	}
}

// NewPlatformNotifier creates the platform-appropriate notifier for Linux.
func NewPlatformNotifier(opts NotifierOptions, logger *zap.Logger) Notifier {
	return NewNotifySendNotifier(opts, logger)
}

// Available reports whether notify-send is installed and the notifier is enabled.
func (n *NotifySendNotifier) Available() bool {
	if !n.enabled {
		return false
	}
	_, err := exec.LookPath(notifySendBinary)
	return err == nil
}

// Permission is always granted: desktop notification daemons do not gate senders.
func (n *NotifySendNotifier) Permission() Permission {
	return PermissionGranted
}

// RequestPermission returns PermissionGranted without prompting.
func (n *NotifySendNotifier) RequestPermission(ctx context.Context) (Permission, error) {
	return PermissionGranted, nil
}

// Show runs notify-send. Without a click handler the call blocks until
// notify-send exits or ctx is done. With a click handler the process is left
// waiting for the user in a background goroutine until Close.
func (n *NotifySendNotifier) Show(ctx context.Context, notif Notification) error {
	if !n.enabled {
		return ErrNotifierUnavailable
	}

	args := n.buildArgs(notif)
	if n.onClick == nil {
		return exec.CommandContext(ctx, notifySendBinary, args...).Run()
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return ErrNotifierUnavailable
	}

	args = append([]string{"--action=default=Open", "--wait"}, args...)
	cmd := exec.CommandContext(n.lifetime, notifySendBinary, args...)
	cmd.WaitDelay = time.Second
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	n.waiters.Add(1)
	go func() {
		defer n.waiters.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if strings.TrimSpace(scanner.Text()) == "default" && n.lifetime.Err() == nil {
				n.onClick(notif.Tag)
			}
		}
		if err := cmd.Wait(); err != nil && n.lifetime.Err() == nil {
			n.logger.Debug("notify_send_wait_failed", zap.String("tag", notif.Tag), zap.Error(err))
		}
	}()
	return nil
}

// Close kills notify-send processes still waiting for a click and waits
// for them to exit. Show fails after Close when a click handler is set.
func (n *NotifySendNotifier) Close() error {
	n.mu.Lock()
	n.closed = true
	n.stop()
	n.mu.Unlock()
	n.waiters.Wait()
	return nil
}

func (n *NotifySendNotifier) buildArgs(notif Notification) []string {
	// Map interaction requirement to notify-send urgency level; critical
	// notifications do not expire on their own.
	urgency := "normal"
	if notif.RequireInteraction {
		urgency = "critical"
	}

	args := []string{"--urgency", urgency, "--app-name", n.appName}
	if notif.Tag != "" {
		args = append(args, "--hint", "string:x-canonical-private-synchronous:"+notif.Tag)
	}
	return append(args, truncate(notif.Title, 120), truncate(notif.Body, 500))
}
